// Package content loads the static list of figures the timeline is built from.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/giants/internal/model"
	"github.com/ppiankov/giants/internal/util"
)

// ErrInvalidFigure marks a record that fails validation
var ErrInvalidFigure = errors.New("invalid figure")

// ErrNoFigures marks an object form without any figure records
var ErrNoFigures = errors.New("no figures")

// maxRemoteBytes bounds content fetched over http(s)
const maxRemoteBytes = 16 << 20

// Load reads and validates the content file at path
func Load(path string) ([]model.Figure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data)
}

// ReadSource loads figures from a local path or an http(s) URL
func ReadSource(ctx context.Context, src string) ([]model.Figure, error) {
	if src == "" {
		return nil, errors.New("content source is empty")
	}
	if !isRemote(src) {
		return Load(src)
	}

	client := util.NewHTTPClient(30*time.Second, http.ProxyFromEnvironment)
	data, err := util.Get(ctx, client, src, "", "application/json", maxRemoteBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch content %s: %w", src, err)
	}
	return Parse(data)
}

func isRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

type document struct {
	Figures *[]record `json:"figures"`
}

type record struct {
	Name          string   `json:"name"`
	BirthYear     *int     `json:"birth_year"`
	DeathYear     *int     `json:"death_year"`
	Fields        []string `json:"fields"`
	Contributions []string `json:"contributions"`
	Works         []string `json:"works"`
	Wikipedia     string   `json:"wikipedia"`
}

// Parse decodes either a bare array of figures or an object with a figures
// array, normalises every record and validates the whole set. All problems
// are reported together.
func Parse(data []byte) ([]model.Figure, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("content is empty")
	}

	var records []record
	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
		if doc.Figures == nil {
			return nil, fmt.Errorf("decode content: %w: object has no \"figures\" key", ErrNoFigures)
		}
		if len(*doc.Figures) == 0 {
			return nil, fmt.Errorf("decode content: %w: \"figures\" array is empty", ErrNoFigures)
		}
		records = *doc.Figures
	}

	figures := make([]model.Figure, 0, len(records))
	seen := make(map[string]int, len(records))
	var errs []error

	for i, r := range records {
		f, problems := normalize(r)
		if first, dup := seen[f.Name]; dup && f.Name != "" {
			problems = append(problems, fmt.Sprintf("duplicate name (first at record %d)", first))
		} else {
			seen[f.Name] = i
		}

		for _, p := range problems {
			errs = append(errs, fmt.Errorf("record %d %q: %w: %s", i, f.Name, ErrInvalidFigure, p))
		}
		figures = append(figures, f)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return figures, nil
}

func normalize(r record) (model.Figure, []string) {
	var problems []string

	f := model.Figure{
		Name:          strings.TrimSpace(r.Name),
		DeathYear:     r.DeathYear,
		Fields:        NormalizeFields(r.Fields),
		Contributions: r.Contributions,
		Works:         r.Works,
		Wikipedia:     strings.TrimSpace(r.Wikipedia),
	}

	if f.Name == "" {
		problems = append(problems, "name is empty")
	}
	if r.BirthYear == nil {
		problems = append(problems, "birth_year is missing")
	} else {
		f.BirthYear = *r.BirthYear
	}
	if len(f.Fields) == 0 {
		problems = append(problems, "fields is empty")
	}
	if r.BirthYear != nil && r.DeathYear != nil && *r.DeathYear < *r.BirthYear {
		problems = append(problems, fmt.Sprintf("death_year %d precedes birth_year %d", *r.DeathYear, *r.BirthYear))
	}
	if f.Wikipedia == "" {
		f.Wikipedia = strings.ReplaceAll(f.Name, " ", "_")
	}

	return f, problems
}

// NormalizeFields trims and lowercases tags and drops blanks and repeats,
// keeping the first occurrence.
func NormalizeFields(fields []string) []string {
	var out []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
