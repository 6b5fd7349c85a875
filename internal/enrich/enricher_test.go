package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/giants/internal/cache"
	"github.com/ppiankov/giants/internal/model"
	"github.com/ppiankov/giants/internal/util"
	"github.com/ppiankov/giants/internal/worker"
)

func figure(name string, birth int) model.Figure {
	return model.Figure{
		Name:      name,
		BirthYear: birth,
		Fields:    []string{"physics"},
		Wikipedia: strings.ReplaceAll(name, " ", "_"),
	}
}

func summaryServer(t *testing.T, failing map[string]int, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		id := strings.TrimPrefix(r.URL.Path, "/summary/")
		if code, ok := failing[id]; ok {
			w.WriteHeader(code)
			return
		}
		if id == "No_Image" {
			_, _ = w.Write([]byte(`{"extract":"text only"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"extract_html":"<p>%s</p>","thumbnail":{"source":"https://img.test/%s.jpg"}}`, id, id)
	}))
}

// memCache is a goroutine-free cache for leak-checked tests
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) Set(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
	return nil
}

var _ cache.Cache = (*memCache)(nil)

func TestEnrichAll_FailureIsIsolated(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := summaryServer(t, map[string]int{"Kurt_Gödel": http.StatusInternalServerError}, nil)
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	e := NewEnricher(
		NewSummaryClient(srv.URL+"/summary", "Giants/test", 1<<20, srv.Client()),
		WithLogger(zap.New(core)),
	)

	figures := []model.Figure{
		figure("Isaac Newton", 1643),
		figure("Kurt Gödel", 1906),
		figure("Ada Lovelace", 1815),
		figure("Alan Turing", 1912),
		figure("Emmy Noether", 1882),
	}
	got := e.EnrichAll(context.Background(), figures)

	require.Len(t, got, 5)
	for i, f := range got {
		assert.Equal(t, figures[i].Name, f.Name, "input order preserved")
		if f.Name == "Kurt Gödel" {
			assert.False(t, f.HasPortrait())
			continue
		}
		assert.Equal(t, "https://img.test/"+f.Wikipedia+".jpg", f.PortraitURL)
		assert.Equal(t, f.Wikipedia, f.Summary)
	}

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "portrait unavailable", entry.Message)
	assert.Equal(t, "Kurt Gödel", entry.ContextMap()["figure"])
}

func TestEnrichAll_Empty(t *testing.T) {
	e := NewEnricher(NewSummaryClient("http://unused.test", "", 0, nil))
	assert.Empty(t, e.EnrichAll(context.Background(), nil))
}

func TestEnrichAll_AllFail(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var hits int32
	counting := &countingFetcher{Fetcher: NewSummaryClient(srv.URL, "", 0, srv.Client()), calls: &hits}
	e := NewEnricher(counting, WithWorkers(2))

	figures := []model.Figure{figure("A", 1), figure("B", 2), figure("C", 3)}
	got := e.EnrichAll(context.Background(), figures)

	for _, f := range got {
		assert.False(t, f.HasPortrait())
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "single attempt per figure, no retry")
}

func TestEnrichAll_NoImageKeepsSummary(t *testing.T) {
	srv := summaryServer(t, nil, nil)
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	e := NewEnricher(NewSummaryClient(srv.URL+"/summary", "", 0, srv.Client()), WithLogger(zap.New(core)))

	got := e.EnrichAll(context.Background(), []model.Figure{figure("No Image", 1900)})
	require.Len(t, got, 1)
	assert.False(t, got[0].HasPortrait())
	assert.Equal(t, "text only", got[0].Summary)

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "summary has no image")
}

func TestEnrichAll_CacheServesRepeatLookups(t *testing.T) {
	var hits int32
	srv := summaryServer(t, map[string]int{"Broken": http.StatusNotFound}, &hits)
	defer srv.Close()

	c := &memCache{data: map[string][]byte{}}
	e := NewEnricher(NewSummaryClient(srv.URL+"/summary", "", 0, srv.Client()), WithCache(c, time.Hour))

	figures := []model.Figure{figure("Marie Curie", 1867), figure("Broken", 1900)}
	first := e.EnrichAll(context.Background(), figures)
	second := e.EnrichAll(context.Background(), figures)

	assert.Equal(t, first, second)
	assert.True(t, second[0].HasPortrait())
	// the success is cached, the failure is asked for again
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	_, cached := c.Get(cache.CacheKey("Broken"))
	assert.False(t, cached)
}

func TestEnrichAll_RobotsDisallowed(t *testing.T) {
	var summaries int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /summary/Private\n"))
			return
		}
		atomic.AddInt32(&summaries, 1)
		_, _ = w.Write([]byte(`{"thumbnail":{"source":"https://img.test/x.jpg"}}`))
	}))
	defer srv.Close()

	e := NewEnricher(
		NewSummaryClient(srv.URL+"/summary", "Giants/test", 0, srv.Client()),
		WithRobots(util.NewRobotsChecker("Giants/test", srv.Client())),
		WithLimiter(worker.NewLimiter(0, 1)),
	)

	got := e.EnrichAll(context.Background(), []model.Figure{figure("Public", 1), figure("Private", 2)})
	assert.True(t, got[0].HasPortrait())
	assert.False(t, got[1].HasPortrait())
	assert.Equal(t, int32(1), atomic.LoadInt32(&summaries))

	_, err := e.Lookup(context.Background(), figure("Private", 2))
	assert.ErrorIs(t, err, ErrDisallowed)
}

func TestEnrichAll_RobotsFetchedOncePerHost(t *testing.T) {
	var robotsHits, summaries int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
			time.Sleep(20 * time.Millisecond)
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
			return
		}
		atomic.AddInt32(&summaries, 1)
		_, _ = w.Write([]byte(`{"thumbnail":{"source":"https://img.test/x.jpg"}}`))
	}))
	defer srv.Close()

	e := NewEnricher(
		NewSummaryClient(srv.URL+"/summary", "Giants/test", 0, srv.Client()),
		WithRobots(util.NewRobotsChecker("Giants/test", srv.Client())),
	)

	figures := make([]model.Figure, 30)
	for i := range figures {
		figures[i] = figure(fmt.Sprintf("Figure %d", i), 1600+i)
	}

	got := e.EnrichAll(context.Background(), figures)
	for i, f := range got {
		assert.True(t, f.HasPortrait(), "figure %d", i)
	}
	assert.Equal(t, int32(30), atomic.LoadInt32(&summaries))
	assert.Equal(t, int32(1), atomic.LoadInt32(&robotsHits), "robots.txt is shared by every figure on the host")
}

func TestEnrichAll_CrawlDelaySlowsHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nCrawl-delay: 0.05\n"))
			return
		}
		_, _ = w.Write([]byte(`{"thumbnail":{"source":"https://img.test/x.jpg"}}`))
	}))
	defer srv.Close()

	e := NewEnricher(
		NewSummaryClient(srv.URL+"/summary", "Giants/test", 0, srv.Client()),
		WithRobots(util.NewRobotsChecker("Giants/test", srv.Client())),
		WithLimiter(worker.NewLimiter(0, 5)),
	)

	start := time.Now()
	got := e.EnrichAll(context.Background(), []model.Figure{figure("A", 1), figure("B", 2), figure("C", 3)})
	elapsed := time.Since(start)

	for _, f := range got {
		assert.True(t, f.HasPortrait())
	}
	// Three requests at one per 50ms need at least two full intervals.
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}

func TestEnrichAll_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEnricher(NewSummaryClient("http://unused.test", "", 0, nil))
	got := e.EnrichAll(ctx, []model.Figure{figure("A", 1), figure("B", 2)})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.False(t, got[0].HasPortrait())
}

func TestFromConfig(t *testing.T) {
	cfg := model.DefaultConfig().Enrich
	cfg.RequestsPerSecond = 2
	cfg.RespectRobots = true

	e, err := FromConfig(cfg, nil, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, e.limiter)
	assert.NotNil(t, e.robots)
	assert.Nil(t, e.cache)
	assert.Equal(t, "https://en.wikipedia.org/api/rest_v1/page/summary/Emmy_Noether", e.fetcher.URL("Emmy_Noether"))

	cfg.RequestsPerSecond = 0
	e, err = FromConfig(cfg, nil, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, e.limiter, "robots crawl delays need a limiter")

	cfg.RespectRobots = false
	e, err = FromConfig(cfg, nil, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, e.limiter)

	cfg.HTTPProxy = "://bad"
	_, err = FromConfig(cfg, nil, 0, nil)
	assert.Error(t, err)
}

type countingFetcher struct {
	Fetcher
	calls *int32
}

func (f *countingFetcher) Fetch(ctx context.Context, id string) (*Summary, error) {
	atomic.AddInt32(f.calls, 1)
	return f.Fetcher.Fetch(ctx, id)
}
