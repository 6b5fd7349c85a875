package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/giants/internal/cache"
	"github.com/ppiankov/giants/internal/model"
	"github.com/ppiankov/giants/internal/util"
	"github.com/ppiankov/giants/internal/worker"
)

// Fetcher retrieves the summary of one article
type Fetcher interface {
	URL(articleID string) string
	Fetch(ctx context.Context, articleID string) (*Summary, error)
}

// Portrait is what enrichment attaches to a figure. It is also the cached value.
type Portrait struct {
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
}

// Enricher fans portrait lookups out over a worker pool. Lookups are made
// once per figure and never retried; a failed lookup leaves the portrait
// absent.
type Enricher struct {
	fetcher  Fetcher
	logger   *zap.Logger
	limiter  *worker.Limiter
	robots   *util.RobotsChecker
	cache    cache.Cache
	cacheTTL time.Duration
	workers  int
}

// Option configures an Enricher
type Option func(*Enricher)

// WithLogger sets the logger used for failed lookups
func WithLogger(l *zap.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLimiter throttles requests per host
func WithLimiter(l *worker.Limiter) Option {
	return func(e *Enricher) { e.limiter = l }
}

// WithRobots checks every summary URL against robots.txt first
func WithRobots(r *util.RobotsChecker) Option {
	return func(e *Enricher) { e.robots = r }
}

// WithCache stores successful lookups for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Enricher) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithWorkers caps concurrent lookups. Zero means one worker per figure.
func WithWorkers(n int) Option {
	return func(e *Enricher) { e.workers = n }
}

// NewEnricher creates an enricher around fetcher
func NewEnricher(fetcher Fetcher, opts ...Option) *Enricher {
	e := &Enricher{
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig wires the summary client, limiter, robots checker and cache
// described by cfg.
func FromConfig(cfg model.EnrichConfig, portraits cache.Cache, cacheTTL time.Duration, logger *zap.Logger) (*Enricher, error) {
	proxy, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if err != nil {
		return nil, err
	}
	client := util.NewHTTPClient(cfg.Timeout, proxy)

	opts := []Option{
		WithLogger(logger),
		WithWorkers(cfg.Workers),
	}
	// crawl delays from robots.txt are enforced by the limiter
	if cfg.RequestsPerSecond > 0 || cfg.RespectRobots {
		opts = append(opts, WithLimiter(worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)))
	}
	if cfg.RespectRobots {
		opts = append(opts, WithRobots(util.NewRobotsChecker(cfg.UserAgent, client)))
	}
	if portraits != nil {
		opts = append(opts, WithCache(portraits, cacheTTL))
	}

	summaries := NewSummaryClient(cfg.Endpoint, cfg.UserAgent, cfg.MaxBodyBytes, client)
	return NewEnricher(summaries, opts...), nil
}

// EnrichAll looks up every figure concurrently and returns them in input
// order. It never fails: lookups that error are logged and leave the figure
// without a portrait.
func (e *Enricher) EnrichAll(ctx context.Context, figures []model.Figure) []model.EnrichedFigure {
	out := model.Plain(figures)
	if len(figures) == 0 {
		return out
	}

	workers := e.workers
	if workers <= 0 || workers > len(figures) {
		workers = len(figures)
	}

	pool := worker.NewPool(ctx, workers)
	pool.Start()
	for i, f := range figures {
		pool.Submit(&portraitJob{index: i, figure: f, enricher: e})
	}

	for _, r := range pool.Wait() {
		res, ok := r.(*portraitResult)
		if !ok {
			continue
		}
		out[res.index].Summary = res.portrait.Summary
		if res.err != nil {
			e.logger.Warn("portrait unavailable",
				zap.String("figure", res.name),
				zap.Error(res.err))
			continue
		}
		out[res.index].PortraitURL = res.portrait.URL
	}

	var fetched int
	for _, f := range out {
		if f.HasPortrait() {
			fetched++
		}
	}
	e.logger.Debug("enrichment finished",
		zap.Int("figures", len(figures)),
		zap.Int("portraits", fetched))

	return out
}

// Lookup fetches the portrait of a single figure
func (e *Enricher) Lookup(ctx context.Context, f model.Figure) (Portrait, error) {
	id := f.Wikipedia
	key := cache.CacheKey(id)

	if e.cache != nil {
		if raw, ok := e.cache.Get(key); ok {
			var p Portrait
			if err := json.Unmarshal(raw, &p); err == nil && p.URL != "" {
				return p, nil
			}
		}
	}

	target := e.fetcher.URL(id)
	if e.robots != nil {
		allowed, delay, err := e.robots.CanFetch(ctx, target)
		if err != nil {
			return Portrait{}, &FetchError{ArticleID: id, Err: err}
		}
		if !allowed {
			return Portrait{}, &FetchError{ArticleID: id, Err: ErrDisallowed}
		}
		if e.limiter != nil {
			if err := e.limiter.CrawlDelay(target, delay); err != nil {
				return Portrait{}, &FetchError{ArticleID: id, Err: err}
			}
		}
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, target); err != nil {
			return Portrait{}, &FetchError{ArticleID: id, Err: err}
		}
	}

	s, err := e.fetcher.Fetch(ctx, id)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{ArticleID: id, Err: err}
		}
		return Portrait{}, err
	}

	p := Portrait{URL: s.ImageURL(), Summary: s.PlainText()}
	if p.URL == "" {
		return p, &FetchError{ArticleID: id, Err: ErrNoImage}
	}

	if e.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			if err := e.cache.Set(key, raw, e.cacheTTL); err != nil {
				e.logger.Debug("cache write failed", zap.String("figure", f.Name), zap.Error(err))
			}
		}
	}
	return p, nil
}

type portraitJob struct {
	index    int
	figure   model.Figure
	enricher *Enricher
}

func (j *portraitJob) Execute(ctx context.Context) worker.Result {
	p, err := j.enricher.Lookup(ctx, j.figure)
	return &portraitResult{
		index:    j.index,
		name:     j.figure.Name,
		portrait: p,
		err:      err,
	}
}

type portraitResult struct {
	index    int
	name     string
	portrait Portrait
	err      error
}

func (r *portraitResult) GetError() error {
	return r.err
}
