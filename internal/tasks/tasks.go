package tasks

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
)

// FacetKey names one catalog collection, qualified by media type for the per-type facets.
type FacetKey struct {
	Facet     store.Facet
	MediaType models.MediaType // empty for facets without a type
}

func (k FacetKey) String() string {
	if k.MediaType == "" {
		return string(k.Facet)
	}
	return fmt.Sprintf("%s/%s", k.Facet, k.MediaType)
}

// FacetResult is the outcome of loading one facet.
type FacetResult struct {
	Key     FacetKey
	Items   int           // items held by the facet after the load
	Elapsed time.Duration // wall time including rate limiter waits
	Err     error

	index int
}

// PrefetchResult summarizes a [Engine.Prefetch] run.
type PrefetchResult struct {
	Results   []FacetResult // in request order
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Errors returns the failed facets.
func (r *PrefetchResult) Errors() []FacetResult {
	var failed []FacetResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// PrefetchOpts configures [Engine.Prefetch].
type PrefetchOpts struct {
	Facets     []store.Facet      // empty loads [DefaultFacets]
	MediaTypes []models.MediaType // per-type facets load these types; empty means all
	Workers    int                // concurrent loads (default: 4, max: 8)
	RateLimit  float64            // loads started per second, 0 disables throttling
}

// DefaultFacets are the collections loaded when [PrefetchOpts.Facets] is empty.
var DefaultFacets = []store.Facet{
	store.FacetTrending,
	store.FacetPopular,
	store.FacetTopRated,
	store.FacetGenres,
	store.FacetAiringToday,
	store.FacetOnTheAir,
}

type facetJob struct {
	key   FacetKey
	load  func(context.Context) error
	count func(store.State) int
}

// Engine runs multi-request operations against a [store.Store].
type Engine struct {
	store  *store.Store
	logger *log.Logger
	now    func() time.Time
}

// NewEngine creates an Engine. A nil logger discards output.
func NewEngine(s *store.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Engine{
		store:  s,
		logger: shared.WithLogger(logger, "component", "tasks"),
		now:    time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// facetJobs expands the requested facets into one job per (facet, media type).
func (e *Engine) facetJobs(facets []store.Facet, types []models.MediaType) ([]facetJob, error) {
	if len(facets) == 0 {
		facets = DefaultFacets
	}
	if len(types) == 0 {
		types = models.MediaTypes
	}
	for _, t := range types {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: media type %q", shared.ErrInvalidArgument, t)
		}
	}

	c := e.store.Catalog
	plain := func(f store.Facet, load func(context.Context) error, pick func(store.CatalogState) store.MediaCollection) facetJob {
		return facetJob{
			key:   FacetKey{Facet: f},
			load:  load,
			count: func(st store.State) int { return len(pick(st.Catalog).Data) },
		}
	}

	var jobs []facetJob
	for _, f := range facets {
		switch f {
		case store.FacetMovies:
			jobs = append(jobs, plain(f, c.GetAllMovies, func(cs store.CatalogState) store.MediaCollection { return cs.Movies }))
		case store.FacetTVShows:
			jobs = append(jobs, plain(f, c.GetAllTVShows, func(cs store.CatalogState) store.MediaCollection { return cs.TVShows }))
		case store.FacetTrending:
			jobs = append(jobs, plain(f, c.GetTrending, func(cs store.CatalogState) store.MediaCollection { return cs.Trending }))
		case store.FacetAiringToday:
			jobs = append(jobs, plain(f, c.GetAiringToday, func(cs store.CatalogState) store.MediaCollection { return cs.AiringToday }))
		case store.FacetOnTheAir:
			jobs = append(jobs, plain(f, c.GetOnTheAir, func(cs store.CatalogState) store.MediaCollection { return cs.OnTheAir }))
		case store.FacetPopular, store.FacetTopRated, store.FacetGenres:
			for _, t := range types {
				jobs = append(jobs, typedJob(c, f, t))
			}
		default:
			return nil, fmt.Errorf("%w: unknown facet %q", shared.ErrInvalidArgument, f)
		}
	}
	return jobs, nil
}

func typedJob(c *store.CatalogSlice, f store.Facet, t models.MediaType) facetJob {
	job := facetJob{key: FacetKey{Facet: f, MediaType: t}}
	switch f {
	case store.FacetPopular:
		job.load = func(ctx context.Context) error { return c.GetPopular(ctx, t) }
		job.count = func(st store.State) int { return len(st.Catalog.Popular.Get(t).Data) }
	case store.FacetTopRated:
		job.load = func(ctx context.Context) error { return c.GetTopRated(ctx, t) }
		job.count = func(st store.State) int { return len(st.Catalog.TopRated.Get(t).Data) }
	default:
		job.load = func(ctx context.Context) error { return c.GetGenres(ctx, t) }
		job.count = func(st store.State) int { return len(st.Catalog.Genres.Get(t).Data) }
	}
	return job
}

// Prefetch loads catalog facets concurrently through the store's catalog slice.
//
// Each facet keeps its own lifecycle in the store, so one failure never blocks the others.
// Partial failures are reported in the result; the returned error is non-nil only when the
// engine could not start or ctx was canceled.
func (e *Engine) Prefetch(ctx context.Context, progress chan<- ProgressUpdate, opts PrefetchOpts) (*PrefetchResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	jobs, err := e.facetJobs(opts.Facets, opts.MediaTypes)
	if err != nil {
		return nil, err
	}

	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 8 {
		opts.Workers = 8
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	start := e.now()
	total := len(jobs)
	e.sendProgress(progress, prefetchStartUpdate(total))

	var done atomic.Int64
	p := pool.NewWithResults[FacetResult]().WithMaxGoroutines(opts.Workers)
	for i, job := range jobs {
		p.Go(func() FacetResult {
			res := FacetResult{Key: job.key, index: i}
			began := time.Now()

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					res.Err = err
				}
			}
			if res.Err == nil {
				res.Err = job.load(ctx)
			}
			res.Elapsed = time.Since(began)

			e.logger.Debug("facet loaded", "facet", job.key, "elapsed", res.Elapsed, "err", res.Err)
			e.sendProgress(progress, facetLoadedUpdate(int(done.Add(1)), total, res))
			return res
		})
	}

	results := p.Wait()
	slices.SortFunc(results, func(a, b FacetResult) int { return cmp.Compare(a.index, b.index) })

	snap := e.store.Snapshot()
	result := &PrefetchResult{Results: results, Elapsed: e.now().Sub(start)}
	for i := range result.Results {
		res := &result.Results[i]
		res.Items = jobs[res.index].count(snap)
		if res.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, errors.Join(shared.ErrRequestCanceled, err)
	}
	return result, nil
}
