// Package repository is the single access point for show search, show
// details and bookmarks. It hides the remote catalogs, the response cache
// and the bookmark store behind one facade and never lets a failure escape
// as anything other than a Result or Outcome.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Digital-Shane/show-manager/internal/metrics"
	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/rs/zerolog"
)

// Cache is the subset of the response cache the repository needs.
type Cache interface {
	provider.ResponseCache
	Close() error
}

// ChangeRecorder observes successful bookmark changes.
type ChangeRecorder interface {
	BookmarkAdded(b store.Bookmark)
	BookmarkRemoved(b store.Bookmark)
}

// Deps wires a Repository by hand.
type Deps struct {
	Registry *provider.Registry
	// Catalog names the catalog used for searches. Empty selects the
	// registry default.
	Catalog string
	Cache   Cache
	Store   *store.Store
	Logger  *zerolog.Logger
	// Timeout bounds each remote call. Zero leaves it to the HTTP client.
	Timeout  time.Duration
	Recorder ChangeRecorder
}

// Repository mediates between catalogs, cache and store.
type Repository struct {
	registry *provider.Registry
	catalog  string
	cache    Cache
	store    *store.Store
	logger   zerolog.Logger
	timeout  time.Duration

	recorderMu sync.RWMutex
	recorder   ChangeRecorder

	// base is cancelled by Close to stop in-flight async calls.
	base    context.Context
	stop    context.CancelFunc
	pending sync.WaitGroup
}

// New builds a repository from explicit dependencies. It does not touch the
// process-wide instance.
func New(deps Deps) (*Repository, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("repository: registry is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("repository: store is required")
	}

	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = deps.Logger.With().Str("component", "repository").Logger()
	}

	base, stop := context.WithCancel(context.Background())
	return &Repository{
		registry: deps.Registry,
		catalog:  deps.Catalog,
		cache:    deps.Cache,
		store:    deps.Store,
		logger:   logger,
		timeout:  deps.Timeout,
		recorder: deps.Recorder,
		base:     base,
		stop:     stop,
	}, nil
}

// SetRecorder replaces the change recorder. Nil disables recording.
func (r *Repository) SetRecorder(rec ChangeRecorder) {
	r.recorderMu.Lock()
	r.recorder = rec
	r.recorderMu.Unlock()
}

func (r *Repository) currentRecorder() ChangeRecorder {
	r.recorderMu.RLock()
	defer r.recorderMu.RUnlock()
	return r.recorder
}

// Catalog returns the catalog used for searches.
func (r *Repository) Catalog() (provider.Catalog, error) {
	if r.catalog != "" {
		if !r.registry.IsEnabled(r.catalog) {
			return nil, fmt.Errorf("%w: %s is not enabled", ErrNoCatalog, r.catalog)
		}
		c, _ := r.registry.Get(r.catalog)
		return c, nil
	}
	c, ok := r.registry.Default()
	if !ok {
		return nil, ErrNoCatalog
	}
	return c, nil
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

// Search fetches one page of results for query from the search catalog.
func (r *Repository) Search(ctx context.Context, query string, page int) Result[provider.SearchPage] {
	query = strings.TrimSpace(query)
	page = provider.NormalizePage(page)
	if query == "" {
		return Result[provider.SearchPage]{Status: StatusInvalid, Err: fmt.Errorf("search query is empty")}
	}

	catalog, err := r.Catalog()
	if err != nil {
		r.logger.Error().Err(err).Str("query", query).Msg("Search failed")
		return Result[provider.SearchPage]{Status: StatusInvalid, Err: err}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, cached, err := provider.SearchWithCache(ctx, catalog, provider.SearchRequest{Query: query, Page: page}, r.cache)
	status := classify(err)
	r.observe(catalog.Name(), "search", status, cached, start)

	if err != nil {
		event := r.logger.Warn()
		if status == StatusNotFound {
			event = r.logger.Debug()
		}
		event.Err(err).Str("catalog", catalog.Name()).Str("query", query).Int("page", page).Msg("Search failed")
		return Result[provider.SearchPage]{Status: status, Err: err}
	}

	r.logger.Debug().
		Str("catalog", catalog.Name()).
		Str("query", query).
		Int("page", page).
		Int("results", len(result.Results)).
		Bool("cached", cached).
		Msg("Search completed")
	return Result[provider.SearchPage]{Value: result, Status: StatusOK}
}

// SearchAsync runs Search on a goroutine. The channel receives exactly one
// result and is then closed.
func (r *Repository) SearchAsync(ctx context.Context, query string, page int) <-chan Result[provider.SearchPage] {
	return goAsync(r, ctx, func(ctx context.Context) Result[provider.SearchPage] {
		return r.Search(ctx, query, page)
	})
}

// Details fetches the full record for id from the catalog that issued it.
func (r *Repository) Details(ctx context.Context, id string) Result[provider.ShowDetails] {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result[provider.ShowDetails]{Status: StatusInvalid, Err: fmt.Errorf("show id is empty")}
	}

	catalog, ok := r.registry.ForID(id)
	if !ok {
		err := fmt.Errorf("%w for id %q", ErrNoCatalog, id)
		r.logger.Warn().Err(err).Msg("Details failed")
		return Result[provider.ShowDetails]{Status: StatusInvalid, Err: err}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	details, cached, err := provider.DetailsWithCache(ctx, catalog, id, r.cache)
	status := classify(err)
	r.observe(catalog.Name(), "details", status, cached, start)

	if err != nil {
		r.logger.Warn().Err(err).Str("catalog", catalog.Name()).Str("id", id).Msg("Details failed")
		return Result[provider.ShowDetails]{Status: status, Err: err}
	}
	return Result[provider.ShowDetails]{Value: details, Status: StatusOK}
}

// DetailsAsync runs Details on a goroutine. The channel receives exactly one
// result and is then closed.
func (r *Repository) DetailsAsync(ctx context.Context, id string) <-chan Result[provider.ShowDetails] {
	return goAsync(r, ctx, func(ctx context.Context) Result[provider.ShowDetails] {
		return r.Details(ctx, id)
	})
}

// InsertBookmark saves b. Inserting an id that already exists succeeds with
// Changed false.
func (r *Repository) InsertBookmark(ctx context.Context, b store.Bookmark) Outcome {
	if strings.TrimSpace(b.ID) == "" {
		return Outcome{Status: StatusInvalid, Err: fmt.Errorf("bookmark id is empty")}
	}

	created, err := r.store.Insert(ctx, b)
	if err != nil {
		metrics.BookmarkChangesTotal.WithLabelValues("insert", "error").Inc()
		r.logger.Error().Err(err).Str("id", b.ID).Msg("Insert bookmark failed")
		return Outcome{Status: StatusStorageError, Err: err}
	}

	if created {
		metrics.BookmarkChangesTotal.WithLabelValues("insert", "created").Inc()
		if rec := r.currentRecorder(); rec != nil {
			rec.BookmarkAdded(b)
		}
	} else {
		metrics.BookmarkChangesTotal.WithLabelValues("insert", "duplicate").Inc()
	}
	return Outcome{Status: StatusOK, Changed: created}
}

// DeleteBookmark removes the bookmark with id. Deleting a missing id
// succeeds with Changed false.
func (r *Repository) DeleteBookmark(ctx context.Context, id string) Outcome {
	if strings.TrimSpace(id) == "" {
		return Outcome{Status: StatusInvalid, Err: fmt.Errorf("bookmark id is empty")}
	}

	rec := r.currentRecorder()
	var existing store.Bookmark
	if rec != nil {
		b, err := r.store.Get(ctx, id)
		if err == nil {
			existing = b
		}
	}

	deleted, err := r.store.Delete(ctx, id)
	if err != nil {
		metrics.BookmarkChangesTotal.WithLabelValues("delete", "error").Inc()
		r.logger.Error().Err(err).Str("id", id).Msg("Delete bookmark failed")
		return Outcome{Status: StatusStorageError, Err: err}
	}

	if deleted {
		metrics.BookmarkChangesTotal.WithLabelValues("delete", "deleted").Inc()
		if rec != nil && existing.ID != "" {
			rec.BookmarkRemoved(existing)
		}
	} else {
		metrics.BookmarkChangesTotal.WithLabelValues("delete", "missing").Inc()
	}
	return Outcome{Status: StatusOK, Changed: deleted}
}

// Bookmarks returns the current bookmark list.
func (r *Repository) Bookmarks(ctx context.Context) Result[[]store.Bookmark] {
	list, err := r.store.All(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("List bookmarks failed")
		return Result[[]store.Bookmark]{Status: StatusStorageError, Err: err}
	}
	return Result[[]store.Bookmark]{Value: &list, Status: StatusOK}
}

// Bookmark returns a single bookmark.
func (r *Repository) Bookmark(ctx context.Context, id string) Result[store.Bookmark] {
	b, err := r.store.Get(ctx, id)
	switch {
	case err == nil:
		return Result[store.Bookmark]{Value: &b, Status: StatusOK}
	case errors.Is(err, store.ErrNotFound):
		return Result[store.Bookmark]{Status: StatusNotFound, Err: err}
	default:
		r.logger.Error().Err(err).Str("id", id).Msg("Get bookmark failed")
		return Result[store.Bookmark]{Status: StatusStorageError, Err: err}
	}
}

// Subscription is a live view of the bookmark list.
type Subscription struct {
	// C receives the current list on subscribe and after every change. It is
	// closed by Close or when the repository shuts down.
	C     <-chan []store.Bookmark
	close func()
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// SubscribeBookmarks opens a live subscription to the bookmark list.
func (r *Repository) SubscribeBookmarks() *Subscription {
	ch, cancel := r.store.Watch()
	return &Subscription{C: ch, close: cancel}
}

// Close stops in-flight async calls, then closes the store and cache.
func (r *Repository) Close() error {
	r.stop()
	r.pending.Wait()

	var errs []error
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

func (r *Repository) observe(catalog, op string, status Status, cached bool, start time.Time) {
	label := status.String()
	if cached {
		label = "cached"
	} else {
		metrics.RemoteRequestDuration.WithLabelValues(catalog, op).Observe(time.Since(start).Seconds())
	}
	metrics.RemoteRequestsTotal.WithLabelValues(catalog, op, label).Inc()
}

// goAsync runs fn on a goroutine bound to both ctx and the repository
// lifetime and delivers its single result on a buffered channel.
func goAsync[T any](r *Repository, ctx context.Context, fn func(context.Context) T) <-chan T {
	out := make(chan T, 1)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer close(out)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(r.base, cancel)
		defer stop()

		out <- fn(ctx)
	}()
	return out
}

// CatalogFor names the catalog that issued id, or "" when none does.
func (r *Repository) CatalogFor(id string) string {
	if c, ok := r.registry.ForID(id); ok {
		return c.Name()
	}
	return ""
}
