package presenter

import (
	"context"
	"strings"
	"sync"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/repository"
	"github.com/Digital-Shane/show-manager/internal/store"
)

// Backend is the part of the repository the search presenter uses.
type Backend interface {
	SearchAsync(ctx context.Context, query string, page int) <-chan repository.Result[provider.SearchPage]
	DetailsAsync(ctx context.Context, id string) <-chan repository.Result[provider.ShowDetails]
	InsertBookmark(ctx context.Context, b store.Bookmark) repository.Outcome
	DeleteBookmark(ctx context.Context, id string) repository.Outcome
	Bookmarks(ctx context.Context) repository.Result[[]store.Bookmark]
	CatalogFor(id string) string
}

// SearchPresenter implements Presenter over a Backend.
type SearchPresenter struct {
	backend Backend
	view    View

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards destroyed and serializes view callbacks.
	mu        sync.Mutex
	destroyed bool
	inflight  sync.WaitGroup
}

// NewSearchPresenter binds a view to a backend.
func NewSearchPresenter(backend Backend, view View) *SearchPresenter {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchPresenter{
		backend: backend,
		view:    view,
		ctx:     ctx,
		cancel:  cancel,
	}
}

var _ Presenter = (*SearchPresenter)(nil)

// SearchByTitle starts a search. A blank title is rejected without a
// remote call. Overlapping searches are not cancelled and may complete in
// any order.
func (p *SearchPresenter) SearchByTitle(title string, page int) {
	title = strings.TrimSpace(title)
	if title == "" {
		p.deliver(p.view.ShowEmptyErrorTitle)
		return
	}

	if !p.deliver(p.view.ShowProgress) {
		return
	}

	results := p.backend.SearchAsync(p.ctx, title, page)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		res := <-results

		p.deliver(func() {
			p.view.HideProgress()
			switch {
			case res.OK():
				if pv, ok := p.view.(PageView); ok {
					pv.LoadPageInfo(res.Value.Query, res.Value.Page, res.Value.TotalPages, res.Value.TotalResults)
				}
				p.view.LoadSearchResult(res.Value.Results)
			case res.Status == repository.StatusNotFound:
				if pv, ok := p.view.(PageView); ok {
					pv.LoadPageInfo(title, provider.NormalizePage(page), 0, 0)
				}
				p.view.LoadSearchResult([]provider.ShowSummary{})
			default:
				p.view.ShowResponseFailure(res.Err)
			}
		})
	}()
}

// ShowDetails fetches details for id and hands them to a DetailsView.
func (p *SearchPresenter) ShowDetails(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	if !p.deliver(p.view.ShowProgress) {
		return
	}

	results := p.backend.DetailsAsync(p.ctx, id)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		res := <-results

		p.deliver(func() {
			p.view.HideProgress()
			if !res.OK() {
				p.view.ShowResponseFailure(res.Err)
				return
			}
			if dv, ok := p.view.(DetailsView); ok {
				dv.LoadDetails(*res.Value)
			}
		})
	}()
}

// SaveBookmark stores show synchronously and reports to a BookmarkView.
func (p *SearchPresenter) SaveBookmark(show provider.ShowSummary) {
	if p.isDestroyed() {
		return
	}

	b := store.FromSummary(show, p.backend.CatalogFor(show.ID))
	out := p.backend.InsertBookmark(p.ctx, b)

	p.deliver(func() {
		bv, ok := p.view.(BookmarkView)
		if !ok {
			return
		}
		if out.OK() {
			bv.BookmarkSaved(show, out.Changed)
		} else {
			bv.BookmarkFailed(show, out.Err)
		}
	})
}

// RemoveBookmark deletes id and reloads the bookmark list.
func (p *SearchPresenter) RemoveBookmark(id string) {
	if p.isDestroyed() {
		return
	}
	out := p.backend.DeleteBookmark(p.ctx, id)
	if !out.OK() {
		p.deliver(func() { p.view.ShowResponseFailure(out.Err) })
		return
	}
	p.LoadBookmarks()
}

// LoadBookmarks hands the current bookmark list to a BookmarkView.
func (p *SearchPresenter) LoadBookmarks() {
	if p.isDestroyed() {
		return
	}
	res := p.backend.Bookmarks(p.ctx)

	p.deliver(func() {
		if !res.OK() {
			p.view.ShowResponseFailure(res.Err)
			return
		}
		if bv, ok := p.view.(BookmarkView); ok {
			bv.LoadBookmarks(*res.Value)
		}
	})
}

// OnDestroy cancels pending work and silences the view.
func (p *SearchPresenter) OnDestroy() {
	p.mu.Lock()
	p.destroyed = true
	p.mu.Unlock()
	p.cancel()
}

// Wait blocks until in-flight searches and detail lookups have finished.
func (p *SearchPresenter) Wait() {
	p.inflight.Wait()
}

func (p *SearchPresenter) isDestroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// deliver runs fn unless the presenter is destroyed and reports whether it ran.
func (p *SearchPresenter) deliver(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return false
	}
	fn()
	return true
}
