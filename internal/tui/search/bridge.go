package search

import (
	"github.com/Digital-Shane/show-manager/internal/presenter"
	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

type progressMsg struct{ loading bool }

type resultsMsg struct{ shows []provider.ShowSummary }

type pageInfoMsg struct {
	query                   string
	page, pages, totalFound int
}

type emptyTitleMsg struct{}

type failureMsg struct{ err error }

type detailsMsg struct{ details provider.ShowDetails }

type bookmarkSavedMsg struct {
	show    provider.ShowSummary
	created bool
}

type bookmarkFailedMsg struct {
	show provider.ShowSummary
	err  error
}

type bookmarksMsg struct{ bookmarks []store.Bookmark }

// bridge turns presenter callbacks into tea messages. Sends give up once
// done is closed so a quitting program never blocks the presenter.
type bridge struct {
	events chan tea.Msg
	done   chan struct{}
}

var (
	_ presenter.View         = (*bridge)(nil)
	_ presenter.PageView     = (*bridge)(nil)
	_ presenter.DetailsView  = (*bridge)(nil)
	_ presenter.BookmarkView = (*bridge)(nil)
)

func newBridge() *bridge {
	return &bridge{
		events: make(chan tea.Msg, 16),
		done:   make(chan struct{}),
	}
}

func (b *bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// listen waits for the next presenter event.
func (b *bridge) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *bridge) close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

func (b *bridge) ShowProgress()                                 { b.send(progressMsg{loading: true}) }
func (b *bridge) HideProgress()                                 { b.send(progressMsg{loading: false}) }
func (b *bridge) LoadSearchResult(shows []provider.ShowSummary) { b.send(resultsMsg{shows: shows}) }
func (b *bridge) ShowEmptyErrorTitle()                          { b.send(emptyTitleMsg{}) }
func (b *bridge) ShowResponseFailure(err error)                 { b.send(failureMsg{err: err}) }
func (b *bridge) LoadDetails(details provider.ShowDetails)      { b.send(detailsMsg{details: details}) }
func (b *bridge) LoadBookmarks(list []store.Bookmark)           { b.send(bookmarksMsg{bookmarks: list}) }

func (b *bridge) LoadPageInfo(query string, page, totalPages, totalResults int) {
	b.send(pageInfoMsg{query: query, page: page, pages: totalPages, totalFound: totalResults})
}

func (b *bridge) BookmarkSaved(show provider.ShowSummary, created bool) {
	b.send(bookmarkSavedMsg{show: show, created: created})
}

func (b *bridge) BookmarkFailed(show provider.ShowSummary, err error) {
	b.send(bookmarkFailedMsg{show: show, err: err})
}
