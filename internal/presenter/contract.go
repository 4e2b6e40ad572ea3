// Package presenter defines the boundary between the terminal screens and
// the repository.
package presenter

import (
	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
)

// Presenter is driven by a view in response to user input.
type Presenter interface {
	SearchByTitle(title string, page int)
	SaveBookmark(show provider.ShowSummary)
	LoadBookmarks()
	RemoveBookmark(id string)
	ShowDetails(id string)
	// OnDestroy stops delivery. No view callback runs after it returns.
	OnDestroy()
}

// View reacts to presenter callbacks. Callbacks may arrive on any goroutine
// but never concurrently.
type View interface {
	ShowProgress()
	HideProgress()
	LoadSearchResult(shows []provider.ShowSummary)
	ShowEmptyErrorTitle()
	ShowResponseFailure(err error)
}

// PageView is implemented by views that show paging state.
type PageView interface {
	LoadPageInfo(query string, page, totalPages, totalResults int)
}

// BookmarkView is implemented by views that show bookmarks.
type BookmarkView interface {
	LoadBookmarks(bookmarks []store.Bookmark)
	BookmarkSaved(show provider.ShowSummary, created bool)
	BookmarkFailed(show provider.ShowSummary, err error)
}

// DetailsView is implemented by views that show a details panel.
type DetailsView interface {
	LoadDetails(details provider.ShowDetails)
}
