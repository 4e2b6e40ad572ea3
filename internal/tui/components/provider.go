package components

import (
	"fmt"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"

	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/lipgloss"
)

// typeIs returns a predicate matching bookmarks of media type t
func typeIs(t provider.MediaType) func(*treeview.Node[store.Bookmark]) bool {
	return func(n *treeview.Node[store.Bookmark]) bool {
		return n.Data().Type == t
	}
}

// missingPoster matches bookmarks without a usable poster
func missingPoster() func(*treeview.Node[store.Bookmark]) bool {
	return func(n *treeview.Node[store.Bookmark]) bool {
		return !provider.HasPoster(n.Data().Poster)
	}
}

// CreateBookmarkProvider constructs the [treeview.DefaultNodeProvider] for
// the bookmark list. Missing posters take the placeholder icon ahead of the
// media type icon.
func CreateBookmarkProvider(th theme.Theme) *treeview.DefaultNodeProvider[store.Bookmark] {
	colors := th.Colors()

	noPosterIconRule := treeview.WithIconRule(missingPoster(), th.Icon("noposter"))
	seriesIconRule := treeview.WithIconRule(typeIs(provider.MediaTypeSeries), th.Icon("series"))
	movieIconRule := treeview.WithIconRule(typeIs(provider.MediaTypeMovie), th.Icon("movie"))
	episodeIconRule := treeview.WithIconRule(typeIs(provider.MediaTypeEpisode), th.Icon("episode"))
	defaultIconRule := treeview.WithDefaultIcon[store.Bookmark](th.Icon("bookmark"))

	seriesStyleRule := treeview.WithStyleRule(
		typeIs(provider.MediaTypeSeries),
		lipgloss.NewStyle().Foreground(colors.Primary).Bold(true),
		lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Secondary).PaddingRight(1),
	)
	defaultStyleRule := treeview.WithStyleRule(
		func(*treeview.Node[store.Bookmark]) bool { return true },
		lipgloss.NewStyle().Foreground(colors.Primary),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Primary).PaddingRight(1),
	)

	return treeview.NewDefaultNodeProvider(
		noPosterIconRule, seriesIconRule, movieIconRule, episodeIconRule, defaultIconRule,
		seriesStyleRule, defaultStyleRule,
		treeview.WithFormatter(BookmarkFormatter),
	)
}

// BookmarkFormatter labels a bookmark node with [BookmarkLabel].
func BookmarkFormatter(node *treeview.Node[store.Bookmark]) (string, bool) {
	return BookmarkLabel(*node.Data()), true
}

// BookmarkLabel renders a bookmark as "Title (Year)".
func BookmarkLabel(b store.Bookmark) string {
	if b.Year == "" {
		return b.Title
	}
	return fmt.Sprintf("%s (%s)", b.Title, b.Year)
}

// BookmarkNodes converts bookmarks into tree nodes keyed by bookmark id.
func BookmarkNodes(list []store.Bookmark) []*treeview.Node[store.Bookmark] {
	nodes := make([]*treeview.Node[store.Bookmark], 0, len(list))
	for _, b := range list {
		nodes = append(nodes, treeview.NewNode(b.ID, b.Title, b))
	}
	return nodes
}
