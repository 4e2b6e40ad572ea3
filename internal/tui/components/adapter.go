package components

import (
	"strings"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"
	"github.com/mattn/go-runewidth"
)

// PosterPlaceholder marks a row whose poster is missing or failed to load.
const PosterPlaceholder = "placeholder"

// ShowRow is the display state of one result row.
type ShowRow struct {
	Title      string
	Year       string
	Poster     string // poster URL or PosterPlaceholder
	PosterIcon string
}

// HasPoster reports whether the row points at a real poster.
func (r ShowRow) HasPoster() bool {
	return r.Poster != PosterPlaceholder
}

// ShowListAdapter binds search results to list rows.
type ShowListAdapter struct {
	items []provider.ShowSummary
	theme theme.Theme
}

// NewShowListAdapter creates an adapter with no items.
func NewShowListAdapter(th theme.Theme) *ShowListAdapter {
	return &ShowListAdapter{theme: th}
}

// SetItems replaces the bound results. A nil slice clears the list.
func (a *ShowListAdapter) SetItems(items []provider.ShowSummary) {
	if items == nil {
		a.items = nil
		return
	}
	a.items = append([]provider.ShowSummary(nil), items...)
}

// Items returns the bound results.
func (a *ShowListAdapter) Items() []provider.ShowSummary {
	return a.items
}

// ItemCount is 0 until items are set.
func (a *ShowListAdapter) ItemCount() int {
	return len(a.items)
}

// Item returns the result at index.
func (a *ShowListAdapter) Item(index int) (provider.ShowSummary, bool) {
	if index < 0 || index >= len(a.items) {
		return provider.ShowSummary{}, false
	}
	return a.items[index], true
}

// Bind fills a row holder for index.
func (a *ShowListAdapter) Bind(index int) (ShowRow, bool) {
	show, ok := a.Item(index)
	if !ok {
		return ShowRow{}, false
	}

	row := ShowRow{
		Title:      show.Title,
		Year:       show.Year,
		Poster:     PosterPlaceholder,
		PosterIcon: a.theme.Icon("noposter"),
	}
	if provider.HasPoster(show.Poster) {
		row.Poster = strings.TrimSpace(show.Poster)
		row.PosterIcon = a.typeIcon(show.Type)
	}
	return row, true
}

func (a *ShowListAdapter) typeIcon(t provider.MediaType) string {
	switch t {
	case provider.MediaTypeSeries:
		return a.theme.Icon("series")
	case provider.MediaTypeMovie:
		return a.theme.Icon("movie")
	case provider.MediaTypeEpisode:
		return a.theme.Icon("episode")
	case provider.MediaTypeGame:
		return a.theme.Icon("game")
	default:
		return a.theme.Icon("poster")
	}
}

// RenderRow renders one row truncated to width.
func (a *ShowListAdapter) RenderRow(index, width int, selected bool) string {
	row, ok := a.Bind(index)
	if !ok {
		return ""
	}

	year := ""
	if row.Year != "" {
		year = " (" + row.Year + ")"
	}
	line := row.PosterIcon + " " + row.Title
	if width > 0 {
		avail := width - runewidth.StringWidth(year)
		if avail < 1 {
			avail = 1
		}
		line = runewidth.Truncate(line, avail, "…")
	}

	if selected {
		text := line + year
		if width > 0 {
			text = runewidth.FillRight(text, width)
		}
		return a.theme.SelectedRowStyle().Render(text)
	}
	return line + a.theme.MutedStyle().Render(year)
}

// Render draws every row, highlighting selected.
func (a *ShowListAdapter) Render(width, selected int) string {
	return a.RenderWindow(width, 0, selected)
}

// RenderWindow draws at most height rows, scrolled so selected stays
// visible. A height of 0 draws every row.
func (a *ShowListAdapter) RenderWindow(width, height, selected int) string {
	start, end := Window(a.ItemCount(), height, selected)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, a.RenderRow(i, width, i == selected))
	}
	return strings.Join(lines, "\n")
}

// Window returns the [start, end) slice of count rows that keeps selected
// visible within height rows.
func Window(count, height, selected int) (int, int) {
	if height <= 0 || count <= height {
		return 0, count
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > count {
		start = count - height
	}
	return start, start + height
}
