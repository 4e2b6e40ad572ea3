package components

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/Digital-Shane/show-manager/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-runewidth"
)

func testTheme() theme.Theme {
	return theme.New(theme.WithIconSet(theme.IconSet{
		"series":   "[TV]",
		"movie":    "[M]",
		"episode":  "[E]",
		"poster":   "[P]",
		"noposter": "[ ]",
		"bookmark": "[B]",
	}))
}

func batmanResults() []provider.ShowSummary {
	titles := []string{
		"Batman Begins", "The Batman", "Batman v Superman: Dawn of Justice", "Batman",
		"Batman Returns", "Batman & Robin", "Batman Forever", "Batman: The Animated Series",
		"Batman: Under the Red Hood", "Batman: The Killing Joke",
	}
	results := make([]provider.ShowSummary, len(titles))
	for i, title := range titles {
		results[i] = provider.ShowSummary{
			ID:     "tt" + strings.Repeat("0", 6) + string(rune('0'+i)),
			Title:  title,
			Year:   "2005",
			Poster: "https://m.media-amazon.com/images/" + strings.ToLower(strings.ReplaceAll(title, " ", "-")) + ".jpg",
			Type:   provider.MediaTypeMovie,
		}
	}
	results[7].Type = provider.MediaTypeSeries
	results[8].Poster = "N/A"
	results[9].Poster = ""
	return results
}

func TestShowListAdapterUnsetCountIsZero(t *testing.T) {
	adapter := NewShowListAdapter(testTheme())

	if got := adapter.ItemCount(); got != 0 {
		t.Errorf("ItemCount() before SetItems = %d, want 0", got)
	}
	if _, ok := adapter.Bind(0); ok {
		t.Error("Bind(0) on empty adapter ok = true, want false")
	}
	if got := adapter.Render(40, 0); got != "" {
		t.Errorf("Render() on empty adapter = %q, want empty", got)
	}
}

func TestShowListAdapterBatmanPage(t *testing.T) {
	adapter := NewShowListAdapter(testTheme())
	adapter.SetItems(batmanResults())

	if got := adapter.ItemCount(); got != 10 {
		t.Fatalf("ItemCount() = %d, want 10", got)
	}

	row, ok := adapter.Bind(0)
	if !ok {
		t.Fatal("Bind(0) ok = false")
	}
	want := ShowRow{
		Title:      "Batman Begins",
		Year:       "2005",
		Poster:     "https://m.media-amazon.com/images/batman-begins.jpg",
		PosterIcon: "[M]",
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Bind(0) mismatch (-want +got):\n%s", diff)
	}

	if row, _ := adapter.Bind(7); row.PosterIcon != "[TV]" {
		t.Errorf("Bind(7) icon = %q, want series icon", row.PosterIcon)
	}

	if _, ok := adapter.Bind(10); ok {
		t.Error("Bind(10) ok = true, want false")
	}
	if _, ok := adapter.Bind(-1); ok {
		t.Error("Bind(-1) ok = true, want false")
	}
}

func TestShowListAdapterPlaceholderPoster(t *testing.T) {
	adapter := NewShowListAdapter(testTheme())
	adapter.SetItems(batmanResults())

	for _, index := range []int{8, 9} {
		row, ok := adapter.Bind(index)
		if !ok {
			t.Fatalf("Bind(%d) ok = false", index)
		}
		if row.HasPoster() || row.Poster != PosterPlaceholder || row.PosterIcon != "[ ]" {
			t.Errorf("Bind(%d) = %+v, want placeholder poster", index, row)
		}
	}
}

func TestShowListAdapterSetItemsCopies(t *testing.T) {
	adapter := NewShowListAdapter(testTheme())
	items := batmanResults()
	adapter.SetItems(items)

	items[0].Title = "mutated"
	if show, _ := adapter.Item(0); show.Title != "Batman Begins" {
		t.Errorf("Item(0).Title = %q, want Batman Begins", show.Title)
	}

	adapter.SetItems(nil)
	if got := adapter.ItemCount(); got != 0 {
		t.Errorf("ItemCount() after SetItems(nil) = %d, want 0", got)
	}
}

func TestShowListAdapterRender(t *testing.T) {
	adapter := NewShowListAdapter(testTheme())
	adapter.SetItems(batmanResults())

	out := adapter.Render(24, 0)
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("Render() lines = %d, want 10", len(lines))
	}
	if !strings.Contains(out, "Batman Begins") {
		t.Errorf("Render() missing first title:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("Render() did not truncate long titles:\n%s", out)
	}

	windowed := strings.Split(adapter.RenderWindow(40, 3, 9), "\n")
	if len(windowed) != 3 || !strings.Contains(windowed[2], "Killing Joke") {
		t.Errorf("RenderWindow() = %q, want last three rows", windowed)
	}
}

func TestRenderRowFitsWidth(t *testing.T) {
	adapter := NewShowListAdapter(testTheme())
	adapter.SetItems([]provider.ShowSummary{{Title: "Batman v Superman: Dawn of Justice", Year: "2016"}})

	line := adapter.RenderRow(0, 20, false)
	// Strip the styled year before measuring.
	plain := strings.SplitN(line, " (", 2)[0]
	if w := runewidth.StringWidth(plain); w > 20-len(" (2016)") {
		t.Errorf("RenderRow() title width = %d, want <= %d", w, 20-len(" (2016)"))
	}
}

func TestWindow(t *testing.T) {
	tests := map[string]struct {
		count, height, selected int
		start, end              int
	}{
		"fits":       {count: 5, height: 10, selected: 2, start: 0, end: 5},
		"unbounded":  {count: 5, height: 0, selected: 4, start: 0, end: 5},
		"top":        {count: 20, height: 5, selected: 0, start: 0, end: 5},
		"middle":     {count: 20, height: 5, selected: 10, start: 8, end: 13},
		"bottom":     {count: 20, height: 5, selected: 19, start: 15, end: 20},
		"empty list": {count: 0, height: 5, selected: 0, start: 0, end: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			start, end := Window(tc.count, tc.height, tc.selected)
			if start != tc.start || end != tc.end {
				t.Errorf("Window(%d, %d, %d) = [%d, %d), want [%d, %d)", tc.count, tc.height, tc.selected, start, end, tc.start, tc.end)
			}
		})
	}
}

func TestBookmarkNodesAndFormatter(t *testing.T) {
	list := []store.Bookmark{
		{ID: "tt0372784", Title: "Batman Begins", Year: "2005", Type: provider.MediaTypeMovie},
		{ID: "tmdb:1396", Title: "Breaking Bad", Type: provider.MediaTypeSeries},
	}

	nodes := BookmarkNodes(list)
	if len(nodes) != 2 || nodes[1].ID() != "tmdb:1396" {
		t.Fatalf("BookmarkNodes() = %v", nodes)
	}

	if got, _ := BookmarkFormatter(nodes[0]); got != "Batman Begins (2005)" {
		t.Errorf("BookmarkFormatter(0) = %q", got)
	}
	if got, _ := BookmarkFormatter(nodes[1]); got != "Breaking Bad" {
		t.Errorf("BookmarkFormatter(1) = %q", got)
	}

	tree := treeview.NewTree(nodes, treeview.WithProvider(CreateBookmarkProvider(testTheme())))
	if _, err := tree.SetFocusedID(context.Background(), "tmdb:1396"); err != nil {
		t.Fatalf("SetFocusedID() error = %v", err)
	}
	if focused := tree.GetFocusedNode(); focused == nil || focused.Data().Title != "Breaking Bad" {
		t.Errorf("focused node = %v, want Breaking Bad", focused)
	}
}

func TestDebounceMsg(t *testing.T) {
	type clearStatus struct{}
	cmd := DebounceMsg(time.Millisecond, clearStatus{})
	if _, ok := cmd().(clearStatus); !ok {
		t.Error("DebounceMsg() did not deliver the message")
	}
}
