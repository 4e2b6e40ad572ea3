package search

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/repository"
	"github.com/Digital-Shane/show-manager/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/google/go-cmp/cmp"
)

type fakeBackend struct {
	mu       sync.Mutex
	pages    []int
	failure  error
	inserted []store.Bookmark
	details  provider.ShowDetails
}

func (f *fakeBackend) SearchAsync(ctx context.Context, query string, page int) <-chan repository.Result[provider.SearchPage] {
	f.mu.Lock()
	f.pages = append(f.pages, page)
	failure := f.failure
	f.mu.Unlock()

	out := make(chan repository.Result[provider.SearchPage], 1)
	if failure != nil {
		out <- repository.Result[provider.SearchPage]{Status: repository.StatusTransportError, Err: failure}
	} else {
		out <- repository.Result[provider.SearchPage]{Status: repository.StatusOK, Value: batmanPage(query, page)}
	}
	close(out)
	return out
}

func (f *fakeBackend) DetailsAsync(ctx context.Context, id string) <-chan repository.Result[provider.ShowDetails] {
	out := make(chan repository.Result[provider.ShowDetails], 1)
	d := f.details
	out <- repository.Result[provider.ShowDetails]{Status: repository.StatusOK, Value: &d}
	close(out)
	return out
}

func (f *fakeBackend) InsertBookmark(ctx context.Context, b store.Bookmark) repository.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.inserted {
		if existing.ID == b.ID {
			return repository.Outcome{Status: repository.StatusOK}
		}
	}
	f.inserted = append(f.inserted, b)
	return repository.Outcome{Status: repository.StatusOK, Changed: true}
}

func (f *fakeBackend) DeleteBookmark(ctx context.Context, id string) repository.Outcome {
	return repository.Outcome{Status: repository.StatusOK, Changed: true}
}

func (f *fakeBackend) Bookmarks(ctx context.Context) repository.Result[[]store.Bookmark] {
	f.mu.Lock()
	list := append([]store.Bookmark(nil), f.inserted...)
	f.mu.Unlock()
	return repository.Result[[]store.Bookmark]{Status: repository.StatusOK, Value: &list}
}

func (f *fakeBackend) CatalogFor(id string) string { return "omdb" }

func (f *fakeBackend) Pages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.pages...)
}

func (f *fakeBackend) Inserted() []store.Bookmark {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Bookmark(nil), f.inserted...)
}

func batmanPage(query string, page int) *provider.SearchPage {
	results := make([]provider.ShowSummary, 10)
	for i := range results {
		results[i] = provider.ShowSummary{
			ID:     fmt.Sprintf("tt%07d", page*100+i),
			Title:  fmt.Sprintf("Batman Part %d-%d", page, i),
			Year:   "2005",
			Poster: "N/A",
			Type:   provider.MediaTypeMovie,
		}
	}
	if page == 1 {
		results[0] = provider.ShowSummary{
			ID:     "tt0372784",
			Title:  "Batman Begins",
			Year:   "2005",
			Poster: "https://m.media-amazon.com/images/M/batman-begins.jpg",
			Type:   provider.MediaTypeMovie,
		}
	}
	return &provider.SearchPage{
		Query:        query,
		Page:         page,
		Results:      results,
		TotalResults: 25,
		TotalPages:   3,
		Source:       "omdb",
	}
}

func startSearchTestModel(t *testing.T, model *Model) *teatest.TestModel {
	t.Helper()
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(100, 24))
	t.Cleanup(func() {
		_ = tm.Quit()
	})
	tm.Send(tea.WindowSizeMsg{Width: 100, Height: 24})
	return tm
}

func finalSearchModel(t *testing.T, tm *teatest.TestModel) *Model {
	t.Helper()
	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second))
	model, ok := final.(*Model)
	if !ok {
		t.Fatalf("Final model type = %T, want *Model", final)
	}
	return model
}

func waitForOutput(t *testing.T, tm *teatest.TestModel, contains string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte(contains))
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(25*time.Millisecond))
}

func typeText(tm *teatest.TestModel, text string) {
	for _, r := range text {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSearchShowsResults(t *testing.T) {
	backend := &fakeBackend{}
	model := New(backend)
	tm := startSearchTestModel(t, model)

	typeText(tm, "batman")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitForOutput(t, tm, "Batman Begins")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	final := finalSearchModel(t, tm)

	if got := final.adapter.ItemCount(); got != 10 {
		t.Errorf("ItemCount() = %d, want 10", got)
	}
	if final.query != "batman" || final.page != 1 || final.totalPages != 3 || final.totalFound != 25 {
		t.Errorf("page state = %q %d/%d (%d), want batman 1/3 (25)", final.query, final.page, final.totalPages, final.totalFound)
	}
	if final.focus != focusList {
		t.Errorf("focus = %v, want list after results", final.focus)
	}
	if final.loading {
		t.Error("loading = true after results")
	}
}

func TestSearchWithQueryRunsOnStart(t *testing.T) {
	backend := &fakeBackend{}
	tm := startSearchTestModel(t, New(backend, WithQuery("batman")))

	waitForOutput(t, tm, "Batman Begins")
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	finalSearchModel(t, tm)

	if diff := cmp.Diff([]int{1}, backend.Pages()); diff != "" {
		t.Errorf("pages requested mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchBlankTitle(t *testing.T) {
	backend := &fakeBackend{}
	tm := startSearchTestModel(t, New(backend))

	typeText(tm, "   ")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitForOutput(t, tm, "Enter a title to search")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	final := finalSearchModel(t, tm)

	if !final.statusErr {
		t.Error("statusErr = false, want true for a blank title")
	}
	if pages := backend.Pages(); len(pages) != 0 {
		t.Errorf("backend searched pages %v, want none", pages)
	}
}

func TestSearchFailure(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"auth": {
			err:  &provider.ProviderError{Provider: "omdb", Code: provider.CodeAuthFailed, Message: "Invalid API key!"},
			want: "rejected the API key",
		},
		"rate limited": {
			err:  &provider.ProviderError{Provider: "omdb", Code: provider.CodeRateLimited, Message: "Request limit reached!"},
			want: "rate limit reached",
		},
		"transport": {
			err:  fmt.Errorf("dial tcp: connection refused"),
			want: "Request failed: dial tcp",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			backend := &fakeBackend{failure: tc.err}
			tm := startSearchTestModel(t, New(backend, WithQuery("batman")))

			waitForOutput(t, tm, tc.want)
			tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
			final := finalSearchModel(t, tm)

			if final.adapter.ItemCount() != 0 {
				t.Errorf("ItemCount() = %d, want 0 after failure", final.adapter.ItemCount())
			}
		})
	}
}

func TestSearchPaging(t *testing.T) {
	backend := &fakeBackend{}
	tm := startSearchTestModel(t, New(backend, WithQuery("batman")))
	waitForOutput(t, tm, "Page 1 of 3")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlN})
	waitForOutput(t, tm, "Page 2 of 3")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlN})
	waitForOutput(t, tm, "Page 3 of 3")

	// Already on the last page.
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlN})

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlP})
	waitForOutput(t, tm, "Batman Part 2-0")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	final := finalSearchModel(t, tm)

	if diff := cmp.Diff([]int{1, 2, 3, 2}, backend.Pages()); diff != "" {
		t.Errorf("pages requested mismatch (-want +got):\n%s", diff)
	}
	if final.page != 2 {
		t.Errorf("page = %d, want 2", final.page)
	}
}

func TestSearchBookmarkSelection(t *testing.T) {
	backend := &fakeBackend{}
	tm := startSearchTestModel(t, New(backend, WithQuery("batman")))
	waitForOutput(t, tm, "Batman Begins")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlB})
	waitForOutput(t, tm, "Saved Batman Begins")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlB})
	waitForOutput(t, tm, "already bookmarked")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	finalSearchModel(t, tm)

	inserted := backend.Inserted()
	if len(inserted) != 1 {
		t.Fatalf("inserted = %d bookmarks, want 1", len(inserted))
	}
	want := store.Bookmark{
		ID:      "tt0372784",
		Title:   "Batman Begins",
		Year:    "2005",
		Poster:  "https://m.media-amazon.com/images/M/batman-begins.jpg",
		Type:    provider.MediaTypeMovie,
		Catalog: "omdb",
	}
	got := inserted[0]
	got.CreatedAt = time.Time{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bookmark mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchSelectionAndDetails(t *testing.T) {
	backend := &fakeBackend{details: provider.ShowDetails{
		ID:       "tt0000101",
		Title:    "Batman Part 1-1",
		Year:     "2005",
		Director: "Christopher Nolan",
		Plot:     "After training with his mentor, Batman begins his fight to free crime-ridden Gotham City.",
		Rating:   8.2,
		Type:     provider.MediaTypeMovie,
	}}
	tm := startSearchTestModel(t, New(backend, WithQuery("batman")))
	waitForOutput(t, tm, "Batman Begins")

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitForOutput(t, tm, "Christopher Nolan")

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	final := finalSearchModel(t, tm)

	if final.selected != 1 {
		t.Errorf("selected = %d, want 1", final.selected)
	}
	if !final.hasDetails {
		t.Error("hasDetails = false after details loaded")
	}
	if final.focus != focusDetails {
		t.Errorf("focus = %v, want details", final.focus)
	}
}

func TestSearchQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyType
	}{
		{name: "esc", key: tea.KeyEsc},
		{name: "ctrl_c", key: tea.KeyCtrlC},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := New(&fakeBackend{})
			tm := startSearchTestModel(t, model)

			tm.Send(tea.KeyMsg{Type: tc.key})
			tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

			final := finalSearchModel(t, tm)
			select {
			case <-final.bridge.done:
			default:
				t.Error("bridge still open after quitting")
			}
		})
	}
}

func TestFormatDetails(t *testing.T) {
	model := New(&fakeBackend{})
	out := formatDetails(provider.ShowDetails{
		Title:    "Breaking Bad",
		Year:     "2008",
		Genres:   []string{"Crime", "Drama"},
		Awards:   "N/A",
		Poster:   "",
		Networks: []string{"AMC"},
	}, model.theme, 60)

	for _, want := range []string{"Breaking Bad (2008)", "Crime, Drama", "AMC", "No poster"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("formatDetails() missing %q:\n%s", want, out)
		}
	}
	if bytes.Contains([]byte(out), []byte("Awards")) {
		t.Errorf("formatDetails() rendered an N/A field:\n%s", out)
	}
}

func TestCloseReleasesBlockedPresenter(t *testing.T) {
	model := New(&fakeBackend{})
	for i := 0; i < cap(model.bridge.events); i++ {
		model.bridge.send(progressMsg{loading: true})
	}

	searched := make(chan struct{})
	go func() {
		model.Presenter().SearchByTitle("Batman", 1)
		close(searched)
	}()

	model.Close()
	model.Close()

	select {
	case <-searched:
	case <-time.After(2 * time.Second):
		t.Fatal("search still blocked on a full bridge after Close")
	}

	waited := make(chan struct{})
	go func() {
		model.Presenter().Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("presenter Wait() did not return after Close")
	}

	select {
	case <-model.bridge.done:
	default:
		t.Error("bridge still open after Close")
	}
}
