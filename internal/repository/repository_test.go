package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Digital-Shane/show-manager/internal/cache"
	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// fakeCatalog serves canned pages and records calls.
type fakeCatalog struct {
	mu          sync.Mutex
	searchCalls int
	search      func(provider.SearchRequest) (*provider.SearchPage, error)
	details     func(string) (*provider.ShowDetails, error)
}

func (f *fakeCatalog) Name() string        { return "fake" }
func (f *fakeCatalog) Description() string { return "fake catalog" }
func (f *fakeCatalog) Capabilities() provider.CatalogCapabilities {
	return provider.CatalogCapabilities{MediaTypes: []provider.MediaType{provider.MediaTypeMovie}, PageSize: 10}
}
func (f *fakeCatalog) Configure(map[string]interface{}) error { return nil }
func (f *fakeCatalog) ConfigSchema() provider.ConfigSchema    { return provider.ConfigSchema{} }
func (f *fakeCatalog) OwnsID(id string) bool                  { return strings.HasPrefix(id, "tt") }

func (f *fakeCatalog) Search(ctx context.Context, req provider.SearchRequest) (*provider.SearchPage, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.search(req)
}

func (f *fakeCatalog) Details(ctx context.Context, id string) (*provider.ShowDetails, error) {
	return f.details(id)
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

func batmanResults(req provider.SearchRequest) (*provider.SearchPage, error) {
	if !strings.EqualFold(req.Query, "batman") {
		return nil, &provider.ProviderError{Provider: "fake", Code: provider.CodeNotFound, Message: "Movie not found!"}
	}
	results := make([]provider.ShowSummary, 10)
	for i := range results {
		results[i] = provider.ShowSummary{
			ID:     fmt.Sprintf("tt%07d", 372784+i),
			Title:  fmt.Sprintf("Batman %d", i+1),
			Year:   "2005",
			Poster: fmt.Sprintf("https://img.example/%d.jpg", i),
			Type:   provider.MediaTypeMovie,
		}
	}
	return &provider.SearchPage{
		Query:        req.Query,
		Page:         req.Page,
		Results:      results,
		TotalResults: 583,
		TotalPages:   59,
		Source:       "fake",
	}, nil
}

type recorder struct {
	added, removed []string
}

func (r *recorder) BookmarkAdded(b store.Bookmark)   { r.added = append(r.added, b.ID) }
func (r *recorder) BookmarkRemoved(b store.Bookmark) { r.removed = append(r.removed, b.ID) }

func newTestRepository(t *testing.T, catalog *fakeCatalog, withCache bool) *Repository {
	t.Helper()

	st, err := store.Open(store.Options{Path: filepath.Join(t.TempDir(), "shows.db")})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}

	registry := provider.NewRegistry()
	if catalog != nil {
		if err := registry.Register("fake", catalog, 100); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if err := registry.Enable("fake"); err != nil {
			t.Fatalf("Enable() error = %v", err)
		}
	}

	deps := Deps{Registry: registry, Store: st}
	if withCache {
		c, err := cache.New("memory", cache.ProviderConfig{TTL: time.Minute})
		if err != nil {
			t.Fatalf("cache.New() error = %v", err)
		}
		deps.Cache = c
	}

	r, err := New(deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSearchBatmanFirstPage(t *testing.T) {
	r := newTestRepository(t, &fakeCatalog{search: batmanResults}, false)

	res := r.Search(context.Background(), "batman", 1)
	if !res.OK() || res.Absent() {
		t.Fatalf("Search() = %+v, want a page", res)
	}
	if res.Value.Page != 1 {
		t.Errorf("Page = %d, want 1", res.Value.Page)
	}
	if len(res.Value.Results) != 10 {
		t.Errorf("len(Results) = %d, want 10", len(res.Value.Results))
	}
	if res.Value.TotalResults < 0 {
		t.Errorf("TotalResults = %d, want >= 0", res.Value.TotalResults)
	}
}

func TestSearchFailuresAreAbsent(t *testing.T) {
	tests := map[string]struct {
		err  error
		want Status
	}{
		"not found":  {err: &provider.ProviderError{Code: provider.CodeNotFound}, want: StatusNotFound},
		"rate limit": {err: &provider.ProviderError{Code: provider.CodeRateLimited}, want: StatusTransportError},
		"decode":     {err: &provider.ProviderError{Code: provider.CodeDecodeFailed}, want: StatusTransportError},
		"network":    {err: errors.New("dial tcp: connection refused"), want: StatusTransportError},
		"deadline":   {err: context.DeadlineExceeded, want: StatusTransportError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := newTestRepository(t, &fakeCatalog{
				search: func(provider.SearchRequest) (*provider.SearchPage, error) { return nil, tc.err },
			}, false)

			res := r.Search(context.Background(), "batman", 1)
			if !res.Absent() {
				t.Errorf("Search() value = %+v, want absent", res.Value)
			}
			if res.Status != tc.want {
				t.Errorf("Status = %v, want %v", res.Status, tc.want)
			}
			if !errors.Is(res.Err, tc.err) {
				t.Errorf("Err = %v, want %v", res.Err, tc.err)
			}
		})
	}
}

func TestSearchInvalidInput(t *testing.T) {
	catalog := &fakeCatalog{search: batmanResults}
	r := newTestRepository(t, catalog, false)

	res := r.Search(context.Background(), "   ", 1)
	if res.Status != StatusInvalid || !res.Absent() {
		t.Errorf("Search(blank) = %+v, want invalid and absent", res)
	}
	if catalog.calls() != 0 {
		t.Errorf("catalog calls = %d, want 0", catalog.calls())
	}
}

func TestSearchWithoutCatalog(t *testing.T) {
	r := newTestRepository(t, nil, false)

	res := r.Search(context.Background(), "batman", 1)
	if res.Status != StatusInvalid || !errors.Is(res.Err, ErrNoCatalog) {
		t.Errorf("Search() = %+v, want ErrNoCatalog", res)
	}
}

func TestSearchUsesCache(t *testing.T) {
	catalog := &fakeCatalog{search: batmanResults}
	r := newTestRepository(t, catalog, true)

	first := r.Search(context.Background(), "batman", 1)
	second := r.Search(context.Background(), "Batman", 1)
	if !first.OK() || !second.OK() {
		t.Fatalf("Search() statuses = %v, %v", first.Status, second.Status)
	}
	if catalog.calls() != 1 {
		t.Errorf("catalog calls = %d, want 1", catalog.calls())
	}
	if second.Value.Query != "Batman" {
		t.Errorf("cached page Query = %q, want %q", second.Value.Query, "Batman")
	}
	if diff := cmp.Diff(first.Value.Results, second.Value.Results); diff != "" {
		t.Errorf("cached results mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchAsyncDeliversOnceThenCloses(t *testing.T) {
	r := newTestRepository(t, &fakeCatalog{search: batmanResults}, false)

	ch := r.SearchAsync(context.Background(), "batman", 2)

	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before delivering a result")
		}
		if !res.OK() || res.Value.Page != 2 {
			t.Errorf("SearchAsync() = %+v, want page 2", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async search")
	}

	if _, ok := <-ch; ok {
		t.Error("channel delivered a second value")
	}
}

func TestDetailsRouting(t *testing.T) {
	r := newTestRepository(t, &fakeCatalog{
		search: batmanResults,
		details: func(id string) (*provider.ShowDetails, error) {
			return &provider.ShowDetails{ID: id, Title: "Batman Begins", Year: "2005"}, nil
		},
	}, false)

	res := <-r.DetailsAsync(context.Background(), "tt0372784")
	if !res.OK() || res.Value.Title != "Batman Begins" {
		t.Fatalf("DetailsAsync() = %+v", res)
	}

	res = r.Details(context.Background(), "tmdb:1396")
	if res.Status != StatusInvalid || !res.Absent() {
		t.Errorf("Details(unowned) = %+v, want invalid", res)
	}
}

func TestDetailsFailuresAreAbsent(t *testing.T) {
	tests := map[string]struct {
		err  error
		want Status
	}{
		"not found":  {err: &provider.ProviderError{Code: provider.CodeNotFound}, want: StatusNotFound},
		"rate limit": {err: &provider.ProviderError{Code: provider.CodeRateLimited}, want: StatusTransportError},
		"decode":     {err: &provider.ProviderError{Code: provider.CodeDecodeFailed}, want: StatusTransportError},
		"network":    {err: errors.New("dial tcp: connection refused"), want: StatusTransportError},
		"deadline":   {err: context.DeadlineExceeded, want: StatusTransportError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := newTestRepository(t, &fakeCatalog{
				search:  batmanResults,
				details: func(string) (*provider.ShowDetails, error) { return nil, tc.err },
			}, false)

			res := r.Details(context.Background(), "tt0372784")
			if !res.Absent() {
				t.Errorf("Details() value = %+v, want absent", res.Value)
			}
			if res.Status != tc.want {
				t.Errorf("Status = %v, want %v", res.Status, tc.want)
			}
			if !errors.Is(res.Err, tc.err) {
				t.Errorf("Err = %v, want %v", res.Err, tc.err)
			}

			select {
			case async := <-r.DetailsAsync(context.Background(), "tt0372784"):
				if !async.Absent() || async.Status != tc.want {
					t.Errorf("DetailsAsync() = %+v, want absent with %v", async, tc.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for async details")
			}
		})
	}
}

func TestBookmarkInsertTwiceKeepsOne(t *testing.T) {
	r := newTestRepository(t, &fakeCatalog{search: batmanResults}, false)
	rec := &recorder{}
	r.SetRecorder(rec)
	ctx := context.Background()

	b := store.Bookmark{ID: "tt0372784", Title: "Batman Begins", Year: "2005", Catalog: "omdb"}

	first := r.InsertBookmark(ctx, b)
	if !first.OK() || !first.Changed {
		t.Fatalf("first InsertBookmark() = %+v", first)
	}
	second := r.InsertBookmark(ctx, b)
	if !second.OK() || second.Changed {
		t.Fatalf("second InsertBookmark() = %+v, want OK unchanged", second)
	}

	list := r.Bookmarks(ctx)
	if !list.OK() {
		t.Fatalf("Bookmarks() = %+v", list)
	}
	want := []store.Bookmark{b}
	if diff := cmp.Diff(want, *list.Value, cmpopts.IgnoreFields(store.Bookmark{}, "CreatedAt")); diff != "" {
		t.Errorf("Bookmarks() mismatch (-want +got):\n%s", diff)
	}

	del := r.DeleteBookmark(ctx, b.ID)
	if !del.OK() || !del.Changed {
		t.Fatalf("DeleteBookmark() = %+v", del)
	}
	if list := r.Bookmarks(ctx); len(*list.Value) != 0 {
		t.Errorf("Bookmarks() after delete = %v, want empty", *list.Value)
	}

	if diff := cmp.Diff([]string{"tt0372784"}, rec.added); diff != "" {
		t.Errorf("recorded adds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tt0372784"}, rec.removed); diff != "" {
		t.Errorf("recorded removes mismatch (-want +got):\n%s", diff)
	}
}

func TestBookmarkStorageErrorIsOutcome(t *testing.T) {
	r := newTestRepository(t, &fakeCatalog{search: batmanResults}, false)
	r.store.Close()

	out := r.InsertBookmark(context.Background(), store.Bookmark{ID: "tt1", Title: "x"})
	if out.OK() || out.Status != StatusStorageError {
		t.Errorf("InsertBookmark() on closed store = %+v, want storage error", out)
	}

	list := r.Bookmarks(context.Background())
	if !list.Absent() || list.Status != StatusStorageError {
		t.Errorf("Bookmarks() on closed store = %+v, want storage error", list)
	}
}

func TestSubscribeBookmarks(t *testing.T) {
	r := newTestRepository(t, &fakeCatalog{search: batmanResults}, false)
	sub := r.SubscribeBookmarks()
	defer sub.Close()

	next := func() []store.Bookmark {
		t.Helper()
		select {
		case list := <-sub.C:
			return list
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for bookmarks")
			return nil
		}
	}

	if got := next(); len(got) != 0 {
		t.Fatalf("initial bookmarks = %v, want empty", got)
	}
	r.InsertBookmark(context.Background(), store.Bookmark{ID: "tt0372784", Title: "Batman Begins"})
	if got := next(); len(got) != 1 || got[0].ID != "tt0372784" {
		t.Errorf("bookmarks after insert = %v", got)
	}

	sub.Close()
	sub.Close()
}

func TestProcessWideInstance(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })

	if Default() != nil {
		t.Fatal("Default() before Init is not nil")
	}

	cfg := Config{DatabasePath: filepath.Join(t.TempDir(), "shows.db")}
	first, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	second, err := Init(cfg)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if first != second || Default() != first {
		t.Fatal("Init/Default returned different instances")
	}

	if err := Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if Default() != nil {
		t.Fatal("Default() after Shutdown is not nil")
	}
}

func TestNewRegistryEnablesConfiguredCatalogs(t *testing.T) {
	registry := NewRegistry(map[string]map[string]interface{}{
		"omdb": {"api_key": "testing"},
	}, nil)

	if diff := cmp.Diff([]string{"omdb", "tmdb"}, registry.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"omdb"}, registry.Enabled()); diff != "" {
		t.Errorf("Enabled() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusStorageError.String(); got != "storage_error" {
		t.Errorf("String() = %q", got)
	}
}
