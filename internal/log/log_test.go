package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/google/go-cmp/cmp"
)

// useTempJournal points the journal at a temp dir and restores globals afterwards.
func useTempJournal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalLoggingEnabled := loggingEnabled
	SetDirectory(dir)
	loggingEnabled = true
	t.Cleanup(func() {
		loggingEnabled = originalLoggingEnabled
		currentSession = nil
		SetDirectory("")
	})
	return dir
}

var batmanBegins = store.Bookmark{
	ID:      "tt0372784",
	Title:   "Batman Begins",
	Year:    "2005",
	Poster:  "https://m.media-amazon.com/images/batman-begins.jpg",
	Type:    provider.MediaTypeMovie,
	Catalog: "omdb",
}

func TestLogSession(t *testing.T) {
	useTempJournal(t)

	if err := StartSession("bookmark", []string{"add", "tt0372784"}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if currentSession == nil {
		t.Fatal("StartSession() should have created a session")
	}

	want := []string{"bookmark", "add", "tt0372784"}
	if diff := cmp.Diff(want, currentSession.Metadata.CommandArgs); diff != "" {
		t.Errorf("CommandArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestLogOperations(t *testing.T) {
	useTempJournal(t)

	if err := StartSession("tui", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	LogBookmarkAdd(batmanBegins, true, nil)
	LogBookmarkRemove(batmanBegins, true, nil)
	LogBookmarkAdd(store.Bookmark{ID: "tt1"}, false, os.ErrPermission)

	if len(currentSession.Operations) != 3 {
		t.Fatalf("Expected 3 operations, got %d", len(currentSession.Operations))
	}

	expectedTypes := []OperationType{OpBookmarkAdd, OpBookmarkRemove, OpBookmarkAdd}
	for i, op := range currentSession.Operations {
		if op.Type != expectedTypes[i] {
			t.Errorf("Operation %d: expected type %s, got %s", i, expectedTypes[i], op.Type)
		}
	}

	updateStats(currentSession)
	if currentSession.Metadata.SuccessfulOps != 2 || currentSession.Metadata.FailedOps != 1 {
		t.Errorf("stats = %d/%d, want 2/1", currentSession.Metadata.SuccessfulOps, currentSession.Metadata.FailedOps)
	}
	if errorOp := currentSession.Operations[2]; errorOp.Success || errorOp.Error == "" {
		t.Errorf("failed operation = %+v, want Success false with an error message", errorOp)
	}
}

func TestRecorderWritesSessionFile(t *testing.T) {
	dir := useTempJournal(t)

	if err := StartSession("bookmark", []string{"add"}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	var rec Recorder
	rec.BookmarkAdded(batmanBegins)

	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 1 {
		t.Fatalf("journal files = %d, want 1", len(files))
	}

	session, err := ReadSession(files[0])
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if session.Metadata.TotalOps != 1 {
		t.Errorf("TotalOps = %d, want 1", session.Metadata.TotalOps)
	}
	if diff := cmp.Diff(batmanBegins, session.Operations[0].Bookmark); diff != "" {
		t.Errorf("bookmark snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestEndSessionSkipsEmptySession(t *testing.T) {
	dir := useTempJournal(t)

	if err := StartSession("search", []string{"batman"}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 0 {
		t.Errorf("journal files = %d, want 0", len(files))
	}
}

func TestSessionSerialization(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Now().UTC().Truncate(time.Second)

	session := &LogSession{
		Metadata: SessionMetadata{
			CommandArgs:   []string{"bookmark", "remove"},
			Timestamp:     now,
			SessionID:     "test_session_123",
			TotalOps:      2,
			SuccessfulOps: 1,
			FailedOps:     1,
		},
		Operations: []OperationLog{
			{ID: "test_session_123_0", Timestamp: now, Type: OpBookmarkRemove, Bookmark: batmanBegins, Success: true},
			{ID: "test_session_123_1", Timestamp: now, Type: OpBookmarkRemove, Bookmark: store.Bookmark{ID: "tt404"}, Error: "not found"},
		},
	}

	testFile := filepath.Join(tempDir, "test_session.json")
	if err := writeSessionFile(session, testFile); err != nil {
		t.Fatalf("writeSessionFile() failed: %v", err)
	}

	readSession, err := ReadSession(testFile)
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if diff := cmp.Diff(session, readSession); diff != "" {
		t.Errorf("Session mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggingDisabled(t *testing.T) {
	useTempJournal(t)
	loggingEnabled = false

	if err := StartSession("test", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	LogBookmarkAdd(batmanBegins, true, nil)

	if currentSession != nil {
		t.Error("Session should not be created when logging is disabled")
	}
}

func TestInitializeCleansOldLogs(t *testing.T) {
	dir := useTempJournal(t)

	old := filepath.Join(dir, "2020-01-01_000000.000.json")
	fresh := filepath.Join(dir, "2099-01-01_000000.000.json")
	for _, f := range []string{old, fresh} {
		if err := os.WriteFile(f, []byte(`{}`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	Initialize(true, 30)

	if _, err := os.Stat(old); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old log still present: %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh log removed: %v", err)
	}

	Initialize(false, 30)
	if loggingEnabled {
		t.Error("Logging should be disabled after Initialize(false, 30)")
	}
}

func TestReadSessionsNewestFirst(t *testing.T) {
	dir := useTempJournal(t)

	for i, name := range []string{"2024-01-01_000000.000.json", "2024-03-01_000000.000.json", "broken.json"} {
		var data []byte
		if name == "broken.json" {
			data = []byte("{")
		} else {
			session := &LogSession{Metadata: SessionMetadata{SessionID: name, TotalOps: i}}
			if err := writeSessionFile(session, filepath.Join(dir, name)); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := ReadSessions(0)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}

	var got []string
	for _, s := range sessions {
		got = append(got, s.Metadata.SessionID)
	}
	want := []string{"2024-03-01_000000.000.json", "2024-01-01_000000.000.json"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadSessions() order mismatch (-want +got):\n%s", diff)
	}
}
