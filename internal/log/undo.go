package log

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Digital-Shane/show-manager/internal/store"
)

// BookmarkWriter is the slice of the bookmark store that undo needs.
type BookmarkWriter interface {
	Insert(ctx context.Context, b store.Bookmark) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

func UndoOperation(ctx context.Context, w BookmarkWriter, op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	if op.Bookmark.ID == "" {
		result.Error = fmt.Errorf("cannot undo %s: bookmark id missing", op.Type)
		return result
	}

	switch op.Type {
	case OpBookmarkAdd:
		// A bookmark that is already gone counts as undone.
		if _, err := w.Delete(ctx, op.Bookmark.ID); err != nil {
			result.Error = fmt.Errorf("failed to remove bookmark %s: %w", op.Bookmark.ID, err)
			return result
		}
		result.Success = true

	case OpBookmarkRemove:
		if _, err := w.Insert(ctx, op.Bookmark); err != nil {
			result.Error = fmt.Errorf("failed to restore bookmark %s: %w", op.Bookmark.ID, err)
			return result
		}
		result.Success = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

func UndoSession(ctx context.Context, w BookmarkWriter, session *LogSession) (successful int, failed int, errors []error) {
	// Process operations in reverse order
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]
		if !op.Success {
			continue
		}

		result := UndoOperation(ctx, w, op)
		if result.Success {
			successful++
		} else {
			failed++
			if result.Error != nil {
				errors = append(errors, result.Error)
			}
		}
	}

	return successful, failed, errors
}

// ErrNoSessions is returned when the journal holds no readable session.
var ErrNoSessions = errors.New("no sessions found")

// FindLatestSession returns the newest journal session and its file.
func FindLatestSession() (*LogSession, string, error) {
	files, err := listLogFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}

	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		return session, file, nil
	}
	return nil, "", ErrNoSessions
}

// RemoveSession deletes an undone session so it cannot be replayed.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove log file: %w", err)
	}
	return nil
}

type SessionSummary struct {
	Session      *LogSession
	FilePath     string
	RelativeTime string
	Icon         string
}

func GetSessionSummaries() ([]SessionSummary, error) {
	files, err := listLogFiles()
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}

		summaries = append(summaries, SessionSummary{
			Session:      session,
			FilePath:     file,
			RelativeTime: formatRelativeTime(session.Metadata.Timestamp),
			Icon:         getCommandIcon(session.Metadata.CommandArgs),
		})
	}

	return summaries, nil
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func getCommandIcon(args []string) string {
	if len(args) == 0 {
		return "❓"
	}

	switch args[0] {
	case "bookmark":
		return "🔖"
	case "browse":
		return "📚"
	case "tui", "search":
		return "🔎"
	default:
		return "📝"
	}
}
