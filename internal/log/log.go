// Package log keeps a JSON journal of bookmark changes so a command can be undone.
package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/rs/zerolog"
)

type OperationType string

const (
	OpBookmarkAdd    OperationType = "bookmark_add"
	OpBookmarkRemove OperationType = "bookmark_remove"
)

type OperationLog struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      OperationType  `json:"type"`
	Bookmark  store.Bookmark `json:"bookmark"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Global singleton session manager
var (
	currentSession *LogSession
	sessionMutex   sync.Mutex
	loggingEnabled = true
	logDirOverride string
	logger         = zerolog.Nop()
)

// SetLogger routes journal warnings to l.
func SetLogger(l zerolog.Logger) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	logger = l
}

// SetDirectory overrides the journal directory. An empty dir restores the default.
func SetDirectory(dir string) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	logDirOverride = dir
}

// StartSession initializes a new logging session
func StartSession(command string, args []string) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled {
		return nil
	}

	now := time.Now()
	currentSession = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			Timestamp:   now,
			SessionID:   fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000),
		},
		Operations: []OperationLog{},
	}

	return nil
}

// EndSession saves the current session to disk. Sessions without
// operations are dropped so read-only commands leave no file behind.
func EndSession() error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return nil
	}

	session := currentSession
	currentSession = nil
	if len(session.Operations) == 0 {
		return nil
	}

	updateStats(session)
	return writeSessionUnsafe(session)
}

// LogBookmarkAdd logs a bookmark insertion
func LogBookmarkAdd(b store.Bookmark, success bool, err error) {
	LogOperation(OpBookmarkAdd, b, success, err)
}

// LogBookmarkRemove logs a bookmark deletion. b carries the removed row so
// undo can restore it.
func LogBookmarkRemove(b store.Bookmark, success bool, err error) {
	LogOperation(OpBookmarkRemove, b, success, err)
}

// LogOperation logs a generic operation to the current session
func LogOperation(opType OperationType, b store.Bookmark, success bool, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return
	}

	op := OperationLog{
		ID:        fmt.Sprintf("%s_%d", currentSession.Metadata.SessionID, len(currentSession.Operations)),
		Timestamp: time.Now(),
		Type:      opType,
		Bookmark:  b,
		Success:   success,
	}
	if err != nil {
		op.Error = err.Error()
	}

	currentSession.Operations = append(currentSession.Operations, op)
}

// Recorder adapts the session journal to the repository's change hook.
type Recorder struct{}

func (Recorder) BookmarkAdded(b store.Bookmark)   { LogBookmarkAdd(b, true, nil) }
func (Recorder) BookmarkRemoved(b store.Bookmark) { LogBookmarkRemove(b, true, nil) }

func updateStats(session *LogSession) {
	successful := 0
	for _, op := range session.Operations {
		if op.Success {
			successful++
		}
	}

	session.Metadata.TotalOps = len(session.Operations)
	session.Metadata.SuccessfulOps = successful
	session.Metadata.FailedOps = len(session.Operations) - successful
}

// Initialize sets up the logging system with the given configuration
func Initialize(enabled bool, retentionDays int) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	loggingEnabled = enabled

	if enabled && retentionDays > 0 {
		if err := cleanupOldLogsUnsafe(retentionDays); err != nil {
			logger.Warn().Err(err).Msg("failed to clean up old journal files")
		}
	}
}

func logDirUnsafe() (string, error) {
	if logDirOverride != "" {
		return logDirOverride, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".show-manager", "logs"), nil
}

// LogDir returns the directory holding journal files.
func LogDir() (string, error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return logDirUnsafe()
}

func newLogPathUnsafe() (string, error) {
	logDir, err := logDirUnsafe()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s.%03d.json", now.Format("2006-01-02_150405"), now.Nanosecond()/1000000)
	return filepath.Join(logDir, filename), nil
}

// WriteSession saves session as a new journal file.
func WriteSession(session *LogSession) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return writeSessionUnsafe(session)
}

func writeSessionUnsafe(session *LogSession) error {
	if session == nil {
		return nil
	}

	logPath, err := newLogPathUnsafe()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}
	return writeSessionFile(session, logPath)
}

func writeSessionFile(session *LogSession, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// listLogFiles returns journal files newest first.
func listLogFiles() ([]string, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func ReadSessions(limit int) ([]*LogSession, error) {
	files, err := listLogFiles()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	sessions := make([]*LogSession, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			// Skip corrupted files
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// cleanupOldLogsUnsafe performs cleanup without acquiring mutex (assumes caller holds it)
func cleanupOldLogsUnsafe(retentionDays int) error {
	logDir, err := logDirUnsafe()
	if err != nil {
		return err
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list log files: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				logger.Warn().Err(err).Str("file", file).Msg("failed to remove old journal file")
			}
		}
	}

	return nil
}
