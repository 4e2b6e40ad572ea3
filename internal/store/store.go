// Package store persists bookmarks in SQLite through gorm and publishes
// the bookmark list to live subscribers.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	// Pure-Go driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("store: bookmark not found")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("store: closed")

// Options configures Open.
type Options struct {
	// Path of the database file. Parent directories are created.
	Path string

	// DestructiveReset drops every table when the schema is newer than this
	// build instead of failing with ErrSchemaTooNew.
	DestructiveReset bool

	// Logger receives migration and query warnings. Nil discards them.
	Logger *zerolog.Logger
}

// Store is the bookmark database.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
	hub    *hub

	// snapMu orders snapshot reads with their delivery, so a subscriber
	// never receives an older list after a newer one.
	snapMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the database at opts.Path and applies migrations.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("store: path is required")
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "store").Logger()
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := "file:" + opts.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := gorm.Open(&sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger: gormlogger.New(gormWriter{logger: logger}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger, hub: newHub()}
	if err := s.migrate(opts.DestructiveReset); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return s, nil
}

// Insert saves b unless a bookmark with the same id exists. created reports
// whether a row was written.
func (s *Store) Insert(ctx context.Context, b Bookmark) (bool, error) {
	if b.ID == "" {
		return false, fmt.Errorf("store: bookmark id is required")
	}
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&b)
	if res.Error != nil {
		return false, fmt.Errorf("insert bookmark %s: %w", b.ID, res.Error)
	}

	created := res.RowsAffected > 0
	if created {
		s.publish(ctx)
	}
	return created, nil
}

// Delete removes the bookmark with id. deleted reports whether a row existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	res := s.db.WithContext(ctx).Delete(&Bookmark{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete bookmark %s: %w", id, res.Error)
	}

	deleted := res.RowsAffected > 0
	if deleted {
		s.publish(ctx)
	}
	return deleted, nil
}

// Get returns one bookmark or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Bookmark, error) {
	if err := s.checkOpen(); err != nil {
		return Bookmark{}, err
	}

	var b Bookmark
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Bookmark{}, ErrNotFound
	}
	if err != nil {
		return Bookmark{}, fmt.Errorf("get bookmark %s: %w", id, err)
	}
	return b, nil
}

// All returns every bookmark ordered by creation time.
func (s *Store) All(ctx context.Context) ([]Bookmark, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var list []Bookmark
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return list, nil
}

// Watch subscribes to the bookmark list. The current list is delivered
// immediately and again after every change. Only the newest snapshot is
// kept for a subscriber that has not read the previous one. cancel is safe
// to call more than once.
func (s *Store) Watch() (<-chan []Bookmark, func()) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	ch, cancel := s.hub.subscribe()

	if err := s.checkOpen(); err != nil {
		cancel()
		return ch, cancel
	}

	list, err := s.All(context.Background())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Initial bookmark snapshot failed")
		return ch, cancel
	}
	s.hub.offer(ch, list)
	return ch, cancel
}

// Close closes subscriber channels and the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.hub.closeAll()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) publish(ctx context.Context) {
	if s.hub.count() == 0 {
		return
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	list, err := s.All(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Bookmark snapshot failed")
		return
	}
	s.hub.broadcast(list)
}

// gormWriter routes gorm's logger output to zerolog.
type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Msgf(format, args...)
}
