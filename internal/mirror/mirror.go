// Package mirror keeps a best-effort local copy of the last fetched task
// list in a SQLite file.
//
// The mirror is a read-through fallback, not a source of truth: it is
// replaced wholesale after every successful fetch and consulted only when
// the backend is unreachable, so the user still sees their last known tasks
// offline. Mirror failures are soft - callers log and move on.
package mirror

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tarefista/tarefista/internal/api"
)

// taskRecord is the stored form of an api.Task. Domain timestamps are kept
// in their own columns so gorm's managed CreatedAt/UpdatedAt conventions
// never touch them.
type taskRecord struct {
	ID            string `gorm:"primaryKey"`
	ScopeID       string `gorm:"index"`
	Text          string
	Completed     bool
	TaskCreatedAt *time.Time
	TaskUpdatedAt *time.Time
	UserID        string
	TempUserID    string
	Recurring     bool
	Pattern       string
	StartDate     *time.Time
	EndDate       *time.Time
	FetchedAt     time.Time
}

func (taskRecord) TableName() string {
	return "task_mirror"
}

// Store is the local task mirror.
type Store struct {
	db *gorm.DB
}

// DefaultPath returns the mirror database path inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "tasks.db")
}

// Open opens (and migrates) the mirror database at dsn.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mirror dsn cannot be empty")
	}

	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stderr, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open mirror db: %w", err)
	}

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("migrate mirror db: %w", err)
	}

	return &Store{db: db}, nil
}

// ensureDir creates the parent directory for a SQLite file if needed.
func ensureDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir %q: %w", dir, err)
	}
	return nil
}

// Replace swaps the mirrored task list for an identity with a fresh fetch.
func (s *Store) Replace(ctx context.Context, ident api.Identity, tasks []api.Task) error {
	scope := ident.String()
	now := time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope_id = ?", scope).Delete(&taskRecord{}).Error; err != nil {
			return fmt.Errorf("clear mirror scope: %w", err)
		}

		for _, t := range tasks {
			rec := toRecord(t, scope, now)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("mirror task %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// Tasks returns the mirrored task list for an identity, in the order it was
// fetched. An empty mirror yields an empty slice, not an error.
func (s *Store) Tasks(ctx context.Context, ident api.Identity) ([]api.Task, error) {
	var records []taskRecord
	if err := s.db.WithContext(ctx).
		Where("scope_id = ?", ident.String()).
		Order("rowid").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}

	tasks := make([]api.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, fromRecord(rec))
	}
	return tasks, nil
}

// FetchedAt returns when the mirror for an identity was last replaced, or
// the zero time when nothing is mirrored.
func (s *Store) FetchedAt(ctx context.Context, ident api.Identity) (time.Time, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).
		Where("scope_id = ?", ident.String()).
		Order("fetched_at DESC").
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return time.Time{}, fmt.Errorf("read mirror freshness: %w", err)
	}
	return rec.FetchedAt, nil
}

// Clear drops everything mirrored for an identity. Called on logout.
func (s *Store) Clear(ctx context.Context, ident api.Identity) error {
	if err := s.db.WithContext(ctx).
		Where("scope_id = ?", ident.String()).
		Delete(&taskRecord{}).Error; err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}
	return nil
}

func toRecord(t api.Task, scope string, fetchedAt time.Time) taskRecord {
	rec := taskRecord{
		ID:            t.ID,
		ScopeID:       scope,
		Text:          t.Text,
		Completed:     t.Completed,
		TaskCreatedAt: timePtr(t.CreatedAt),
		TaskUpdatedAt: timePtr(t.UpdatedAt),
		UserID:        t.UserID,
		TempUserID:    t.TempUserID,
		FetchedAt:     fetchedAt,
	}

	if t.Recurrence != nil {
		rec.Recurring = true
		rec.Pattern = string(t.Recurrence.Pattern)
		rec.StartDate = timePtr(t.Recurrence.Start)
		rec.EndDate = timePtr(t.Recurrence.End)
	}

	return rec
}

func fromRecord(rec taskRecord) api.Task {
	t := api.Task{
		ID:         rec.ID,
		Text:       rec.Text,
		Completed:  rec.Completed,
		CreatedAt:  timeVal(rec.TaskCreatedAt),
		UpdatedAt:  timeVal(rec.TaskUpdatedAt),
		UserID:     rec.UserID,
		TempUserID: rec.TempUserID,
	}

	if rec.Recurring {
		t.Recurrence = &api.Recurrence{
			Pattern: api.Pattern(rec.Pattern),
			Start:   timeVal(rec.StartDate),
			End:     timeVal(rec.EndDate),
		}
	}

	return t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
