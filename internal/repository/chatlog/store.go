package chatlog

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"club-assistant-be/pkg/database"
)

// Store persists chat history and feedback. The backend (embedded
// SQLite vs hosted Postgres) is a deployment choice; callers only see
// this interface.
type Store interface {
	LogChat(ctx context.Context, entry *ChatHistory) error
	AddFeedback(ctx context.Context, fb *Feedback) error
}

type GormStore struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the schema.
// driver is "sqlite" or "postgres"; dsn is the file path for sqlite.
func Open(driver, dsn string) (*GormStore, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		db, err = database.NewGormDBFromDSN(dsn)
	case "sqlite", "":
		db, err = database.NewSqliteDB(dsn)
	default:
		return nil, fmt.Errorf("unknown chatlog driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open chatlog store: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&ChatHistory{}, &Feedback{}); err != nil {
		return nil, fmt.Errorf("migrate chatlog schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) LogChat(ctx context.Context, entry *ChatHistory) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) AddFeedback(ctx context.Context, fb *Feedback) error {
	return s.db.WithContext(ctx).Create(fb).Error
}

// HistoryBySession reads back a session's logged turns, newest first.
// Not part of Store: the turn path only writes; this serves ad-hoc
// inspection of the log database.
func (s *GormStore) HistoryBySession(ctx context.Context, sessionID string, limit int) ([]ChatHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []ChatHistory
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// SourcesJSON marshals a source list for the datatypes.JSON columns.
func SourcesJSON(sources []string) ([]byte, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	return json.Marshal(sources)
}
