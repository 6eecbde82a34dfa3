package transcript

import (
	"context"

	"github.com/eleven-am/interview-backend/internal/interview"
	"github.com/eleven-am/interview-backend/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Entry{})
}

func (s *Store) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = shared.NewID("tr_")
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]*Entry, error) {
	var entries []*Entry
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number asc").
		Find(&entries).Error
	return entries, err
}

// Record satisfies the session sink contract.
func (s *Store) Record(ctx context.Context, e interview.SinkEntry) error {
	return s.Create(ctx, &Entry{
		SessionID:      e.SessionID,
		QuestionNumber: e.QuestionNumber,
		Question:       e.Question,
		Segments:       shared.StringSlice(e.Segments),
		FullAnswer:     e.FullAnswer,
		WordCount:      e.WordCount,
		Reason:         e.Reason,
	})
}
