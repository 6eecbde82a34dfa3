package question

import (
	"context"
	"errors"

	"github.com/eleven-am/interview-backend/internal/shared"
	"gorm.io/gorm"
)

// DefaultQuestions seeds an empty inventory on first boot.
var DefaultQuestions = []string{
	"Tell me about yourself and your experience with Python programming.",
	"What are Python decorators and how have you used them in your projects?",
	"Explain the difference between lists and tuples in Python.",
	"How does Python's garbage collection work?",
	"Describe a challenging Python project you've worked on and how you solved the main technical problems.",
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Question{})
}

// Seed inserts the default question set if the table is empty.
func (s *Store) Seed(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i, text := range DefaultQuestions {
		q := &Question{
			ID:       shared.NewID("q_"),
			Position: i + 1,
			Text:     text,
		}
		if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Create(ctx context.Context, q *Question) error {
	if q.ID == "" {
		q.ID = shared.NewID("q_")
	}
	return s.db.WithContext(ctx).Create(q).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Question, error) {
	var q Question
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &q, err
}

func (s *Store) List(ctx context.Context) ([]*Question, error) {
	var questions []*Question
	err := s.db.WithContext(ctx).Order("position asc").Find(&questions).Error
	return questions, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Question{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Questions satisfies the session manager's question source.
func (s *Store) Questions(ctx context.Context) ([]string, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(list))
	for _, q := range list {
		texts = append(texts, q.Text)
	}
	return texts, nil
}
