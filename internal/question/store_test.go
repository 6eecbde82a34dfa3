package question

import (
	"context"
	"errors"
	"testing"

	"github.com/eleven-am/interview-backend/internal/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func setupStore(t *testing.T) *Store {
	store := NewStore(setupTestDB(t))
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return store
}

func TestStore_SeedPopulatesDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != len(DefaultQuestions) {
		t.Fatalf("expected %d questions, got %d", len(DefaultQuestions), len(list))
	}
	for i, q := range list {
		if q.Position != i+1 {
			t.Errorf("question %d position = %d", i, q.Position)
		}
		if q.Text != DefaultQuestions[i] {
			t.Errorf("question %d text = %q", i, q.Text)
		}
	}
}

func TestStore_SeedIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_ = store.Seed(ctx)
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	list, _ := store.List(ctx)
	if len(list) != len(DefaultQuestions) {
		t.Errorf("expected %d questions after double seed, got %d", len(DefaultQuestions), len(list))
	}
}

func TestStore_SeedSkipsNonEmpty(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, &Question{Position: 1, Text: "custom"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	list, _ := store.List(ctx)
	if len(list) != 1 {
		t.Errorf("expected custom inventory untouched, got %d questions", len(list))
	}
}

func TestStore_ListOrdersByPosition(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_ = store.Create(ctx, &Question{Position: 3, Text: "third"})
	_ = store.Create(ctx, &Question{Position: 1, Text: "first"})
	_ = store.Create(ctx, &Question{Position: 2, Text: "second"})

	texts, err := store.Questions(ctx)
	if err != nil {
		t.Fatalf("Questions() error = %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, text := range texts {
		if text != want[i] {
			t.Errorf("Questions()[%d] = %q, want %q", i, text, want[i])
		}
	}
}

func TestStore_GetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	q := &Question{Position: 1, Text: "what is gc"}
	_ = store.Create(ctx, q)

	got, err := store.GetByID(ctx, q.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Text != "what is gc" {
		t.Errorf("Text = %q", got.Text)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	q := &Question{Position: 1, Text: "to delete"}
	_ = store.Create(ctx, q)

	if err := store.Delete(ctx, q.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, q.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
