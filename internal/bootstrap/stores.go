package bootstrap

import (
	"context"

	"github.com/eleven-am/interview-backend/internal/question"
	"github.com/eleven-am/interview-backend/internal/session"
	"github.com/eleven-am/interview-backend/internal/transcript"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideQuestionStore(db *gorm.DB) *question.Store {
	return question.NewStore(db)
}

func ProvideTranscriptStore(db *gorm.DB) *transcript.Store {
	return transcript.NewStore(db)
}

func ProvideSessionStore(redisClient *redis.Client) *session.Store {
	return session.NewStore(redisClient)
}

func RunMigrations(questionStore *question.Store, transcriptStore *transcript.Store) error {
	if err := questionStore.Migrate(); err != nil {
		return err
	}
	if err := transcriptStore.Migrate(); err != nil {
		return err
	}
	return questionStore.Seed(context.Background())
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideQuestionStore,
		ProvideTranscriptStore,
		ProvideSessionStore,
	),
	fx.Invoke(RunMigrations),
)
