package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/eleven-am/interview-backend/internal/gateway"
	"github.com/eleven-am/interview-backend/internal/interview"
	"github.com/eleven-am/interview-backend/internal/judge"
	"github.com/eleven-am/interview-backend/internal/question"
	"github.com/eleven-am/interview-backend/internal/session"
	"github.com/eleven-am/interview-backend/internal/synthesis"
	"github.com/eleven-am/interview-backend/internal/transcript"
	"github.com/eleven-am/interview-backend/internal/transcription"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func ProvideSTTConfig(cfg *Config) transcription.Config {
	return transcription.Config{
		APIKey:  cfg.DeepgramAPIKey,
		BaseURL: cfg.DeepgramBaseURL,
	}
}

func ProvideTTSConfig(cfg *Config) synthesis.Config {
	return synthesis.Config{
		APIKey:  cfg.DeepgramAPIKey,
		BaseURL: cfg.DeepgramBaseURL,
	}
}

func ProvideSynthesizer(cfg synthesis.Config) synthesis.Synthesizer {
	return synthesis.NewClient(cfg)
}

func ProvideJudge(cfg *Config, logger *slog.Logger) judge.Judge {
	return judge.NewClient(judge.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
	}, logger.With("component", "judge"))
}

func ProvideRecognizerFactory(cfg transcription.Config) interview.RecognizerFactory {
	return func(cb transcription.Callbacks) (transcription.Recognizer, error) {
		return transcription.New(cfg, transcription.DefaultSessionOptions(), cb)
	}
}

func ProvideInterviewManager(
	cfg *Config,
	questions *question.Store,
	transcripts *transcript.Store,
	registry *session.Store,
	j judge.Judge,
	synth synthesis.Synthesizer,
	recognizers interview.RecognizerFactory,
	logger *slog.Logger,
) *interview.Manager {
	return interview.NewManager(interview.ManagerConfig{
		Source:            questions,
		Engine:            interview.DefaultEngineConfig(),
		FrameThreshold:    cfg.FrameThreshold,
		ThrottleInterval:  time.Duration(cfg.ThrottleIntervalMs) * time.Millisecond,
		Judge:             j,
		Sink:              transcripts,
		Metrics:           registry,
		Synthesizer:       synth,
		RecognizerFactory: recognizers,
		Log:               logger,
	})
}

func ProvideGatewayHandler(
	manager *interview.Manager,
	registry *session.Store,
	transcripts *transcript.Store,
	logger *slog.Logger,
) *gateway.Handler {
	return gateway.NewHandler(manager, registry, transcripts, logger.With("handler", "gateway"))
}

func RegisterInterviewRoutes(e *echo.Echo, h *gateway.Handler) {
	h.RegisterRoutes(e.Group("/api/v1"))
	h.RegisterWebSocket(e)
}

func CloseManagerOnStop(lc fx.Lifecycle, manager *interview.Manager) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return manager.Close()
		},
	})
}

var InterviewModule = fx.Options(
	fx.Provide(
		ProvideSTTConfig,
		ProvideTTSConfig,
		ProvideSynthesizer,
		ProvideJudge,
		ProvideRecognizerFactory,
		ProvideInterviewManager,
		ProvideGatewayHandler,
	),
	fx.Invoke(RegisterInterviewRoutes, CloseManagerOnStop),
)
