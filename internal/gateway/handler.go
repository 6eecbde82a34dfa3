package gateway

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eleven-am/interview-backend/internal/dto"
	"github.com/eleven-am/interview-backend/internal/interview"
	"github.com/eleven-am/interview-backend/internal/session"
	"github.com/eleven-am/interview-backend/internal/shared"
	"github.com/eleven-am/interview-backend/internal/transcript"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	manager     *interview.Manager
	registry    *session.Store
	transcripts *transcript.Store
	logger      *slog.Logger
}

func NewHandler(manager *interview.Manager, registry *session.Store, transcripts *transcript.Store, logger *slog.Logger) *Handler {
	return &Handler{
		manager:     manager,
		registry:    registry,
		transcripts: transcripts,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/interviews", h.CreateInterview)
	g.GET("/interviews", h.ListInterviews)
	g.GET("/interviews/metrics", h.GetMetrics)
	g.GET("/interviews/:id/question", h.NextQuestion)
	g.GET("/interviews/:id/question/audio", h.QuestionAudio)
	g.GET("/interviews/:id/transcripts", h.ListTranscripts)
	g.GET("/interviews/:id/health", h.GetHealth)
	g.DELETE("/interviews/:id", h.EndInterview)
}

func (h *Handler) RegisterWebSocket(e *echo.Echo) {
	e.GET("/ws/interviews/:id", h.handleWebSocket)
}

func (h *Handler) CreateInterview(c echo.Context) error {
	ctx := c.Request().Context()

	sess, err := h.manager.CreateSession(ctx)
	if err != nil {
		h.logger.Error("failed to create interview", "error", err)
		return shared.InternalError("create_failed", "failed to create interview session")
	}

	rec := &session.Record{
		ID:             sess.ID(),
		TotalQuestions: sess.TotalQuestions(),
	}
	if err := h.registry.CreateRecord(ctx, rec); err != nil {
		h.logger.Error("failed to register interview", "error", err, "session_id", sess.ID())
		h.manager.RemoveSession(sess.ID())
		return shared.InternalError("create_failed", "failed to register interview session")
	}

	return c.JSON(http.StatusCreated, dto.CreateInterviewResponse{
		SessionID:      sess.ID(),
		TotalQuestions: sess.TotalQuestions(),
	})
}

func (h *Handler) ListInterviews(c echo.Context) error {
	sessions := h.manager.ListSessions()

	infos := make([]dto.InterviewInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = dto.InterviewInfo{
			SessionID:      s.SessionID,
			QuestionIndex:  s.QuestionIndex,
			TotalQuestions: s.TotalQuestions,
			State:          s.State,
		}
	}

	return c.JSON(http.StatusOK, dto.InterviewListResponse{
		Interviews: infos,
		Count:      len(infos),
	})
}

// NextQuestion advances the interview cursor. Once the list is exhausted it
// marks the registry record completed and reports done.
func (h *Handler) NextQuestion(c echo.Context) error {
	sess, ok := h.manager.GetSession(c.Param("id"))
	if !ok {
		return shared.NotFound("session_not_found", "interview session not found")
	}

	ctx := c.Request().Context()
	question, number, ok := sess.NextQuestion()
	if !ok {
		if err := h.registry.EndRecord(ctx, sess.ID(), session.StatusCompleted); err != nil {
			h.logger.Error("failed to mark interview completed", "error", err, "session_id", sess.ID())
		}
		return c.JSON(http.StatusOK, dto.QuestionResponse{
			Number: number,
			Total:  sess.TotalQuestions(),
			Done:   true,
		})
	}

	if rec, err := h.registry.GetRecord(ctx, sess.ID()); err == nil {
		rec.QuestionIndex = number
		if err := h.registry.UpdateRecord(ctx, rec); err != nil {
			h.logger.Error("failed to update interview record", "error", err, "session_id", sess.ID())
		}
	}

	return c.JSON(http.StatusOK, dto.QuestionResponse{
		Question: question,
		Number:   number,
		Total:    sess.TotalQuestions(),
	})
}

// QuestionAudio renders the current question as speech. Synthesis failures
// return 502 so the client falls back to showing the question as text.
func (h *Handler) QuestionAudio(c echo.Context) error {
	sess, ok := h.manager.GetSession(c.Param("id"))
	if !ok {
		return shared.NotFound("session_not_found", "interview session not found")
	}

	result, err := sess.SynthesizeCurrent(c.Request().Context())
	if err != nil {
		h.logger.Error("question synthesis failed", "error", err, "session_id", sess.ID())
		return shared.BadGateway("synthesis_failed", "failed to synthesize question audio")
	}

	return c.Blob(http.StatusOK, result.MimeType, result.Audio)
}

func (h *Handler) ListTranscripts(c echo.Context) error {
	sessionID := c.Param("id")

	entries, err := h.transcripts.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list transcripts", "error", err, "session_id", sessionID)
		return shared.InternalError("list_failed", "failed to list transcripts")
	}

	responses := make([]dto.TranscriptResponse, len(entries))
	for i, e := range entries {
		responses[i] = dto.TranscriptResponse{
			QuestionNumber: e.QuestionNumber,
			Question:       e.Question,
			Segments:       []string(e.Segments),
			FullAnswer:     e.FullAnswer,
			WordCount:      e.WordCount,
			Reason:         e.Reason,
			CreatedAt:      e.CreatedAt,
		}
	}

	return c.JSON(http.StatusOK, dto.TranscriptListResponse{
		SessionID:   sessionID,
		Transcripts: responses,
	})
}

func (h *Handler) GetHealth(c echo.Context) error {
	sess, ok := h.manager.GetSession(c.Param("id"))
	if !ok {
		return shared.NotFound("session_not_found", "interview session not found")
	}
	return c.JSON(http.StatusOK, sess.HealthSnapshot())
}

func (h *Handler) GetMetrics(c echo.Context) error {
	hours := 24
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		if hr, err := strconv.Atoi(hoursStr); err == nil && hr > 0 && hr <= 168 {
			hours = hr
		}
	}

	metrics, err := h.registry.GetMetrics(c.Request().Context(), hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}

	responses := make([]dto.MetricsResponse, len(metrics))
	for i, m := range metrics {
		responses[i] = dto.MetricsResponse{
			Date:           m.Date,
			Hour:           m.Hour,
			Sessions:       m.Sessions,
			JudgeChecks:    m.JudgeChecks,
			Completed:      m.Completed,
			NoAnswer:       m.NoAnswer,
			ForcedComplete: m.ForcedComplete,
		}
	}

	return c.JSON(http.StatusOK, dto.MetricsListResponse{
		Hours:   hours,
		Metrics: responses,
	})
}

func (h *Handler) EndInterview(c echo.Context) error {
	sessionID := c.Param("id")

	if _, ok := h.manager.GetSession(sessionID); !ok {
		return shared.NotFound("session_not_found", "interview session not found")
	}

	h.manager.RemoveSession(sessionID)
	if err := h.registry.EndRecord(c.Request().Context(), sessionID, session.StatusEnded); err != nil && err != shared.ErrNotFound {
		h.logger.Error("failed to end interview record", "error", err, "session_id", sessionID)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleWebSocket(c echo.Context) error {
	sessionID := c.Param("id")

	sess, ok := h.manager.GetSession(sessionID)
	if !ok {
		return shared.NotFound("session_not_found", "interview session not found")
	}

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err, "session_id", sessionID)
		return err
	}

	conn := NewWSConnection(ws, sessionID, sess.MarkLiveness, h.logger)

	h.logger.Info("candidate connected", "session_id", sessionID)

	ctx := c.Request().Context()
	go conn.writePump(ctx)
	go conn.readPump(ctx)

	if err := sess.RunExchange(ctx, conn); err != nil {
		h.logger.Error("exchange failed", "error", err, "session_id", sessionID)
	}
	_ = conn.Close()

	h.logger.Info("candidate disconnected", "session_id", sessionID)
	return nil
}
