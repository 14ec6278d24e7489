package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/assembler"
	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/metrics"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
	"github.com/rammohanpatel/AI-Interviewer/internal/utils"
)

const (
	// a connection that answers no ping within pongWait is dead
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	pingWriteWait = 10 * time.Second
	maxEventBytes = 32 << 10
)

// LiveHandler ingests the speech-event stream of a running interview over a
// WebSocket, assembles the transcript server-side and hands it to the
// feedback pipeline when the call ends.
type LiveHandler struct {
	upgrader   websocket.Upgrader
	generator  *feedback.Generator
	codingRepo repositories.CodingInterviewRepository
	logger     *zap.Logger
}

func NewLiveHandler(generator *feedback.Generator, codingRepo repositories.CodingInterviewRepository, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		generator:  generator,
		codingRepo: codingRepo,
		logger:     logger,
	}
}

// BehavioralHandler handles GET /interviews/{interviewId}/live.
func (h *LiveHandler) BehavioralHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId query parameter is required",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	turns := h.ingest(conn, interviewID)
	if len(turns) == 0 {
		// no transcript, nothing to score
		_ = conn.WriteJSON(models.GenerateFeedbackResponse{Success: false, Error: "MissingInput"})
		return
	}

	// the session is over; generation must not die with the connection
	result, err := h.generator.GenerateBehavioral(context.WithoutCancel(r.Context()), feedback.BehavioralInput{
		InterviewID: interviewID,
		UserID:      userID,
		Transcript:  turns,
	})
	h.reply(conn, result, err)
}

// CodingHandler handles GET /coding/interviews/{interviewId}/live. On call
// end the assembled transcript is saved on the interview before scoring, so
// a scoring failure still leaves the session completed.
func (h *LiveHandler) CodingHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId query parameter is required",
		})
		return
	}

	interview, err := h.codingRepo.GetByID(r.Context(), interviewID)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
		return
	}
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch interview",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	turns := h.ingest(conn, interviewID)
	if len(turns) == 0 {
		_ = conn.WriteJSON(models.GenerateFeedbackResponse{Success: false, Error: "MissingInput"})
		return
	}

	ctx := context.WithoutCancel(r.Context())

	// latest saved code rides along with the transcript
	current, err := h.codingRepo.GetByID(ctx, interviewID)
	if err != nil {
		current = interview
	}
	completedAt := time.Now().UTC().Format(time.RFC3339)
	if err := h.codingRepo.Complete(ctx, interviewID, turns, current.Code, completedAt); err != nil {
		h.logger.Error("transcript save failed", zap.String("interview_id", interviewID), zap.Error(err))
		_ = conn.WriteJSON(models.GenerateFeedbackResponse{Success: false, Error: "store_error"})
		return
	}

	result, err := h.generator.GenerateCoding(ctx, feedback.CodingInput{
		InterviewID: interviewID,
		UserID:      userID,
		Transcript:  turns,
		Code:        current.Code,
		Question:    current.Question,
	})
	h.reply(conn, result, err)
}

// ingest pumps transport events into a per-session assembler until call-end
// or disconnect, then returns the finalized transcript.
func (h *LiveHandler) ingest(conn *websocket.Conn, interviewID string) []models.Turn {
	metrics.SessionOpened()
	defer metrics.SessionClosed()

	sessionID := uuid.NewString()
	logger := h.logger.With(
		zap.String("session_id", sessionID),
		zap.String("interview_id", interviewID))
	logger.Info("transcript session opened")

	conn.SetReadLimit(maxEventBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWriteWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	a := assembler.New(logger)
	for {
		var event assembler.Event
		if err := conn.ReadJSON(&event); err != nil {
			// disconnect counts as session end
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("transcript stream closed", zap.Error(err))
			}
			return a.End()
		}
		if event.Type == assembler.EventCallEnd {
			return a.End()
		}
		a.HandleEvent(event)
	}
}

func (h *LiveHandler) reply(conn *websocket.Conn, result *feedback.Result, err error) {
	if err != nil {
		code := "generation_failed"
		if errors.Is(err, feedback.ErrMissingInput) {
			code = "MissingInput"
		}
		_ = conn.WriteJSON(models.GenerateFeedbackResponse{Success: false, Error: code})
		return
	}
	message := "Feedback Added"
	if result.Updated {
		message = "Feedback Updated"
	}
	_ = conn.WriteJSON(models.GenerateFeedbackResponse{
		Success:    true,
		FeedbackID: result.FeedbackID,
		Message:    message,
	})
}
