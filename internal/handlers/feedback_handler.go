package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/middleware"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
	"github.com/rammohanpatel/AI-Interviewer/internal/utils"
)

type FeedbackHandler struct {
	generator *feedback.Generator
	query     *feedback.Query
	store     repositories.FeedbackRepository
	waitBound time.Duration
	logger    *zap.Logger
}

func NewFeedbackHandler(
	generator *feedback.Generator,
	query *feedback.Query,
	store repositories.FeedbackRepository,
	waitBound time.Duration,
	logger *zap.Logger,
) *FeedbackHandler {
	return &FeedbackHandler{
		generator: generator,
		query:     query,
		store:     store,
		waitBound: waitBound,
		logger:    logger,
	}
}

// GenerateHandler triggers behavioral feedback generation for a finished
// interview, bounded by the configured wait. On expiry the client gets a
// pending answer while generation continues in the background.
func (h *FeedbackHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GenerateFeedbackRequest](r)
	interviewID := chi.URLParam(r, "interviewId")

	result, err := h.generator.GenerateBehavioralWithTimeout(r.Context(), feedback.BehavioralInput{
		InterviewID: interviewID,
		UserID:      req.UserID,
		Transcript:  req.Transcript,
	}, h.waitBound)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	message := "Feedback Added"
	if result.Updated {
		message = "Feedback Updated"
	}
	utils.JSON(w, http.StatusOK, models.GenerateFeedbackResponse{
		Success:    true,
		FeedbackID: result.FeedbackID,
		Message:    message,
	})
}

// GetHandler returns the feedback for (interviewId, userId), or 404.
func (h *FeedbackHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId query parameter is required",
		})
		return
	}

	record, err := h.store.GetByKey(r.Context(), interviewID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "feedback_not_found",
			Message: "Feedback not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("feedback read failed", zap.String("interview_id", interviewID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch feedback",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"feedback": record})
}

// CompletedHandler partitions a user's finalized interviews by feedback
// existence.
func (h *FeedbackHandler) CompletedHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId query parameter is required",
		})
		return
	}

	response, err := h.query.CompletedByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("completed interviews query failed", zap.String("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch interviews",
		})
		return
	}

	utils.JSON(w, http.StatusOK, response)
}

// writeGenerationError maps pipeline failures onto HTTP responses. A failed
// generation never touches an already-saved transcript, so these are safe to
// retry.
func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feedback.ErrMissingInput):
		utils.JSON(w, http.StatusBadRequest, models.GenerateFeedbackResponse{
			Success: false,
			Error:   "MissingInput",
		})
	case errors.Is(err, feedback.ErrPending):
		utils.JSON(w, http.StatusAccepted, models.GenerateFeedbackResponse{
			Success: false,
			Message: "interview saved, feedback generation pending",
		})
	default:
		status := http.StatusInternalServerError
		code := llm.CodeOf(err)
		switch code {
		case llm.ErrCodeRateLimit:
			status = http.StatusTooManyRequests
		case llm.ErrCodeSchemaViolation, llm.ErrCodeServiceDown, llm.ErrCodeTimeout, llm.ErrCodeInvalidInput, llm.ErrCodeAPIKey:
			status = http.StatusBadGateway
		}
		if code == "" {
			code = "store_error"
		}
		utils.JSON(w, status, models.GenerateFeedbackResponse{
			Success: false,
			Error:   code,
		})
	}
}
