package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/interviews"
	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/middleware"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
	"github.com/rammohanpatel/AI-Interviewer/internal/utils"
)

type InterviewHandler struct {
	service *interviews.Service
	repo    repositories.InterviewRepository
	logger  *zap.Logger
}

func NewInterviewHandler(service *interviews.Service, repo repositories.InterviewRepository, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{service: service, repo: repo, logger: logger}
}

// ExtractHandler creates an interview from a setup conversation.
func (h *InterviewHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ExtractInterviewRequest](r)

	interview, err := h.service.CreateFromConversation(r.Context(), req.Conversation, req.UserID)
	if err != nil {
		h.logger.Error("interview extraction failed", zap.String("user_id", req.UserID), zap.Error(err))
		status := http.StatusInternalServerError
		if llm.CodeOf(err) != "" {
			status = http.StatusBadGateway
		}
		utils.JSON(w, status, models.ExtractInterviewResponse{
			Success: false,
			Error:   "Failed to extract interview details",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.ExtractInterviewResponse{
		Success:     true,
		InterviewID: interview.ID.Hex(),
		Interview:   interview,
	})
}

// GetHandler returns one interview by id. Un-finalized interviews are never
// surfaced.
func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "interviewId")

	interview, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("interview read failed", zap.String("interview_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch interview",
		})
		return
	}
	if !interview.Finalized {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"interview": interview})
}
