package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/middleware"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/questions"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
	"github.com/rammohanpatel/AI-Interviewer/internal/utils"
)

type CodingHandler struct {
	interviews repositories.CodingInterviewRepository
	store      repositories.CodingFeedbackRepository
	generator  *feedback.Generator
	bank       *questions.Bank
	waitBound  time.Duration
	logger     *zap.Logger
}

func NewCodingHandler(
	interviews repositories.CodingInterviewRepository,
	store repositories.CodingFeedbackRepository,
	generator *feedback.Generator,
	bank *questions.Bank,
	waitBound time.Duration,
	logger *zap.Logger,
) *CodingHandler {
	return &CodingHandler{
		interviews: interviews,
		store:      store,
		generator:  generator,
		bank:       bank,
		waitBound:  waitBound,
		logger:     logger,
	}
}

// CreateHandler opens a new coding interview session.
func (h *CodingHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateCodingInterviewRequest](r)

	interview := &models.CodingInterview{
		Company:   strings.ToLower(req.Company),
		UserID:    req.UserID,
		Question:  req.Question,
		Code:      "",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	id, err := h.interviews.Create(r.Context(), interview)
	if err != nil {
		h.logger.Error("coding interview create failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to create interview",
		})
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"interviewId": id,
		"question":    req.Question,
	})
}

// ListHandler returns the user's recent coding interviews, newest first.
func (h *CodingHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId query parameter is required",
		})
		return
	}

	interviews, err := h.interviews.ListByUser(r.Context(), userID, 10)
	if err != nil {
		h.logger.Error("coding interview list failed", zap.String("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch interviews",
		})
		return
	}
	if interviews == nil {
		interviews = []models.CodingInterview{}
	}

	utils.JSON(w, http.StatusOK, models.CodingInterviewsResponse{Interviews: interviews})
}

// GetHandler returns one coding interview by id.
func (h *CodingHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "interviewId")

	interview, err := h.interviews.GetByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("coding interview read failed", zap.String("interview_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch interview",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"interview": interview})
}

// SaveCodeHandler updates only the code of a running session.
func (h *CodingHandler) SaveCodeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SaveCodeRequest](r)
	id := chi.URLParam(r, "interviewId")

	err := h.interviews.SaveCode(r.Context(), id, req.Code)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("code save failed", zap.String("interview_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to save code",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// CompleteHandler freezes a coding session and triggers feedback generation.
// The transcript save is durable before the scoring call starts; a scoring
// failure never rolls it back.
func (h *CodingHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CompleteCodingInterviewRequest](r)
	id := chi.URLParam(r, "interviewId")

	interview, err := h.interviews.GetByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "interview_not_found",
			Message: "Interview not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("coding interview read failed", zap.String("interview_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch interview",
		})
		return
	}

	completedAt := time.Now().UTC().Format(time.RFC3339)
	if err := h.interviews.Complete(r.Context(), id, req.Transcript, req.Code, completedAt); err != nil {
		h.logger.Error("transcript save failed", zap.String("interview_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to save transcript",
		})
		return
	}

	result, err := h.generator.GenerateCodingWithTimeout(r.Context(), feedback.CodingInput{
		InterviewID: id,
		UserID:      req.UserID,
		Transcript:  req.Transcript,
		Code:        req.Code,
		Question:    interview.Question,
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

// FeedbackHandler returns the coding feedback for (interviewId, userId).
func (h *CodingHandler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "interviewId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId query parameter is required",
		})
		return
	}

	record, err := h.store.GetByKey(r.Context(), id, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "feedback_not_found",
			Message: "Feedback not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("coding feedback read failed", zap.String("interview_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to fetch feedback",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"feedback": record})
}

// RandomQuestionHandler picks a random question from a company's bank.
func (h *CodingHandler) RandomQuestionHandler(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")

	question, err := h.bank.Random(company)
	if errors.Is(err, questions.ErrCompanyNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "company_not_found",
			Message: "Company questions not found",
		})
		return
	}
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "Failed to pick question",
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"question": question})
}
