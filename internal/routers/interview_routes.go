package routers

import (
	"github.com/rammohanpatel/AI-Interviewer/internal/handlers"
	"github.com/rammohanpatel/AI-Interviewer/internal/middleware"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, feedbackHandler *handlers.FeedbackHandler, liveHandler *handlers.LiveHandler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.ExtractInterviewRequest]()).Post("/", interviewHandler.ExtractHandler)
		r.Get("/completed", feedbackHandler.CompletedHandler)
		r.Get("/{interviewId}", interviewHandler.GetHandler)
		r.Get("/{interviewId}/live", liveHandler.BehavioralHandler)
		r.With(middleware.ValidateRequest[*models.GenerateFeedbackRequest]()).Post("/{interviewId}/feedback", feedbackHandler.GenerateHandler)
		r.Get("/{interviewId}/feedback", feedbackHandler.GetHandler)
	})
}

func CodingRoutes(router *chi.Mux, codingHandler *handlers.CodingHandler, liveHandler *handlers.LiveHandler) {
	router.Route("/api/v1/coding/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.CreateCodingInterviewRequest]()).Post("/", codingHandler.CreateHandler)
		r.Get("/", codingHandler.ListHandler)
		r.Get("/questions/{company}/random", codingHandler.RandomQuestionHandler)
		r.Get("/{interviewId}", codingHandler.GetHandler)
		r.Get("/{interviewId}/live", liveHandler.CodingHandler)
		r.With(middleware.ValidateRequest[*models.SaveCodeRequest]()).Put("/{interviewId}/code", codingHandler.SaveCodeHandler)
		r.With(middleware.ValidateRequest[*models.CompleteCodingInterviewRequest]()).Post("/{interviewId}/complete", codingHandler.CompleteHandler)
		r.Get("/{interviewId}/feedback", codingHandler.FeedbackHandler)
	})
}
