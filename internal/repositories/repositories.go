package repositories

import (
	"context"
	"errors"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// FeedbackRepository persists behavioral feedback with at most one record per
// (interviewId, userId). Upsert reports whether an existing record was
// updated; concurrent upserts for the same key resolve last-write-wins.
type FeedbackRepository interface {
	Upsert(ctx context.Context, feedback *models.Feedback) (id string, updated bool, err error)
	GetByKey(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
	ExistsForInterview(ctx context.Context, interviewID string) (bool, error)
}

// CodingFeedbackRepository is the coding-variant counterpart, backed by a
// separate collection.
type CodingFeedbackRepository interface {
	Upsert(ctx context.Context, feedback *models.CodingFeedback) (id string, updated bool, err error)
	GetByKey(ctx context.Context, interviewID, userID string) (*models.CodingFeedback, error)
}

// InterviewRepository stores behavioral interviews.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) (string, error)
	Finalize(ctx context.Context, id string, questions []string) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	// ListFinalizedByUser returns finalized interviews for a user ordered by
	// creation time descending.
	ListFinalizedByUser(ctx context.Context, userID string) ([]models.Interview, error)
}

// CodingInterviewRepository stores coding interview sessions.
type CodingInterviewRepository interface {
	Create(ctx context.Context, interview *models.CodingInterview) (string, error)
	GetByID(ctx context.Context, id string) (*models.CodingInterview, error)
	SaveCode(ctx context.Context, id, code string) error
	Complete(ctx context.Context, id string, transcript []models.Turn, code, completedAt string) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.CodingInterview, error)
	// ListCompleted returns all sessions with a completedAt set, newest first.
	ListCompleted(ctx context.Context) ([]models.CodingInterview, error)
}
