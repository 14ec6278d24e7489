// Package memory holds in-memory repository implementations, used when no
// MONGO_URI is configured and as test doubles. Records live in insertion
// order so "first match" is deterministic.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

type FeedbackRepo struct {
	mu      sync.Mutex
	records []*models.Feedback
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{}
}

func (r *FeedbackRepo) Upsert(_ context.Context, feedback *models.Feedback) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.InterviewID == feedback.InterviewID && existing.UserID == feedback.UserID {
			id := existing.ID
			*existing = *feedback
			existing.ID = id
			return id.Hex(), true, nil
		}
	}

	stored := *feedback
	stored.ID = primitive.NewObjectID()
	r.records = append(r.records, &stored)
	return stored.ID.Hex(), false, nil
}

func (r *FeedbackRepo) GetByKey(_ context.Context, interviewID, userID string) (*models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.InterviewID == interviewID && existing.UserID == userID {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *FeedbackRepo) ExistsForInterview(_ context.Context, interviewID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.InterviewID == interviewID {
			return true, nil
		}
	}
	return false, nil
}

// Count reports the number of stored records. Test helper.
func (r *FeedbackRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type CodingFeedbackRepo struct {
	mu      sync.Mutex
	records []*models.CodingFeedback
}

func NewCodingFeedbackRepo() *CodingFeedbackRepo {
	return &CodingFeedbackRepo{}
}

func (r *CodingFeedbackRepo) Upsert(_ context.Context, feedback *models.CodingFeedback) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.InterviewID == feedback.InterviewID && existing.UserID == feedback.UserID {
			id := existing.ID
			*existing = *feedback
			existing.ID = id
			return id.Hex(), true, nil
		}
	}

	stored := *feedback
	stored.ID = primitive.NewObjectID()
	r.records = append(r.records, &stored)
	return stored.ID.Hex(), false, nil
}

func (r *CodingFeedbackRepo) GetByKey(_ context.Context, interviewID, userID string) (*models.CodingFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.InterviewID == interviewID && existing.UserID == userID {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// Count reports the number of stored records. Test helper.
func (r *CodingFeedbackRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
