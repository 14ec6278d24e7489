package feedback

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

// Query reads persisted interview and feedback state for display.
type Query struct {
	interviews repositories.InterviewRepository
	feedback   repositories.FeedbackRepository
}

func NewQuery(interviews repositories.InterviewRepository, feedback repositories.FeedbackRepository) *Query {
	return &Query{interviews: interviews, feedback: feedback}
}

// CompletedByUser fetches the user's finalized interviews, newest first, and
// partitions them by feedback existence. The per-interview existence checks
// fan out concurrently; sequential checks would multiply latency linearly
// with the number of interviews.
func (q *Query) CompletedByUser(ctx context.Context, userID string) (*models.CompletedInterviewsResponse, error) {
	interviews, err := q.interviews.ListFinalizedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	hasFeedback := make([]bool, len(interviews))
	g, gctx := errgroup.WithContext(ctx)
	for i := range interviews {
		i := i
		g.Go(func() error {
			exists, err := q.feedback.ExistsForInterview(gctx, interviews[i].ID.Hex())
			if err != nil {
				return err
			}
			hasFeedback[i] = exists
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	response := &models.CompletedInterviewsResponse{
		InterviewsWithFeedback:    []models.Interview{},
		InterviewsWithoutFeedback: []models.Interview{},
	}
	for i, interview := range interviews {
		if hasFeedback[i] {
			response.InterviewsWithFeedback = append(response.InterviewsWithFeedback, interview)
		} else {
			response.InterviewsWithoutFeedback = append(response.InterviewsWithoutFeedback, interview)
		}
	}
	return response, nil
}
