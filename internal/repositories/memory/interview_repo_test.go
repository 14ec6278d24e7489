package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

func TestInterviewCreateAndFinalize(t *testing.T) {
	repo := NewInterviewRepo()
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.Interview{
		Role:      "Backend Engineer",
		Level:     models.LevelMid,
		Type:      models.InterviewTypeTechnical,
		UserID:    "user-1",
		CreatedAt: "2025-03-14T01:26:53Z",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Finalized)

	require.NoError(t, repo.Finalize(ctx, id, []string{"Tell me about a hard bug"}))

	stored, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Finalized)
	assert.Equal(t, []string{"Tell me about a hard bug"}, stored.Questions)
}

func TestListFinalizedByUserSkipsDrafts(t *testing.T) {
	repo := NewInterviewRepo()
	ctx := context.Background()

	draft, err := repo.Create(ctx, &models.Interview{UserID: "user-1", CreatedAt: "2025-03-14T01:00:00Z"})
	require.NoError(t, err)
	_ = draft

	done, err := repo.Create(ctx, &models.Interview{UserID: "user-1", CreatedAt: "2025-03-14T02:00:00Z"})
	require.NoError(t, err)
	require.NoError(t, repo.Finalize(ctx, done, []string{"q"}))

	other, err := repo.Create(ctx, &models.Interview{UserID: "user-2", CreatedAt: "2025-03-14T03:00:00Z"})
	require.NoError(t, err)
	require.NoError(t, repo.Finalize(ctx, other, []string{"q"}))

	list, err := repo.ListFinalizedByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, done, list[0].ID.Hex())
}

func TestCodingInterviewLifecycle(t *testing.T) {
	repo := NewCodingInterviewRepo()
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.CodingInterview{
		Company:   "google",
		UserID:    "user-1",
		Question:  models.Question{Title: "Two Sum"},
		CreatedAt: "2025-03-14T01:26:53Z",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SaveCode(ctx, id, "def two_sum(nums, target): ..."))

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "def two_sum(nums, target): ...", stored.Code)
	assert.Empty(t, stored.CompletedAt)

	transcript := []models.Turn{{Role: models.RoleUser, Content: "I would use a map", Timestamp: "2025-03-14T01:30:00Z"}}
	require.NoError(t, repo.Complete(ctx, id, transcript, stored.Code, "2025-03-14T01:45:00Z"))

	stored, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T01:45:00Z", stored.CompletedAt)
	require.Len(t, stored.Transcript, 1)

	completed, err := repo.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, id, completed[0].ID.Hex())
}

func TestListByUserHonorsLimit(t *testing.T) {
	repo := NewCodingInterviewRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, &models.CodingInterview{
			UserID:    "user-1",
			CreatedAt: fmt.Sprintf("2025-03-14T0%d:00:00Z", i),
		})
		require.NoError(t, err)
	}

	list, err := repo.ListByUser(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// newest first
	assert.Equal(t, "2025-03-14T04:00:00Z", list[0].CreatedAt)
}

func TestCodingRepoNotFound(t *testing.T) {
	repo := NewCodingInterviewRepo()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.SaveCode(ctx, "missing", "code"), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Complete(ctx, "missing", nil, "", "now"), repositories.ErrNotFound)
}
