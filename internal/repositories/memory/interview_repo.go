package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

type InterviewRepo struct {
	mu      sync.Mutex
	records map[string]*models.Interview
}

func NewInterviewRepo() *InterviewRepo {
	return &InterviewRepo{records: make(map[string]*models.Interview)}
}

func (r *InterviewRepo) Create(_ context.Context, interview *models.Interview) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview.ID = primitive.NewObjectID()
	stored := *interview
	r.records[stored.ID.Hex()] = &stored
	return stored.ID.Hex(), nil
}

func (r *InterviewRepo) Finalize(_ context.Context, id string, questions []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview, ok := r.records[id]
	if !ok {
		return repositories.ErrNotFound
	}
	interview.Questions = questions
	interview.Finalized = true
	return nil
}

func (r *InterviewRepo) GetByID(_ context.Context, id string) (*models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *interview
	return &copied, nil
}

func (r *InterviewRepo) ListFinalizedByUser(_ context.Context, userID string) ([]models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Interview
	for _, interview := range r.records {
		if interview.UserID == userID && interview.Finalized {
			out = append(out, *interview)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

type CodingInterviewRepo struct {
	mu      sync.Mutex
	records map[string]*models.CodingInterview
}

func NewCodingInterviewRepo() *CodingInterviewRepo {
	return &CodingInterviewRepo{records: make(map[string]*models.CodingInterview)}
}

func (r *CodingInterviewRepo) Create(_ context.Context, interview *models.CodingInterview) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview.ID = primitive.NewObjectID()
	if interview.Transcript == nil {
		interview.Transcript = []models.Turn{}
	}
	stored := *interview
	r.records[stored.ID.Hex()] = &stored
	return stored.ID.Hex(), nil
}

func (r *CodingInterviewRepo) GetByID(_ context.Context, id string) (*models.CodingInterview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *interview
	return &copied, nil
}

func (r *CodingInterviewRepo) SaveCode(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview, ok := r.records[id]
	if !ok {
		return repositories.ErrNotFound
	}
	interview.Code = code
	return nil
}

func (r *CodingInterviewRepo) Complete(_ context.Context, id string, transcript []models.Turn, code, completedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	interview, ok := r.records[id]
	if !ok {
		return repositories.ErrNotFound
	}
	interview.Transcript = transcript
	interview.Code = code
	interview.CompletedAt = completedAt
	return nil
}

func (r *CodingInterviewRepo) ListByUser(_ context.Context, userID string, limit int64) ([]models.CodingInterview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.CodingInterview
	for _, interview := range r.records {
		if interview.UserID == userID {
			out = append(out, *interview)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CodingInterviewRepo) ListCompleted(_ context.Context) ([]models.CodingInterview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.CodingInterview
	for _, interview := range r.records {
		if interview.CompletedAt != "" {
			out = append(out, *interview)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt > out[j].CompletedAt })
	return out, nil
}
