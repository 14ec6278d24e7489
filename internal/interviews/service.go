// Package interviews creates behavioral interviews from voice-agent setup
// conversations: structured detail extraction followed by question
// generation.
package interviews

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/prompts"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

// Details is the structured interview setup extracted from a conversation.
type Details struct {
	Role      string   `json:"role"`
	Level     string   `json:"level"`
	Type      string   `json:"type"`
	Techstack []string `json:"techstack"`
	Amount    int      `json:"amount"`
}

const (
	defaultQuestionAmount = 5
	maxQuestionAmount     = 20
)

type Service struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	repo     repositories.InterviewRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(provider llm.Provider, promptManager prompts.PromptProvider, repo repositories.InterviewRepository, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		prompts:  promptManager,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

func detailsSchema() *llm.Schema {
	one, twenty := 1.0, float64(maxQuestionAmount)
	return llm.Object(map[string]*llm.Schema{
		"role": llm.String("The job role the user wants to interview for"),
		"level": {
			Type: llm.TypeString,
			Enum: []string{models.LevelJunior, models.LevelMid, models.LevelSenior},
		},
		"type": {
			Type: llm.TypeString,
			Enum: []string{models.InterviewTypeTechnical, models.InterviewTypeBehavioral, models.InterviewTypeMixed},
		},
		"techstack": llm.StringArray("Technologies and skills mentioned"),
		"amount": {
			Type:    llm.TypeInteger,
			Minimum: &one,
			Maximum: &twenty,
		},
	})
}

func questionsSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"questions": llm.StringArray("The generated interview questions"),
	})
}

// CreateFromConversation extracts interview details, stores the interview
// un-finalized, generates its questions, then finalizes it. Until the
// finalize write lands the interview must not be surfaced to the user.
func (s *Service) CreateFromConversation(ctx context.Context, conversation, userID string) (*models.Interview, error) {
	prompt, err := s.prompts.BuildPrompt("interview", "extract", map[string]string{
		"Conversation": conversation,
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := s.provider.GenerateStructured(ctx, &llm.StructuredRequest{
		System: s.prompts.System("interview"),
		Prompt: prompt,
		Schema: detailsSchema(),
	})
	if err != nil {
		return nil, err
	}

	var details Details
	if err := json.Unmarshal(resp.Raw, &details); err != nil {
		return nil, &llm.ProviderError{
			Provider: s.provider.GetProviderName(),
			Code:     llm.ErrCodeSchemaViolation,
			Message:  "interview details are not valid JSON",
			Err:      err,
		}
	}
	normalizeDetails(&details)

	interview := &models.Interview{
		Role:      details.Role,
		Level:     details.Level,
		Type:      details.Type,
		Techstack: details.Techstack,
		Questions: []string{},
		UserID:    userID,
		Finalized: false,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	id, err := s.repo.Create(ctx, interview)
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	questions, err := s.generateQuestions(ctx, &details)
	if err != nil {
		// interview stays un-finalized and hidden; caller may retry
		s.logger.Error("question generation failed",
			zap.String("interview_id", id),
			zap.Error(err))
		return nil, err
	}

	if err := s.repo.Finalize(ctx, id, questions); err != nil {
		return nil, fmt.Errorf("finalize interview: %w", err)
	}

	interview.Questions = questions
	interview.Finalized = true
	s.logger.Info("interview created",
		zap.String("interview_id", id),
		zap.String("role", details.Role),
		zap.Int("questions", len(questions)))
	return interview, nil
}

func (s *Service) generateQuestions(ctx context.Context, details *Details) ([]string, error) {
	prompt, err := s.prompts.BuildPrompt("interview", "questions", map[string]string{
		"Amount":    strconv.Itoa(details.Amount),
		"Level":     details.Level,
		"Role":      details.Role,
		"Type":      details.Type,
		"Techstack": strings.Join(details.Techstack, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := s.provider.GenerateStructured(ctx, &llm.StructuredRequest{
		System: s.prompts.System("interview"),
		Prompt: prompt,
		Schema: questionsSchema(),
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(resp.Raw, &out); err != nil || len(out.Questions) == 0 {
		return nil, &llm.ProviderError{
			Provider: s.provider.GetProviderName(),
			Code:     llm.ErrCodeSchemaViolation,
			Message:  "no questions generated",
			Err:      err,
		}
	}
	return out.Questions, nil
}

func normalizeDetails(details *Details) {
	if !models.IsValidLevel(details.Level) {
		details.Level = models.LevelMid
	}
	if !models.IsValidInterviewType(details.Type) {
		details.Type = models.InterviewTypeMixed
	}
	if details.Amount <= 0 {
		details.Amount = defaultQuestionAmount
	}
	if details.Amount > maxQuestionAmount {
		details.Amount = maxQuestionAmount
	}
	if details.Techstack == nil {
		details.Techstack = []string{}
	}
}
