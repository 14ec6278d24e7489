// Package feedback contains the feedback-generation pipeline: it turns a
// finished interview transcript into a persisted, schema-validated
// evaluation.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/metrics"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/prompts"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

var (
	// ErrMissingInput rejects a generation request with an empty transcript
	// or missing user id. No oracle call is made in that case.
	ErrMissingInput = errors.New("transcript and userId are required")

	// ErrPending signals that the caller's wait bound expired while the
	// pipeline keeps running in the background. Its eventual outcome is
	// observable only through a later feedback read.
	ErrPending = errors.New("feedback generation still pending")
)

// Result reports a persisted feedback record.
type Result struct {
	FeedbackID string
	Updated    bool
}

// BehavioralInput is one behavioral completion event.
type BehavioralInput struct {
	InterviewID string
	UserID      string
	Transcript  []models.Turn
}

// CodingInput is one coding completion event.
type CodingInput struct {
	InterviewID string
	UserID      string
	Transcript  []models.Turn
	Code        string
	Question    models.Question
}

// Generator runs the scoring pipeline once per completion event:
// validate, render prompt, invoke the oracle, upsert the record.
// It never persists anything when the oracle call fails.
type Generator struct {
	oracle     *llm.ScoringClient
	prompts    prompts.PromptProvider
	behavioral repositories.FeedbackRepository
	coding     repositories.CodingFeedbackRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewGenerator(
	oracle *llm.ScoringClient,
	promptManager prompts.PromptProvider,
	behavioral repositories.FeedbackRepository,
	coding repositories.CodingFeedbackRepository,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		oracle:     oracle,
		prompts:    promptManager,
		behavioral: behavioral,
		coding:     coding,
		logger:     logger,
		now:        time.Now,
	}
}

// FormatTranscript renders turns into the deterministic line-per-turn block
// handed to the oracle. Never truncated.
func FormatTranscript(transcript []models.Turn) string {
	var b strings.Builder
	for _, turn := range transcript {
		b.WriteString("- ")
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

const codePlaceholder = "(no code submitted)"

func formatQuestion(q models.Question) string {
	var b strings.Builder
	b.WriteString(q.Title)
	if q.Description != "" {
		b.WriteString("\n")
		b.WriteString(q.Description)
	}
	if q.Constraints != "" {
		b.WriteString("\nConstraints: ")
		b.WriteString(q.Constraints)
	}
	if q.Example != "" {
		b.WriteString("\nExample: ")
		b.WriteString(q.Example)
	}
	return b.String()
}

// GenerateBehavioral runs the behavioral pipeline to completion.
func (g *Generator) GenerateBehavioral(ctx context.Context, in BehavioralInput) (*Result, error) {
	if len(in.Transcript) == 0 || strings.TrimSpace(in.UserID) == "" {
		return nil, ErrMissingInput
	}

	prompt, err := g.prompts.BuildPrompt("feedback", "behavioral", map[string]string{
		"Transcript": FormatTranscript(in.Transcript),
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	scores, err := g.oracle.Score(ctx, g.prompts.System("feedback"), prompt, llm.VariantBehavioral, in.InterviewID)
	if err != nil {
		metrics.FeedbackGenerated("behavioral", "oracle_error")
		g.logger.Error("scoring oracle failed",
			zap.String("interview_id", in.InterviewID),
			zap.String("code", llm.CodeOf(err)),
			zap.Error(err))
		return nil, err
	}

	record := &models.Feedback{
		InterviewID:         in.InterviewID,
		UserID:              in.UserID,
		TotalScore:          scores.TotalScore,
		CategoryScores:      scores.CategoryScores,
		Strengths:           scores.Strengths,
		AreasForImprovement: scores.AreasForImprovement,
		FinalAssessment:     scores.FinalAssessment,
		CreatedAt:           g.now().UTC().Format(time.RFC3339),
	}

	id, updated, err := g.behavioral.Upsert(ctx, record)
	if err != nil {
		metrics.FeedbackGenerated("behavioral", "store_error")
		// an unpersisted result is equivalent to no result
		return nil, fmt.Errorf("persist feedback: %w", err)
	}

	metrics.FeedbackGenerated("behavioral", "success")
	g.logger.Info("feedback generated",
		zap.String("interview_id", in.InterviewID),
		zap.String("feedback_id", id),
		zap.Bool("updated", updated))
	return &Result{FeedbackID: id, Updated: updated}, nil
}

// GenerateCoding runs the coding pipeline to completion. Empty code is
// replaced by a placeholder, never an error.
func (g *Generator) GenerateCoding(ctx context.Context, in CodingInput) (*Result, error) {
	if len(in.Transcript) == 0 || strings.TrimSpace(in.UserID) == "" {
		return nil, ErrMissingInput
	}

	code := in.Code
	if strings.TrimSpace(code) == "" {
		code = codePlaceholder
	}

	prompt, err := g.prompts.BuildPrompt("feedback", "coding", map[string]string{
		"Question":   formatQuestion(in.Question),
		"Code":       code,
		"Transcript": FormatTranscript(in.Transcript),
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	scores, err := g.oracle.Score(ctx, g.prompts.System("feedback"), prompt, llm.VariantCoding, in.InterviewID)
	if err != nil {
		metrics.FeedbackGenerated("coding", "oracle_error")
		g.logger.Error("scoring oracle failed",
			zap.String("interview_id", in.InterviewID),
			zap.String("code", llm.CodeOf(err)),
			zap.Error(err))
		return nil, err
	}

	record := &models.CodingFeedback{
		Feedback: models.Feedback{
			InterviewID:         in.InterviewID,
			UserID:              in.UserID,
			TotalScore:          scores.TotalScore,
			CategoryScores:      scores.CategoryScores,
			Strengths:           scores.Strengths,
			AreasForImprovement: scores.AreasForImprovement,
			FinalAssessment:     scores.FinalAssessment,
			CreatedAt:           g.now().UTC().Format(time.RFC3339),
		},
		CodeReview: scores.CodeReview,
	}

	id, updated, err := g.coding.Upsert(ctx, record)
	if err != nil {
		metrics.FeedbackGenerated("coding", "store_error")
		return nil, fmt.Errorf("persist feedback: %w", err)
	}

	metrics.FeedbackGenerated("coding", "success")
	g.logger.Info("coding feedback generated",
		zap.String("interview_id", in.InterviewID),
		zap.String("feedback_id", id),
		zap.Bool("updated", updated))
	return &Result{FeedbackID: id, Updated: updated}, nil
}

// GenerateBehavioralWithTimeout races the pipeline against a wall-clock
// bound. On expiry the caller gets ErrPending while the detached pipeline
// runs to completion and writes only to the store; the in-flight oracle call
// is never cancelled.
func (g *Generator) GenerateBehavioralWithTimeout(ctx context.Context, in BehavioralInput, bound time.Duration) (*Result, error) {
	return g.await(ctx, "behavioral", bound, func(detached context.Context) (*Result, error) {
		return g.GenerateBehavioral(detached, in)
	})
}

// GenerateCodingWithTimeout is the coding counterpart of
// GenerateBehavioralWithTimeout.
func (g *Generator) GenerateCodingWithTimeout(ctx context.Context, in CodingInput, bound time.Duration) (*Result, error) {
	return g.await(ctx, "coding", bound, func(detached context.Context) (*Result, error) {
		return g.GenerateCoding(detached, in)
	})
}

type outcome struct {
	result *Result
	err    error
}

func (g *Generator) await(ctx context.Context, variant string, bound time.Duration, run func(context.Context) (*Result, error)) (*Result, error) {
	// The caller abandoning the wait must not cancel the in-flight work.
	detached := context.WithoutCancel(ctx)

	done := make(chan outcome, 1)
	go func() {
		result, err := run(detached)
		done <- outcome{result: result, err: err}
	}()

	timer := time.NewTimer(bound)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.result, out.err
	case <-timer.C:
		metrics.FeedbackGenerated(variant, "timeout")
		return nil, ErrPending
	}
}
