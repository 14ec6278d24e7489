// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/metrics"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
)

// ReconcilerConfig configures the feedback reconciler job.
type ReconcilerConfig struct {
	Schedule   string // cron expression
	Enabled    bool
	MaxRetries uint64
	RunTimeout time.Duration
}

// FeedbackReconcilerJob sweeps completed coding interviews that still lack a
// feedback record (oracle down at completion time, caller gave up on the
// bounded wait) and re-runs generation for them. Retried generation reuses
// the same upsert key, so it overwrites rather than duplicates.
type FeedbackReconcilerJob struct {
	interviews repositories.CodingInterviewRepository
	store      repositories.CodingFeedbackRepository
	generator  *feedback.Generator
	config     *ReconcilerConfig
	logger     *zap.Logger
	cron       *cron.Cron
}

func NewFeedbackReconcilerJob(
	interviews repositories.CodingInterviewRepository,
	store repositories.CodingFeedbackRepository,
	generator *feedback.Generator,
	config *ReconcilerConfig,
	logger *zap.Logger,
) *FeedbackReconcilerJob {
	return &FeedbackReconcilerJob{
		interviews: interviews,
		store:      store,
		generator:  generator,
		config:     config,
		logger:     logger,
	}
}

// Start schedules the job.
func (j *FeedbackReconcilerJob) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.config.Schedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule; an in-flight run finishes.
func (j *FeedbackReconcilerJob) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

// Run executes one reconciliation sweep.
func (j *FeedbackReconcilerJob) Run() {
	ctx := context.Background()
	if j.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.RunTimeout)
		defer cancel()
	}

	completed, err := j.interviews.ListCompleted(ctx)
	if err != nil {
		metrics.ReconcilerRun("list_error")
		j.logger.Error("reconciler failed to list completed interviews", zap.Error(err))
		return
	}

	recovered, failed := 0, 0
	for _, interview := range completed {
		id := interview.ID.Hex()
		_, err := j.store.GetByKey(ctx, id, interview.UserID)
		if err == nil {
			continue // already has feedback
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			j.logger.Error("reconciler feedback lookup failed",
				zap.String("interview_id", id), zap.Error(err))
			failed++
			continue
		}
		if len(interview.Transcript) == 0 {
			// nothing to score, skip permanently
			continue
		}

		if err := j.regenerate(ctx, interview.UserID, id, interview); err != nil {
			j.logger.Warn("reconciler could not regenerate feedback",
				zap.String("interview_id", id),
				zap.String("code", llm.CodeOf(err)),
				zap.Error(err))
			failed++
			continue
		}
		recovered++
	}

	if failed > 0 {
		metrics.ReconcilerRun("partial")
	} else {
		metrics.ReconcilerRun("ok")
	}
	j.logger.Info("feedback reconciler run finished",
		zap.Int("recovered", recovered),
		zap.Int("failed", failed),
		zap.Int("completed_total", len(completed)))
}

// regenerate re-runs one generation with exponential backoff. Schema
// violations and missing input are permanent; transport and rate-limit
// failures are retried.
func (j *FeedbackReconcilerJob) regenerate(ctx context.Context, userID, id string, interview models.CodingInterview) error {
	op := func() error {
		_, err := j.generator.GenerateCoding(ctx, feedback.CodingInput{
			InterviewID: id,
			UserID:      userID,
			Transcript:  interview.Transcript,
			Code:        interview.Code,
			Question:    interview.Question,
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, feedback.ErrMissingInput) || !llm.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), j.config.MaxRetries)
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
