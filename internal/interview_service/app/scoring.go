package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

// Scorer turns a scoring prompt into a bounded score with rationale.
type Scorer interface {
	Score(ctx context.Context, prompt string) (*domain.ScoreResult, error)
}

// How much of the job description goes into the prompt.
const jobDescriptionExcerptLen = 800

// ScoringPipeline turns a completed interview's transcript into a persisted
// job-fit score. It is read-only against the conversation and write-only
// against the score field; it never sends messages.
type ScoringPipeline struct {
	interviews domain.InterviewRepository
	candidates domain.CandidateRepository
	jobs       domain.JobRepository
	questions  domain.QuestionRepository
	messages   domain.MessageRepository
	scorer     Scorer
	timeout    time.Duration
	logger     *slog.Logger
}

// NewScoringPipeline creates the pipeline. scorer may be nil when the
// scoring service is not configured; the pipeline then aborts with a log
// entry, leaving the score null.
func NewScoringPipeline(
	interviews domain.InterviewRepository,
	candidates domain.CandidateRepository,
	jobs domain.JobRepository,
	questions domain.QuestionRepository,
	messages domain.MessageRepository,
	scorer Scorer,
	timeout time.Duration,
	logger *slog.Logger,
) *ScoringPipeline {
	return &ScoringPipeline{
		interviews: interviews,
		candidates: candidates,
		jobs:       jobs,
		questions:  questions,
		messages:   messages,
		scorer:     scorer,
		timeout:    timeout,
		logger:     logger,
	}
}

// ScoreInterview runs the pipeline for one interview. Aborting without a
// persisted score is not an error for absent data (no transcript, already
// scored); external failures are returned so the caller can count them. The
// conditional score write keeps re-runs idempotent either way.
func (p *ScoringPipeline) ScoreInterview(ctx context.Context, interviewID uuid.UUID) error {
	timer := prometheus.NewTimer(scoringDurationHist)
	defer timer.ObserveDuration()

	// Interviews completed by an out-of-band status edit may lack ended_at.
	if err := p.interviews.BackfillEndedAt(ctx, interviewID, time.Now().UTC()); err != nil {
		return fmt.Errorf("backfill ended_at: %w", err)
	}

	interview, err := p.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "Interview not found for scoring", "interview_id", interviewID)
			scoringResultCounter.WithLabelValues("not_found").Inc()
			return nil
		}
		return fmt.Errorf("get interview: %w", err)
	}

	if interview.JobFitScore.Valid {
		p.logger.InfoContext(ctx, "Interview already scored, skipping",
			"interview_id", interviewID,
			"score", interview.JobFitScore.Float64,
		)
		scoringResultCounter.WithLabelValues("already_scored").Inc()
		return nil
	}

	transcript, err := p.messages.ListByInterview(ctx, interviewID)
	if err != nil {
		return fmt.Errorf("list transcript: %w", err)
	}
	if len(transcript) == 0 {
		p.logger.InfoContext(ctx, "No transcript found for interview, skipping scoring", "interview_id", interviewID)
		scoringResultCounter.WithLabelValues("empty_transcript").Inc()
		return nil
	}

	questions, err := p.questions.ListByInterview(ctx, interviewID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}

	candidate, err := p.candidates.GetByID(ctx, interview.CandidateID)
	if err != nil {
		return fmt.Errorf("get candidate: %w", err)
	}

	job, err := p.jobs.GetByID(ctx, interview.JobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	if p.scorer == nil {
		p.logger.WarnContext(ctx, "Scoring service not configured, leaving interview unscored", "interview_id", interviewID)
		scoringResultCounter.WithLabelValues("scorer_disabled").Inc()
		return nil
	}

	prompt := buildScoringPrompt(candidate, job, questions, transcript)

	scoreCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	result, err := p.scorer.Score(scoreCtx, prompt)
	if err != nil {
		p.logger.ErrorContext(ctx, "Interview scoring failed", "error", err, "interview_id", interviewID)
		scoringResultCounter.WithLabelValues("scorer_error").Inc()
		return fmt.Errorf("score interview %s: %w", interviewID, err)
	}

	written, err := p.interviews.SetScoreIfUnset(ctx, interviewID, result.Score)
	if err != nil {
		return fmt.Errorf("persist score: %w", err)
	}
	if !written {
		// A concurrent trigger won the conditional update; this run's result
		// is discarded.
		p.logger.InfoContext(ctx, "Score already written by a concurrent run", "interview_id", interviewID)
		scoringResultCounter.WithLabelValues("already_scored").Inc()
		return nil
	}

	p.logger.InfoContext(ctx, "Interview scored",
		"interview_id", interviewID,
		"score", result.Score,
		"rationale", result.Rationale,
	)
	scoringResultCounter.WithLabelValues("scored").Inc()
	return nil
}

// buildScoringPrompt assembles the evaluation context: who the candidate is,
// what the role requires, the structured question list, and the labeled,
// time-ordered transcript.
func buildScoringPrompt(candidate *domain.Candidate, job *domain.Job, questions []domain.Question, transcript []domain.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Candidate: %s (%s)\n", candidate.FullName(), candidate.Email)
	fmt.Fprintf(&b, "Role Applied: %s\n", job.Title)
	fmt.Fprintf(&b, "Job Category: %s\n", job.Category)
	fmt.Fprintf(&b, "Job Description (excerpt): %s\n", excerpt(job.Description, jobDescriptionExcerptLen))

	b.WriteString("\nInterview Questions:\n")
	if len(questions) == 0 {
		b.WriteString("- No structured questions recorded.\n")
	}
	for _, q := range questions {
		fmt.Fprintf(&b, "- (%d) [%s] %s\n", q.SequenceNumber, q.QuestionType, q.QuestionText)
	}

	b.WriteString("\nSMS Transcript:\n")
	for _, msg := range transcript {
		speaker := "Candidate"
		if msg.Direction == domain.DirectionOutbound {
			speaker = "Interviewer"
		}
		fmt.Fprintf(&b, "%s [%s]: %s\n", speaker, msg.CreatedAt.Format(time.RFC3339), msg.MessageText)
	}

	return strings.TrimSpace(b.String())
}

func excerpt(text string, limit int) string {
	if text == "" {
		return "N/A"
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
