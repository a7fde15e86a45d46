package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ScoringWorkerPool runs a bounded number of workers draining completion
// events into the scoring pipeline. The pool catches and logs every pipeline
// failure itself: a scoring run has no caller to report back to.
type ScoringWorkerPool struct {
	pipeline *ScoringPipeline
	events   <-chan InterviewCompletedEvent
	workers  int
	logger   *slog.Logger
}

// NewScoringWorkerPool creates a pool of the given size (minimum 1).
func NewScoringWorkerPool(pipeline *ScoringPipeline, events <-chan InterviewCompletedEvent, workers int, logger *slog.Logger) *ScoringWorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &ScoringWorkerPool{
		pipeline: pipeline,
		events:   events,
		workers:  workers,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, processing events on all workers.
func (p *ScoringWorkerPool) Run(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < p.workers; i++ {
		worker := i
		g.Go(func() error {
			logger := p.logger.With("worker", worker)
			for {
				select {
				case event := <-p.events:
					if err := p.pipeline.ScoreInterview(groupCtx, event.InterviewID); err != nil {
						logger.ErrorContext(groupCtx, "Scoring run failed",
							"error", err,
							"interview_id", event.InterviewID,
						)
					}
				case <-groupCtx.Done():
					logger.InfoContext(groupCtx, "Scoring worker shutting down")
					return groupCtx.Err()
				}
			}
		})
	}

	return g.Wait()
}
