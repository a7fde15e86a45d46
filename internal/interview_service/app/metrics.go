package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversationRepliesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_gateway",
			Name:      "conversation_replies_total",
			Help:      "Total conversation replies emitted, by branch.",
		},
		[]string{"branch"},
	)

	interviewTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_gateway",
			Name:      "interview_transitions_total",
			Help:      "Total interview status transitions applied.",
		},
		[]string{"from", "to"},
	)

	classifierOutcomeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_gateway",
			Name:      "answer_classifications_total",
			Help:      "Total weak-answer classifications, by method and outcome.",
		},
		[]string{"method", "outcome"}, // method: "heuristic", "external"; outcome: "weak", "strong", "error"
	)

	completionEventsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_gateway",
			Name:      "completion_events_total",
			Help:      "Total interview completion events, by stage.",
		},
		[]string{"stage"}, // "published", "received", "malformed"
	)

	scoringResultCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "interview_gateway",
			Name:      "scoring_runs_total",
			Help:      "Total scoring pipeline runs, by result.",
		},
		[]string{"result"},
	)

	scoringDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "interview_gateway",
			Name:      "scoring_run_duration_seconds",
			Help:      "Duration of scoring pipeline runs.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
