package domain

// ScoreResult is the normalized output of the scoring service: a job-fit
// score bounded to [1.0, 5.0] and a short rationale. Only the score is
// persisted, onto the interview.
type ScoreResult struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}
