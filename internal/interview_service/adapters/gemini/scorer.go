package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

const scoringSystemPrompt = `You are an expert technical interviewer. Evaluate the candidate's answers against the role.
Always reply with strict JSON: {"score": <float 1-5>, "rationale": "<<=3 concise sentences>"}.
Score scale:
1 = Very poor
2 = Below average
3 = Adequate
4 = Strong
5 = Exceptional`

const (
	minScore = 1.0
	maxScore = 5.0

	// Scores above maxScore up to this bound are treated as the legacy
	// 0-100 scale and divided by 20.
	legacyScaleMax = 100.0
)

// Matches the first brace-delimited span, across newlines.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Scorer asks Gemini to evaluate an interview transcript and normalizes the
// freeform response into a bounded ScoreResult.
type Scorer struct {
	generator contentGenerator
	logger    *slog.Logger
}

// NewScorer creates a Scorer over the given generator.
func NewScorer(generator contentGenerator, logger *slog.Logger) *Scorer {
	return &Scorer{generator: generator, logger: logger}
}

// Score sends the prompt and parses the response. Any unparseable payload is
// an error to the caller; the score is never retried here.
func (s *Scorer) Score(ctx context.Context, prompt string) (*domain.ScoreResult, error) {
	raw, err := s.generator.GenerateContent(ctx, scoringSystemPrompt+"\n\n"+prompt)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Gemini scoring response", "length", len(raw))

	result, err := parseScorePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}
	return result, nil
}

// parseScorePayload decodes the model output: direct JSON first, then the
// first brace-delimited span. The score is coerced, rescaled from the legacy
// 0-100 scale when applicable, and clamped to [1, 5].
func parseScorePayload(text string) (*domain.ScoreResult, error) {
	payload, err := decodeLooseJSON(text)
	if err != nil {
		return nil, err
	}

	score := coerceScore(payload["score"])

	if score > maxScore && score <= legacyScaleMax {
		score = score / 20.0
	}

	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}

	rationale := ""
	if raw, ok := payload["rationale"].(string); ok {
		rationale = strings.TrimSpace(raw)
	}

	return &domain.ScoreResult{Score: score, Rationale: rationale}, nil
}

// decodeLooseJSON tolerates a model wrapping its JSON in prose or markdown
// fences: whole-text decode first, then the first {...} span.
func decodeLooseJSON(text string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		return payload, nil
	}

	span := jsonObjectPattern.FindString(text)
	if span == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, fmt.Errorf("decode extracted JSON: %w", err)
	}
	return payload, nil
}

// coerceScore turns whatever the model put in "score" into a float,
// defaulting to the minimum on failure.
func coerceScore(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return minScore
		}
		return f
	default:
		return minScore
	}
}
