package gemini

import (
	"context"
	"fmt"
	"log/slog"
)

const classifySystemPrompt = `You are assessing a SINGLE candidate answer for interview readiness.
Return strict JSON only: {"weak": true|false}.
weak = true if the answer shows: uncertainty, lack of knowledge, apology, excuse, deferral (e.g. "I don't know", "not sure", "can't recall", "sorry", "maybe later", "I haven't used that", etc.).
Otherwise weak = false.`

// WeakAnswerClassifier asks Gemini whether a single answer is weak. It is
// the fallback behind the heuristic classifier in the app layer.
type WeakAnswerClassifier struct {
	generator contentGenerator
	logger    *slog.Logger
}

// NewWeakAnswerClassifier creates the classifier over the given generator.
func NewWeakAnswerClassifier(generator contentGenerator, logger *slog.Logger) *WeakAnswerClassifier {
	return &WeakAnswerClassifier{generator: generator, logger: logger}
}

// ClassifyWeak returns the model's verdict. Errors propagate so the caller
// can apply its fail-open default.
func (c *WeakAnswerClassifier) ClassifyWeak(ctx context.Context, answerText string) (bool, error) {
	raw, err := c.generator.GenerateContent(ctx, classifySystemPrompt+"\n\nAnswer:\n"+answerText)
	if err != nil {
		return false, err
	}

	payload, err := decodeLooseJSON(raw)
	if err != nil {
		return false, fmt.Errorf("parse classification response: %w", err)
	}

	weak, ok := payload["weak"].(bool)
	if !ok {
		return false, fmt.Errorf("classification response missing boolean weak field")
	}

	return weak, nil
}
