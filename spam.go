package warden

import (
	"context"

	"github.com/kingdom-collective/warden/classifier"
)

// CheckContentForSpam classifies content for the given user. The check is
// side-effect-free: it consults, but never writes, the user's flagged-content
// history. Callers apply the returned action themselves, typically by calling
// RecordFlaggedContent and, for shadowban verdicts, ApplyShadowban.
func (eng *Engine) CheckContentForSpam(ctx context.Context, content, userID string) (classifier.Decision, error) {
	dec, err := eng.Classifier.Check(ctx, content, userID)
	if err != nil {
		return classifier.Decision{}, err
	}
	if dec.IsSpam {
		eng.Logger.Debug("content flagged", "userID", userID, "severity", dec.Severity, "action", dec.Action, "patterns", dec.Patterns)
	}
	return dec, nil
}

// RecordFlaggedContent appends content to the user's flagged history, feeding
// future repeat-content detection.
func (eng *Engine) RecordFlaggedContent(ctx context.Context, userID, content string) error {
	return eng.Flagged.Append(ctx, userID, content)
}
