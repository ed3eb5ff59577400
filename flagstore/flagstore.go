package flagstore

import (
	"context"
)

// FlagStore holds the per-user history of content strings which were flagged
// as spam. The history is append-only and insertion-ordered; only a recency
// window is ever consulted, for repeat-content detection.
type FlagStore interface {
	// Recent returns up to n of the most recently flagged entries for the
	// user, oldest first. Missing users yield an empty slice, not an error.
	Recent(ctx context.Context, userID string, n int) ([]string, error)
	Append(ctx context.Context, userID, content string) error
}
