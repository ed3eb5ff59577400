package modstore

import (
	"context"
	"time"
)

type ShadowbanStatus string

const (
	ShadowbanNone    ShadowbanStatus = "none"
	ShadowbanPartial ShadowbanStatus = "partial"
	ShadowbanFull    ShadowbanStatus = "full"
)

type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealRejected AppealStatus = "rejected"
)

// Appeal is a user-initiated request to have a shadowban reviewed. Appeals are
// append-only on the owning user's record; processing mutates status and
// moderator response in place, never removes.
type Appeal struct {
	ID                string       `json:"id"`
	Timestamp         time.Time    `json:"timestamp"`
	Reason            string       `json:"reason"`
	Status            AppealStatus `json:"status"`
	ModeratorResponse string       `json:"moderatorResponse,omitempty"`
}

// UserMeta is the per-user moderation record. Created lazily on first access;
// AccountCreated defaults to first-seen time unless the identity system
// supplies the real timestamp via SetAccountCreated.
type UserMeta struct {
	UserID          string          `json:"userId"`
	AccountCreated  time.Time       `json:"accountCreated"`
	LastActivity    time.Time       `json:"lastActivity"`
	ShadowbanStatus ShadowbanStatus `json:"shadowbanStatus"`
	// set iff ShadowbanStatus != none; cleared together on appeal approval
	ShadowbanReason string   `json:"shadowbanReason,omitempty"`
	Appeals         []Appeal `json:"appeals"`
}

// ModStore holds per-user moderation records plus a secondary appealID to
// userID index, so appeal processing avoids scanning every user's history.
type ModStore interface {
	// GetMeta fetches the user's record, creating it on first access.
	GetMeta(ctx context.Context, userID string) (UserMeta, error)
	SetAccountCreated(ctx context.Context, userID string, ts time.Time) error
	// TouchActivity bumps LastActivity to now, creating the record if needed.
	TouchActivity(ctx context.Context, userID string) error
	// SetShadowban overwrites status and reason unconditionally. Prior state
	// is not retained.
	SetShadowban(ctx context.Context, userID string, status ShadowbanStatus, reason string) error
	// AddAppeal appends to the user's appeal history and indexes the appeal id.
	AddAppeal(ctx context.Context, userID string, ap Appeal) error
	// FindAppealOwner resolves an appeal id to the owning user. Missing ids
	// are not an error: ok is false.
	FindAppealOwner(ctx context.Context, appealID string) (string, bool, error)
	// UpdateAppeal sets status and moderator response on the identified
	// appeal. A no-op if the user or appeal does not exist.
	UpdateAppeal(ctx context.Context, userID, appealID string, status AppealStatus, response string) error
}
