package warden

import (
	"context"
	"fmt"
	"time"

	"github.com/kingdom-collective/warden/countstore"
	"github.com/kingdom-collective/warden/modstore"
)

// Counter buckets for DMs and posts older than this are pruned by
// CleanupOldData. Comment and like buckets are retained indefinitely.
const RetentionDays = 7

// ShadowbanState is the read-side view of a user's shadowban.
type ShadowbanState struct {
	Shadowbanned bool                     `json:"shadowbanned"`
	Status       modstore.ShadowbanStatus `json:"status"`
	Reason       string                   `json:"reason,omitempty"`
}

// UserStats aggregates a user's activity and moderation state. Totals sum
// every retained counter bucket, so very old activity only drops out of the
// totals once cleanup physically removes its buckets.
type UserStats struct {
	UserID          string                   `json:"userId"`
	AccountCreated  time.Time                `json:"accountCreated"`
	LastActivity    time.Time                `json:"lastActivity"`
	ShadowbanStatus modstore.ShadowbanStatus `json:"shadowbanStatus"`
	TotalDMs        int                      `json:"totalDms"`
	TotalPosts      int                      `json:"totalPosts"`
	TotalAppeals    int                      `json:"totalAppeals"`
	PendingAppeals  int                      `json:"pendingAppeals"`
	ApprovedAppeals int                      `json:"approvedAppeals"`
	RejectedAppeals int                      `json:"rejectedAppeals"`
}

// ApplyShadowban overwrites the user's shadowban state unconditionally; a
// second ban replaces the first with no history kept. Severity is partial or
// full; anything else is treated as full.
func (eng *Engine) ApplyShadowban(ctx context.Context, userID, reason string, severity modstore.ShadowbanStatus) error {
	if severity != modstore.ShadowbanPartial {
		if severity != modstore.ShadowbanFull {
			eng.Logger.Warn("unexpected shadowban severity, applying full", "severity", severity, "userID", userID)
		}
		severity = modstore.ShadowbanFull
	}
	if err := eng.Mods.SetShadowban(ctx, userID, severity, reason); err != nil {
		return err
	}
	if err := eng.Mods.TouchActivity(ctx, userID); err != nil {
		return err
	}
	eng.Logger.Info("shadowban applied", "userID", userID, "severity", severity, "reason", reason)
	return nil
}

// IsShadowbanned is a pure read of the user's shadowban state.
func (eng *Engine) IsShadowbanned(ctx context.Context, userID string) (ShadowbanState, error) {
	meta, err := eng.Mods.GetMeta(ctx, userID)
	if err != nil {
		return ShadowbanState{}, err
	}
	return ShadowbanState{
		Shadowbanned: meta.ShadowbanStatus != modstore.ShadowbanNone,
		Status:       meta.ShadowbanStatus,
		Reason:       meta.ShadowbanReason,
	}, nil
}

// SubmitAppeal opens a pending appeal for the user and returns its id. There
// is no limit on appeals per user.
func (eng *Engine) SubmitAppeal(ctx context.Context, userID, reason string) (string, error) {
	now := time.Now().UTC()
	ap := modstore.Appeal{
		ID:        fmt.Sprintf("appeal_%d_%s", now.UnixMilli(), userID),
		Timestamp: now,
		Reason:    reason,
		Status:    modstore.AppealPending,
	}
	if err := eng.Mods.AddAppeal(ctx, userID, ap); err != nil {
		return "", err
	}
	eng.Logger.Info("appeal submitted", "userID", userID, "appealID", ap.ID)
	return ap.ID, nil
}

// ProcessAppeal resolves an appeal. Approval unconditionally lifts the owning
// user's shadowban, even if other appeals are still pending. An unknown
// appeal id is not an error; the returned bool reports whether the appeal was
// found.
func (eng *Engine) ProcessAppeal(ctx context.Context, appealID string, approved bool, moderatorResponse string) (bool, error) {
	userID, found, err := eng.Mods.FindAppealOwner(ctx, appealID)
	if err != nil {
		return false, err
	}
	if !found {
		eng.Logger.Debug("appeal not found", "appealID", appealID)
		return false, nil
	}
	status := modstore.AppealRejected
	if approved {
		status = modstore.AppealApproved
	}
	if err := eng.Mods.UpdateAppeal(ctx, userID, appealID, status, moderatorResponse); err != nil {
		return true, err
	}
	if approved {
		if err := eng.Mods.SetShadowban(ctx, userID, modstore.ShadowbanNone, ""); err != nil {
			return true, err
		}
	}
	eng.Logger.Info("appeal processed", "appealID", appealID, "userID", userID, "status", status)
	return true, nil
}

// GetUserStats is a pure aggregation over the user's counters and record.
func (eng *Engine) GetUserStats(ctx context.Context, userID string) (UserStats, error) {
	meta, err := eng.Mods.GetMeta(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	dms, err := eng.Counters.TotalCount(ctx, countstore.CategoryDM, userID)
	if err != nil {
		return UserStats{}, err
	}
	posts, err := eng.Counters.TotalCount(ctx, countstore.CategoryPost, userID)
	if err != nil {
		return UserStats{}, err
	}
	stats := UserStats{
		UserID:          userID,
		AccountCreated:  meta.AccountCreated,
		LastActivity:    meta.LastActivity,
		ShadowbanStatus: meta.ShadowbanStatus,
		TotalDMs:        dms,
		TotalPosts:      posts,
		TotalAppeals:    len(meta.Appeals),
	}
	for _, ap := range meta.Appeals {
		switch ap.Status {
		case modstore.AppealPending:
			stats.PendingAppeals++
		case modstore.AppealApproved:
			stats.ApprovedAppeals++
		case modstore.AppealRejected:
			stats.RejectedAppeals++
		}
	}
	return stats, nil
}

// CleanupOldData prunes DM and post counter buckets older than the retention
// window, returning how many buckets were removed. The engine has no internal
// timer; a scheduler owns the cadence.
func (eng *Engine) CleanupOldData(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-RetentionDays * 24 * time.Hour)
	removed, err := eng.Counters.TrimBefore(ctx, cutoff, []string{countstore.CategoryDM, countstore.CategoryPost})
	if err != nil {
		return removed, err
	}
	eng.Logger.Info("cleanup complete", "removedBuckets", removed, "cutoff", cutoff)
	return removed, nil
}
