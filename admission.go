package warden

import (
	"context"
	"fmt"
	"time"

	"github.com/kingdom-collective/warden/countstore"
)

// AdmissionResult is the outcome of a rate-limit check. Remaining is how many
// actions are left in the current bucket window, never negative.
type AdmissionResult struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Remaining int    `json:"remaining"`
}

// limitClass binds a counter category to the caps and phrasing used for it.
type limitClass struct {
	category string
	unit     string
	standard func(Config) int
	newUser  func(Config) int
}

var dmLimit = limitClass{
	category: countstore.CategoryDM,
	unit:     "DMs per hour",
	standard: func(c Config) int { return c.MaxDMsPerHour },
	newUser:  func(c Config) int { return c.NewUserRestrictions.MaxDMsPerHour },
}

var postLimit = limitClass{
	category: countstore.CategoryPost,
	unit:     "posts per day",
	standard: func(c Config) int { return c.MaxPostsPerDay },
	newUser:  func(c Config) int { return c.NewUserRestrictions.MaxPostsPerDay },
}

// isNewUser reports whether the account is younger than the configured
// threshold. AccountCreated defaults to first-seen; the identity system can
// supply the real timestamp with SetAccountCreated.
func (eng *Engine) isNewUser(ctx context.Context, userID string, cfg Config) (bool, error) {
	meta, err := eng.Mods.GetMeta(ctx, userID)
	if err != nil {
		return false, err
	}
	threshold := time.Duration(cfg.NewUserRestrictions.AccountAgeThresholdDays) * 24 * time.Hour
	return time.Since(meta.AccountCreated) < threshold, nil
}

func (eng *Engine) capFor(ctx context.Context, userID string, lc limitClass) (limit int, newUser bool, err error) {
	cfg := eng.GetConfig()
	newUser, err = eng.isNewUser(ctx, userID, cfg)
	if err != nil {
		return 0, false, err
	}
	if newUser {
		return lc.newUser(cfg), true, nil
	}
	return lc.standard(cfg), false, nil
}

func denialReason(lc limitClass, limit int, newUser bool) string {
	if newUser {
		return fmt.Sprintf("New users are limited to %d %s", limit, lc.unit)
	}
	return fmt.Sprintf("Rate limit exceeded: maximum %d %s", limit, lc.unit)
}

// canAct is the non-committing admission check: a pure read, no counter
// changes. The cap is an inclusive ceiling on the bucket count, so the call
// after the cap-th recorded action is denied.
func (eng *Engine) canAct(ctx context.Context, userID string, lc limitClass) (AdmissionResult, error) {
	limit, newUser, err := eng.capFor(ctx, userID, lc)
	if err != nil {
		return AdmissionResult{}, err
	}
	count, err := eng.Counters.GetCount(ctx, lc.category, userID, countstore.PeriodFor(lc.category))
	if err != nil {
		return AdmissionResult{}, err
	}
	if count >= limit {
		return AdmissionResult{
			Allowed:   false,
			Reason:    denialReason(lc, limit, newUser),
			Remaining: 0,
		}, nil
	}
	return AdmissionResult{Allowed: true, Remaining: limit - count}, nil
}

// tryConsume is the atomic check-and-increment variant: the admission check
// and the counter increment happen as one operation, so concurrent callers
// can not overrun the cap between a check and a record.
func (eng *Engine) tryConsume(ctx context.Context, userID string, lc limitClass) (AdmissionResult, error) {
	limit, newUser, err := eng.capFor(ctx, userID, lc)
	if err != nil {
		return AdmissionResult{}, err
	}
	ok, count, err := eng.Counters.TryIncrement(ctx, lc.category, userID, countstore.PeriodFor(lc.category), limit)
	if err != nil {
		return AdmissionResult{}, err
	}
	if !ok {
		return AdmissionResult{
			Allowed:   false,
			Reason:    denialReason(lc, limit, newUser),
			Remaining: 0,
		}, nil
	}
	if err := eng.Mods.TouchActivity(ctx, userID); err != nil {
		return AdmissionResult{}, err
	}
	return AdmissionResult{Allowed: true, Remaining: limit - count}, nil
}

// record unconditionally counts an action. Callers are expected to check
// admission first; record itself never refuses, even over the cap.
func (eng *Engine) record(ctx context.Context, userID, category string) error {
	if err := eng.Counters.Increment(ctx, category, userID, countstore.PeriodFor(category)); err != nil {
		return err
	}
	return eng.Mods.TouchActivity(ctx, userID)
}

// CanSendDM reports whether the user may send a direct message right now,
// without committing a slot. Advisory only: see TryConsumeDM for the atomic
// variant.
func (eng *Engine) CanSendDM(ctx context.Context, userID string) (AdmissionResult, error) {
	return eng.canAct(ctx, userID, dmLimit)
}

// CanCreatePost reports whether the user may create a post right now, without
// committing a slot.
func (eng *Engine) CanCreatePost(ctx context.Context, userID string) (AdmissionResult, error) {
	return eng.canAct(ctx, userID, postLimit)
}

// TryConsumeDM atomically checks and consumes one DM slot.
func (eng *Engine) TryConsumeDM(ctx context.Context, userID string) (AdmissionResult, error) {
	return eng.tryConsume(ctx, userID, dmLimit)
}

// TryConsumePost atomically checks and consumes one post slot.
func (eng *Engine) TryConsumePost(ctx context.Context, userID string) (AdmissionResult, error) {
	return eng.tryConsume(ctx, userID, postLimit)
}

// RecordDM counts a sent direct message.
func (eng *Engine) RecordDM(ctx context.Context, userID string) error {
	return eng.record(ctx, userID, countstore.CategoryDM)
}

// RecordPost counts a created post.
func (eng *Engine) RecordPost(ctx context.Context, userID string) error {
	return eng.record(ctx, userID, countstore.CategoryPost)
}

// RecordComment counts a comment. Comment caps exist in config but are not
// enforced by any admission check yet.
func (eng *Engine) RecordComment(ctx context.Context, userID string) error {
	return eng.record(ctx, userID, countstore.CategoryComment)
}

// RecordLike counts a like. Like caps exist in config but are not enforced by
// any admission check yet.
func (eng *Engine) RecordLike(ctx context.Context, userID string) error {
	return eng.record(ctx, userID, countstore.CategoryLike)
}

// SetAccountCreated lets the identity system supply the user's true
// account-creation timestamp, replacing the first-seen default.
func (eng *Engine) SetAccountCreated(ctx context.Context, userID string, ts time.Time) error {
	return eng.Mods.SetAccountCreated(ctx, userID, ts)
}
