package warden

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kingdom-collective/warden/classifier"
	"github.com/kingdom-collective/warden/countstore"
	"github.com/kingdom-collective/warden/flagstore"
	"github.com/kingdom-collective/warden/modstore"
)

func engineTestFixture() *Engine {
	flagged := flagstore.NewMemFlagStore()
	return NewEngine(
		slog.Default(),
		countstore.NewMemCountStore(),
		flagged,
		modstore.NewMemModStore(),
		classifier.New(flagged, nil),
	)
}

// a user first seen "now" is a new user; with default config they get 3 DMs
// in the current hour and then a new-user denial
func TestNewUserDMLimit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	res, err := eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.True(res.Allowed)
	assert.Equal(3, res.Remaining)

	for i := 0; i < 3; i++ {
		assert.NoError(eng.RecordDM(ctx, "user1"))
	}

	res, err = eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.False(res.Allowed)
	assert.Equal(0, res.Remaining)
	assert.Contains(res.Reason, "New users are limited to 3 DMs per hour")
}

func TestStandardDMLimit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()
	// age the account past the new-user threshold
	assert.NoError(eng.SetAccountCreated(ctx, "user1", time.Now().UTC().Add(-30*24*time.Hour)))

	res, err := eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.True(res.Allowed)
	assert.Equal(50, res.Remaining)

	for i := 0; i < 50; i++ {
		assert.NoError(eng.RecordDM(ctx, "user1"))
	}

	res, err = eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.False(res.Allowed)
	assert.Equal(0, res.Remaining)
	assert.Contains(res.Reason, "maximum 50 DMs per hour")
}

func TestNewUserPostLimit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	res, err := eng.CanCreatePost(ctx, "user1")
	assert.NoError(err)
	assert.True(res.Allowed)
	assert.Equal(1, res.Remaining)

	assert.NoError(eng.RecordPost(ctx, "user1"))

	res, err = eng.CanCreatePost(ctx, "user1")
	assert.NoError(err)
	assert.False(res.Allowed)
	assert.Contains(res.Reason, "New users are limited to 1 posts per day")
}

// crossing the age threshold switches the same user to standard caps with no
// hysteresis
func TestNewUserThresholdCrossing(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	res, err := eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.Equal(3, res.Remaining)

	// just older than the 3 day threshold
	assert.NoError(eng.SetAccountCreated(ctx, "user1", time.Now().UTC().Add(-3*24*time.Hour-time.Minute)))
	res, err = eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.Equal(50, res.Remaining)
}

// record-without-check silently exceeds the cap; the admission check just
// reports zero remaining afterwards
func TestRecordNeverRefuses(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	for i := 0; i < 10; i++ {
		assert.NoError(eng.RecordDM(ctx, "user1"))
	}
	res, err := eng.CanSendDM(ctx, "user1")
	assert.NoError(err)
	assert.False(res.Allowed)
	assert.Equal(0, res.Remaining)
}

func TestTryConsumeDM(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	for i := 0; i < 3; i++ {
		res, err := eng.TryConsumeDM(ctx, "user1")
		assert.NoError(err)
		assert.True(res.Allowed)
		assert.Equal(3-(i+1), res.Remaining)
	}

	res, err := eng.TryConsumeDM(ctx, "user1")
	assert.NoError(err)
	assert.False(res.Allowed)
	assert.Equal(0, res.Remaining)
	assert.Contains(res.Reason, "New users are limited to 3 DMs per hour")
}

// distinct userIDs get distinct records, including the empty string
func TestDistinctUsers(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	for i := 0; i < 3; i++ {
		assert.NoError(eng.RecordDM(ctx, "user1"))
	}
	res, err := eng.CanSendDM(ctx, "")
	assert.NoError(err)
	assert.True(res.Allowed)
	assert.Equal(3, res.Remaining)
}

func TestShadowbanAndAppealFlow(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	state, err := eng.IsShadowbanned(ctx, "user1")
	assert.NoError(err)
	assert.False(state.Shadowbanned)
	assert.Equal(modstore.ShadowbanNone, state.Status)

	assert.NoError(eng.ApplyShadowban(ctx, "user1", "spam content", modstore.ShadowbanPartial))
	state, err = eng.IsShadowbanned(ctx, "user1")
	assert.NoError(err)
	assert.True(state.Shadowbanned)
	assert.Equal(modstore.ShadowbanPartial, state.Status)
	assert.Equal("spam content", state.Reason)

	id, err := eng.SubmitAppeal(ctx, "user1", "I was hacked")
	assert.NoError(err)
	assert.Contains(id, "_user1")

	// rejection leaves the ban in place
	found, err := eng.ProcessAppeal(ctx, id, false, "insufficient evidence")
	assert.NoError(err)
	assert.True(found)
	state, err = eng.IsShadowbanned(ctx, "user1")
	assert.NoError(err)
	assert.True(state.Shadowbanned)

	// approval clears status and reason together
	id2, err := eng.SubmitAppeal(ctx, "user1", "please reconsider")
	assert.NoError(err)
	found, err = eng.ProcessAppeal(ctx, id2, true, "ok")
	assert.NoError(err)
	assert.True(found)
	state, err = eng.IsShadowbanned(ctx, "user1")
	assert.NoError(err)
	assert.False(state.Shadowbanned)
	assert.Equal(modstore.ShadowbanNone, state.Status)
	assert.Equal("", state.Reason)

	stats, err := eng.GetUserStats(ctx, "user1")
	assert.NoError(err)
	assert.Equal(2, stats.TotalAppeals)
	assert.Equal(1, stats.ApprovedAppeals)
	assert.Equal(1, stats.RejectedAppeals)
	assert.Equal(0, stats.PendingAppeals)
}

func TestProcessUnknownAppeal(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	found, err := eng.ProcessAppeal(ctx, "appeal_123_nobody", true, "")
	assert.NoError(err)
	assert.False(found)
}

func TestUserStatsTotals(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	for i := 0; i < 4; i++ {
		assert.NoError(eng.RecordDM(ctx, "user1"))
	}
	assert.NoError(eng.RecordPost(ctx, "user1"))
	assert.NoError(eng.RecordComment(ctx, "user1"))
	assert.NoError(eng.RecordLike(ctx, "user1"))

	stats, err := eng.GetUserStats(ctx, "user1")
	assert.NoError(err)
	assert.Equal(4, stats.TotalDMs)
	assert.Equal(1, stats.TotalPosts)
	assert.False(stats.LastActivity.IsZero())
}

// cleanup with everything inside the retention window removes nothing
func TestCleanupRetainsRecent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()
	assert.NoError(eng.RecordDM(ctx, "user1"))
	assert.NoError(eng.RecordPost(ctx, "user1"))

	removed, err := eng.CleanupOldData(ctx)
	assert.NoError(err)
	assert.Equal(0, removed)

	stats, err := eng.GetUserStats(ctx, "user1")
	assert.NoError(err)
	assert.Equal(1, stats.TotalDMs)
	assert.Equal(1, stats.TotalPosts)
}

func TestSpamCheckThroughEngine(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	dec, err := eng.CheckContentForSpam(ctx, "totally normal message", "user1")
	assert.NoError(err)
	assert.False(dec.IsSpam)

	dec, err = eng.CheckContentForSpam(ctx, "free money for everyone", "user1")
	assert.NoError(err)
	assert.True(dec.IsSpam)

	// the caller, not the check, populates the flagged history
	assert.NoError(eng.RecordFlaggedContent(ctx, "user1", "free money for everyone"))
	dec, err = eng.CheckContentForSpam(ctx, "FREE MONEY FOR EVERYONE", "user1")
	assert.NoError(err)
	assert.Equal(classifier.SeverityHigh, dec.Severity)
	assert.Equal(classifier.ActionShadowban, dec.Action)
	assert.Contains(dec.Patterns, classifier.RepeatedContentPattern)
}

func TestConfigDeepMerge(t *testing.T) {
	assert := assert.New(t)

	eng := engineTestFixture()

	five := 5
	cfg := eng.UpdateConfig(ConfigPatch{
		NewUserRestrictions: &NewUserRestrictionsPatch{MaxDMsPerHour: &five},
	})

	// sibling leaves of the nested block survive a partial update
	assert.Equal(5, cfg.NewUserRestrictions.MaxDMsPerHour)
	assert.Equal(1, cfg.NewUserRestrictions.MaxPostsPerDay)
	assert.Equal(3, cfg.NewUserRestrictions.AccountAgeThresholdDays)
	assert.Equal(50, cfg.MaxDMsPerHour)

	hundred := 100
	cfg = eng.UpdateConfig(ConfigPatch{MaxDMsPerHour: &hundred})
	assert.Equal(100, cfg.MaxDMsPerHour)
	assert.Equal(5, cfg.NewUserRestrictions.MaxDMsPerHour)

	// GetConfig returns a copy; mutating it does not affect the engine
	snap := eng.GetConfig()
	snap.MaxPostsPerDay = 999
	assert.Equal(10, eng.GetConfig().MaxPostsPerDay)
}

func TestAppealIDFormat(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engineTestFixture()

	before := time.Now().UnixMilli()
	id, err := eng.SubmitAppeal(ctx, "user1", "reason")
	assert.NoError(err)
	after := time.Now().UnixMilli()

	var ms int64
	var user string
	n, err := fmt.Sscanf(id, "appeal_%d_%s", &ms, &user)
	assert.NoError(err)
	assert.Equal(2, n)
	assert.Equal("user1", user)
	assert.GreaterOrEqual(ms, before)
	assert.LessOrEqual(ms, after)
}
