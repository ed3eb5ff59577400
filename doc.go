// Package warden provides rate limiting and spam moderation for the Kingdom
// Collective apps.
//
// The engine combines three concerns that share per-user state: time-bucketed
// rate limiting for DMs, posts, comments, and likes; stateless spam
// classification over content plus a repeat-content check against the user's
// flagged history; and a moderation ledger of shadowban state and appeals.
//
// Backing state lives behind small store interfaces (countstore, flagstore,
// modstore, cachestore), each with an in-memory implementation for tests and
// single-node deployments, and a Redis implementation for anything shared.
//
// Admission comes in two shapes. CanSendDM/CanCreatePost are non-committing
// reads so a client can preview "remaining" without spending a slot; paired
// with RecordDM/RecordPost they form the advisory two-phase flow, which by
// construction can overrun a cap under concurrency. TryConsumeDM/
// TryConsumePost perform the check and increment atomically and are what
// enforcing callers should use.
package warden
