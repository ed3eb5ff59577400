package countstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	PeriodDay  = "day"
	PeriodHour = "hour"
)

// Action categories tracked by the store. Admission checks only consult
// CategoryDM and CategoryPost; comment and like counters are recorded but
// currently unenforced.
const (
	CategoryDM      = "dm"
	CategoryPost    = "post"
	CategoryComment = "comment"
	CategoryLike    = "like"
)

// CountStore tracks per-user action counters, partitioned in to fixed
// wall-clock buckets (hour or day granularity). Absent buckets read as zero;
// implementations never error on missing keys.
type CountStore interface {
	GetCount(ctx context.Context, category, userID, period string) (int, error)
	Increment(ctx context.Context, category, userID, period string) error
	// TryIncrement atomically increments the current bucket only if the
	// resulting count would not exceed limit. Returns whether the increment
	// happened, plus the bucket count after the call.
	TryIncrement(ctx context.Context, category, userID, period string, limit int) (bool, int, error)
	// TotalCount sums every retained bucket for the category and user.
	TotalCount(ctx context.Context, category, userID string) (int, error)
	// TrimBefore removes bucket entries older than the cutoff for the given
	// categories, returning how many buckets were removed.
	TrimBefore(ctx context.Context, cutoff time.Time, categories []string) (int, error)
}

// PeriodFor returns the bucket granularity used for a category: posts are
// capped per day, everything else per hour.
func PeriodFor(category string) string {
	if category == CategoryPost {
		return PeriodDay
	}
	return PeriodHour
}

func periodBucket(category, userID, period string) string {
	switch period {
	case PeriodDay:
		t := time.Now().UTC().Format(time.DateOnly)
		return fmt.Sprintf("%s/%s/%s", category, userID, t)
	case PeriodHour:
		t := time.Now().UTC().Format(time.RFC3339)[0:13]
		return fmt.Sprintf("%s/%s/%s", category, userID, t)
	default:
		slog.Warn("unhandled counter period", "period", period)
		return fmt.Sprintf("%s/%s", category, userID)
	}
}

// bucketTime parses the trailing time component of a bucket key. Returns the
// zero time if the key has no parseable bucket suffix.
func bucketTime(key string) time.Time {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return time.Time{}
	}
	suffix := key[idx+1:]
	if t, err := time.Parse("2006-01-02T15", suffix); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, suffix); err == nil {
		return t
	}
	return time.Time{}
}
