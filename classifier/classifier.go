package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/kingdom-collective/warden/cachestore"
	"github.com/kingdom-collective/warden/flagstore"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Action string

const (
	ActionFlag      Action = "flag"
	ActionModerate  Action = "moderate"
	ActionShadowban Action = "shadowban"
)

type PatternType string

const (
	TypeLink     PatternType = "link"
	TypeText     PatternType = "text"
	TypeBehavior PatternType = "behavior"
)

// Sentinel recorded in Decision.Patterns when repeat-content detection fires.
// Not an entry in the static pattern table.
const RepeatedContentPattern = "repeated_content"

// How many of the user's most recently flagged entries are consulted for
// repeat-content detection.
const repeatWindow = 10

var severityRank = map[Severity]int{SeverityLow: 0, SeverityMedium: 1, SeverityHigh: 2}
var actionRank = map[Action]int{ActionFlag: 0, ActionModerate: 1, ActionShadowban: 2}

func maxSeverity(a, b Severity) Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

func maxAction(a, b Action) Action {
	if actionRank[b] > actionRank[a] {
		return b
	}
	return a
}

// Pattern is one static classification rule: either a compiled regex over the
// raw content, or a behavior check (token frequencies, caps ratio, and similar
// things RE2 can not express).
type Pattern struct {
	Name     string
	Type     PatternType
	Severity Severity
	Action   Action

	re    *regexp.Regexp
	check func(content string) bool
}

func RegexPattern(name string, typ PatternType, sev Severity, act Action, expr string) Pattern {
	return Pattern{
		Name:     name,
		Type:     typ,
		Severity: sev,
		Action:   act,
		re:       regexp.MustCompile(expr),
	}
}

func BehaviorPattern(name string, sev Severity, act Action, check func(content string) bool) Pattern {
	return Pattern{
		Name:     name,
		Type:     TypeBehavior,
		Severity: sev,
		Action:   act,
		check:    check,
	}
}

func (p Pattern) Matches(content string) bool {
	if p.re != nil {
		return p.re.MatchString(content)
	}
	if p.check != nil {
		return p.check(content)
	}
	return false
}

// String returns the pattern's reporting form: the regex source for regex
// patterns, otherwise the pattern name.
func (p Pattern) String() string {
	if p.re != nil {
		return p.re.String()
	}
	return p.Name
}

// Decision is the outcome of a spam check. Severity and action only ever
// escalate as more patterns match within one call; they never downgrade.
type Decision struct {
	IsSpam   bool     `json:"isSpam"`
	Severity Severity `json:"severity"`
	Action   Action   `json:"action"`
	Patterns []string `json:"patterns"`
	Reason   string   `json:"reason"`
}

// Classifier matches content against a static pattern table, and against the
// user's recently flagged content. Checks are side-effect-free: the classifier
// reports what should happen, callers apply the returned action (and append to
// the flagged history) explicitly.
type Classifier struct {
	patterns []Pattern
	history  flagstore.FlagStore
	// optional cache of the content-only (pattern table) match portion
	cache cachestore.CacheStore
}

func New(history flagstore.FlagStore, patterns []Pattern) *Classifier {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Classifier{
		patterns: patterns,
		history:  history,
	}
}

// WithCache memoizes the pattern-table portion of checks. Safe because that
// portion is a pure function of content; the repeat-content check always runs
// live against the flagged history.
func (c *Classifier) WithCache(cache cachestore.CacheStore) *Classifier {
	c.cache = cache
	return c
}

// partial is the cacheable, content-only slice of a decision
type partial struct {
	Severity Severity `json:"severity"`
	Action   Action   `json:"action"`
	Patterns []string `json:"patterns"`
}

func contentCacheKey(content string) string {
	h := murmur3.Sum64([]byte(content))
	return strconv.FormatUint(h, 16)
}

func (c *Classifier) matchPatterns(ctx context.Context, content string) partial {
	key := contentCacheKey(content)
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, "spamcheck", key); err == nil && raw != "" {
			var p partial
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return p
			}
		}
	}

	out := partial{
		Severity: SeverityLow,
		Action:   ActionFlag,
		Patterns: []string{},
	}
	for _, p := range c.patterns {
		if !p.Matches(content) {
			continue
		}
		out.Patterns = append(out.Patterns, p.String())
		out.Severity = maxSeverity(out.Severity, p.Severity)
		out.Action = maxAction(out.Action, p.Action)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = c.cache.Set(ctx, "spamcheck", key, string(raw))
		}
	}
	return out
}

// Check classifies content for the given user. The flagged-content history is
// read but never written; calling Check twice with identical inputs yields
// identical output.
func (c *Classifier) Check(ctx context.Context, content, userID string) (Decision, error) {
	p := c.matchPatterns(ctx, content)

	recent, err := c.history.Recent(ctx, userID, repeatWindow)
	if err != nil {
		return Decision{}, fmt.Errorf("reading flagged history: %w", err)
	}
	norm := normalizeContent(content)
	for _, prev := range recent {
		if normalizeContent(prev) == norm {
			p.Severity = SeverityHigh
			p.Action = ActionShadowban
			p.Patterns = append(p.Patterns, RepeatedContentPattern)
			break
		}
	}

	dec := Decision{
		IsSpam:   len(p.Patterns) > 0,
		Severity: p.Severity,
		Action:   p.Action,
		Patterns: p.Patterns,
	}
	if dec.IsSpam {
		dec.Reason = "Content flagged for: " + strings.Join(dec.Patterns, ", ")
	}
	return dec, nil
}
