package warden

// Config holds the global rate-limit caps. Comment and like caps are carried
// in config and recorded against, but no admission check currently consults
// them (pending a product decision on comment/like limiting).
type Config struct {
	MaxDMsPerHour      int                 `json:"maxDmsPerHour"`
	MaxPostsPerDay     int                 `json:"maxPostsPerDay"`
	MaxCommentsPerHour int                 `json:"maxCommentsPerHour"`
	MaxLikesPerHour    int                 `json:"maxLikesPerHour"`
	NewUserRestrictions NewUserRestrictions `json:"newUserRestrictions"`
}

// NewUserRestrictions are the stricter caps applied while an account is
// younger than the age threshold.
type NewUserRestrictions struct {
	MaxDMsPerHour           int `json:"maxDmsPerHour"`
	MaxPostsPerDay          int `json:"maxPostsPerDay"`
	AccountAgeThresholdDays int `json:"accountAgeThresholdDays"`
}

func DefaultConfig() Config {
	return Config{
		MaxDMsPerHour:      50,
		MaxPostsPerDay:     10,
		MaxCommentsPerHour: 30,
		MaxLikesPerHour:    100,
		NewUserRestrictions: NewUserRestrictions{
			MaxDMsPerHour:           3,
			MaxPostsPerDay:          1,
			AccountAgeThresholdDays: 3,
		},
	}
}

// ConfigPatch is a partial config update. Nil fields are left untouched; the
// nested new-user block merges per leaf rather than replacing wholesale.
type ConfigPatch struct {
	MaxDMsPerHour       *int                      `json:"maxDmsPerHour,omitempty"`
	MaxPostsPerDay      *int                      `json:"maxPostsPerDay,omitempty"`
	MaxCommentsPerHour  *int                      `json:"maxCommentsPerHour,omitempty"`
	MaxLikesPerHour     *int                      `json:"maxLikesPerHour,omitempty"`
	NewUserRestrictions *NewUserRestrictionsPatch `json:"newUserRestrictions,omitempty"`
}

type NewUserRestrictionsPatch struct {
	MaxDMsPerHour           *int `json:"maxDmsPerHour,omitempty"`
	MaxPostsPerDay          *int `json:"maxPostsPerDay,omitempty"`
	AccountAgeThresholdDays *int `json:"accountAgeThresholdDays,omitempty"`
}

func (c Config) merge(p ConfigPatch) Config {
	if p.MaxDMsPerHour != nil {
		c.MaxDMsPerHour = *p.MaxDMsPerHour
	}
	if p.MaxPostsPerDay != nil {
		c.MaxPostsPerDay = *p.MaxPostsPerDay
	}
	if p.MaxCommentsPerHour != nil {
		c.MaxCommentsPerHour = *p.MaxCommentsPerHour
	}
	if p.MaxLikesPerHour != nil {
		c.MaxLikesPerHour = *p.MaxLikesPerHour
	}
	if p.NewUserRestrictions != nil {
		if p.NewUserRestrictions.MaxDMsPerHour != nil {
			c.NewUserRestrictions.MaxDMsPerHour = *p.NewUserRestrictions.MaxDMsPerHour
		}
		if p.NewUserRestrictions.MaxPostsPerDay != nil {
			c.NewUserRestrictions.MaxPostsPerDay = *p.NewUserRestrictions.MaxPostsPerDay
		}
		if p.NewUserRestrictions.AccountAgeThresholdDays != nil {
			c.NewUserRestrictions.AccountAgeThresholdDays = *p.NewUserRestrictions.AccountAgeThresholdDays
		}
	}
	return c
}
