package warden

import (
	"log/slog"
	"sync"

	"github.com/kingdom-collective/warden/classifier"
	"github.com/kingdom-collective/warden/countstore"
	"github.com/kingdom-collective/warden/flagstore"
	"github.com/kingdom-collective/warden/modstore"
)

// Engine is the rate-limiting and moderation runtime shared by the Kingdom
// apps: admission checks and recording for user actions, spam classification,
// shadowban state, and the appeal workflow. Construct one per composition
// root; there is no package-level instance.
//
// Policy outcomes (denied admission, spam verdicts) are always data, never
// errors. Methods only return an error when a backing store fails.
type Engine struct {
	Logger     *slog.Logger
	Counters   countstore.CountStore
	Flagged    flagstore.FlagStore
	Mods       modstore.ModStore
	Classifier *classifier.Classifier

	cfgLock sync.RWMutex
	cfg     Config
}

func NewEngine(logger *slog.Logger, counters countstore.CountStore, flagged flagstore.FlagStore, mods modstore.ModStore, cls *classifier.Classifier) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Logger:     logger,
		Counters:   counters,
		Flagged:    flagged,
		Mods:       mods,
		Classifier: cls,
		cfg:        DefaultConfig(),
	}
}

// GetConfig returns a copy of the current configuration.
func (eng *Engine) GetConfig() Config {
	eng.cfgLock.RLock()
	defer eng.cfgLock.RUnlock()
	return eng.cfg
}

// UpdateConfig applies a partial update. Unset fields keep their current
// values, including inside the nested new-user block.
func (eng *Engine) UpdateConfig(patch ConfigPatch) Config {
	eng.cfgLock.Lock()
	defer eng.cfgLock.Unlock()
	eng.cfg = eng.cfg.merge(patch)
	eng.Logger.Info("rate limit config updated", "config", eng.cfg)
	return eng.cfg
}
