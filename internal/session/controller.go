// Package session owns the demo model session: which model is active, its
// warm-up/run/cool-down phase, the serialized pending switch request, and
// the idle/session timers that reclaim an abandoned demo.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"consoled/internal/catalog"
	"consoled/internal/gateway"
	"consoled/pkg/types"
)

// Gateway is the slice of the gateway client the controller needs.
type Gateway interface {
	ChatCompletion(ctx context.Context, model string, messages []types.ChatMessage, temperature float64, maxTokens int) (string, *gateway.Usage, error)
	LoadModel(ctx context.Context, name string) error
	UnloadModel(ctx context.Context, name string) error
	LoadedModels(ctx context.Context) ([]string, error)
	PullStatus(ctx context.Context) (gateway.PullStatus, error)
}

// Defaults applied when corresponding Config fields are unset.
const (
	defaultIdleTimeout      = 2 * time.Minute
	defaultKioskIdleTimeout = 10 * time.Minute
	defaultPullPoll         = 2 * time.Second
	defaultWarmStageTick    = 400 * time.Millisecond
	defaultTimerTick        = time.Second
	defaultTemperature      = 0.7
	defaultMaxTokens        = 1024
)

// Config encapsulates all tunables for Controller construction.
type Config struct {
	Catalog   *catalog.Catalog
	Gateway   Gateway
	Publisher EventPublisher
	Logger    zerolog.Logger

	// Idle-sleep thresholds: kiosk closed / kiosk open.
	IdleTimeout      time.Duration
	KioskIdleTimeout time.Duration
	// Demo session countdown; zero disables it.
	SessionLimit time.Duration

	PullPollInterval time.Duration
	WarmStageTick    time.Duration
	TimerTick        time.Duration

	// Completion parameters forwarded to the gateway.
	Temperature float64
	MaxTokens   int
}

// Controller arbitrates model activation against the one-model-at-a-time
// constraint. All exported methods are safe for concurrent use; state is
// mutated only here, UI surfaces read snapshots.
type Controller struct {
	mu  sync.Mutex
	cfg Config
	log zerolog.Logger
	pub EventPublisher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	activeModel      string // demo id, catalog.ModelNone when idle
	status           Status
	pending          string
	loadingProgress  int
	loadingStage     string
	loadingStartedAt time.Time
	loadingDuration  *float64 // seconds, set once running
	loadError        string
	lastActivityAt   time.Time
	kioskOpen        bool
	pullingModel     string
	pullProgress     int
	challengeID      string
	output           *types.ModelOutput

	// loadGen invalidates in-flight load/unload work after a manual
	// deactivation or clear; stale goroutines compare and drop out.
	loadGen int

	// Gateway model names already resident, so startup never re-issues a
	// redundant load.
	loaded map[string]bool
}

// New constructs a Controller. Call Start to launch the background timers
// and Close to stop them.
func New(cfg Config) *Controller {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.New(nil)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.KioskIdleTimeout <= 0 {
		cfg.KioskIdleTimeout = defaultKioskIdleTimeout
	}
	if cfg.PullPollInterval <= 0 {
		cfg.PullPollInterval = defaultPullPoll
	}
	if cfg.WarmStageTick <= 0 {
		cfg.WarmStageTick = defaultWarmStageTick
	}
	if cfg.TimerTick <= 0 {
		cfg.TimerTick = defaultTimerTick
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	ctx, cancel := context.WithCancel(context.Background())
	observeState(StatusIdle)
	return &Controller{
		cfg:            cfg,
		log:            cfg.Logger,
		pub:            cfg.Publisher,
		ctx:            ctx,
		cancel:         cancel,
		activeModel:    catalog.ModelNone,
		status:         StatusIdle,
		lastActivityAt: time.Now(),
		loaded:         make(map[string]bool),
	}
}

// Start checks which models the gateway already has resident and launches
// the idle/session timer loop and pull-status polling.
func (c *Controller) Start() {
	c.CheckLoadedModels(c.ctx)
	c.wg.Add(2)
	go c.timerLoop()
	go c.pullLoop()
}

// Close stops all background work. In-flight gateway calls are abandoned,
// not cancelled mid-flight by anything the UI can observe.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

// ActivateModel requests that modelID become the active model.
//
// From idle it begins warming immediately. While another model is warming or
// running the request is stored as the single pending switch (last write
// wins). Requesting the already-active model is a no-op.
func (c *Controller) ActivateModel(modelID string) error {
	if !c.cfg.Catalog.Has(modelID) {
		return catalog.ErrModelNotFound(modelID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordActivityLocked()

	if c.activeModel == modelID && c.status != StatusIdle && c.status != StatusCooling {
		return nil
	}
	if c.status == StatusIdle {
		c.beginActivationLocked(modelID)
		return nil
	}

	// Another model holds the slot: queue the switch, overwriting any
	// earlier pending request.
	c.pending = modelID
	c.pub.Publish(Event{Name: EventPendingSet, Model: modelID})
	c.log.Info().Str("model", modelID).Str("active", c.activeModel).Msg("model switch queued")
	return nil
}

// beginActivationLocked starts warming modelID. Caller holds the lock and
// has verified status == idle.
func (c *Controller) beginActivationLocked(modelID string) {
	c.activeModel = modelID
	c.setStatusLocked(StatusWarming)
	c.loadError = ""
	c.loadingProgress = 0
	c.loadingStage = warmStages[0]
	c.loadingStartedAt = time.Now()
	c.loadingDuration = nil
	c.loadGen++
	gen := c.loadGen

	activationsTotal.WithLabelValues(modelID).Inc()
	c.pub.Publish(Event{Name: EventWarming, Model: modelID})
	c.log.Info().Str("model", modelID).Msg("activation started")

	c.wg.Add(2)
	go c.advanceWarmStages(gen)
	go c.loadModel(gen, modelID)
}

// CancelPendingRequest clears a queued switch without touching the running
// model. No-op when nothing is pending.
func (c *Controller) CancelPendingRequest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == "" {
		return
	}
	cancelled := c.pending
	c.pending = ""
	c.pub.Publish(Event{Name: EventPendingCancelled, Model: cancelled})
	c.log.Info().Str("model", cancelled).Msg("pending switch cancelled")
}

// DeactivateModelManually transitions the active model through cooling to
// idle and asks the gateway to unload it (best-effort). A pending request is
// promoted once the slot is free.
func (c *Controller) DeactivateModelManually() {
	c.deactivate("manual")
}

// deactivate implements the shared manual/timer deactivation path.
func (c *Controller) deactivate(reason string) {
	c.mu.Lock()
	if c.status != StatusRunning && c.status != StatusWarming {
		c.mu.Unlock()
		return
	}
	model := c.activeModel
	names, _ := c.cfg.Catalog.Resolve(model)
	c.setStatusLocked(StatusCooling)
	c.loadGen++ // invalidate any in-flight load
	c.pub.Publish(Event{Name: EventCooling, Model: model, Fields: map[string]any{"reason": reason}})
	c.log.Info().Str("model", model).Str("reason", reason).Msg("deactivating")
	c.mu.Unlock()

	c.wg.Add(1)
	go c.unloadAndSettle(model, names)
}

// unloadAndSettle issues best-effort unloads, settles the session to idle and
// promotes a pending switch if one is queued.
func (c *Controller) unloadAndSettle(model string, names []string) {
	defer c.wg.Done()
	for _, name := range names {
		if err := c.cfg.Gateway.UnloadModel(c.ctx, name); err != nil {
			// The runtime's own idle policy reclaims the model anyway.
			c.log.Warn().Err(err).Str("gateway_model", name).Msg("unload failed")
		} else {
			c.mu.Lock()
			delete(c.loaded, name)
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	if c.status != StatusCooling {
		c.mu.Unlock()
		return
	}
	c.setStatusLocked(StatusIdle)
	c.activeModel = catalog.ModelNone
	c.loadingProgress = 0
	c.loadingStage = ""
	c.loadingDuration = nil
	c.pub.Publish(Event{Name: EventIdle, Model: model})
	next := c.pending
	c.pending = ""
	if next != "" {
		c.beginActivationLocked(next)
	}
	c.mu.Unlock()
}

// ClearSession fully resets the session; used when the kiosk is closed with
// intent to end the demo. Any resident model is unloaded best-effort.
func (c *Controller) ClearSession() {
	c.mu.Lock()
	model := c.activeModel
	var names []string
	if model != catalog.ModelNone {
		names, _ = c.cfg.Catalog.Resolve(model)
	}
	c.activeModel = catalog.ModelNone
	c.setStatusLocked(StatusIdle)
	c.pending = ""
	c.loadingProgress = 0
	c.loadingStage = ""
	c.loadingDuration = nil
	c.loadError = ""
	c.challengeID = ""
	c.output = nil
	c.kioskOpen = false
	c.loadGen++
	c.pub.Publish(Event{Name: EventSessionCleared, Model: model})
	c.mu.Unlock()

	if len(names) > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for _, name := range names {
				if err := c.cfg.Gateway.UnloadModel(c.ctx, name); err != nil {
					c.log.Warn().Err(err).Str("gateway_model", name).Msg("unload failed")
				}
			}
		}()
	}
}

// RecordActivity stamps the activity clock. Called on every prompt
// submission, chip click or kiosk-open event; resets both timeout timers.
func (c *Controller) RecordActivity() {
	c.mu.Lock()
	c.recordActivityLocked()
	c.mu.Unlock()
}

// SetKioskOpen flips the kiosk flag (which selects the idle threshold) and
// counts as activity.
func (c *Controller) SetKioskOpen(open bool) {
	c.mu.Lock()
	c.kioskOpen = open
	c.recordActivityLocked()
	c.mu.Unlock()
}

func (c *Controller) recordActivityLocked() {
	c.lastActivityAt = time.Now()
}

// setStatusLocked assigns the lifecycle state and keeps the state gauge in
// step. Caller holds the lock.
func (c *Controller) setStatusLocked(s Status) {
	c.status = s
	observeState(s)
}

// CheckLoadedModels queries the gateway for already-resident models so a
// redundant load is skipped. Gateway failures are logged only.
func (c *Controller) CheckLoadedModels(ctx context.Context) {
	names, err := c.cfg.Gateway.LoadedModels(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("loaded-models query failed")
		return
	}
	c.mu.Lock()
	for _, n := range names {
		c.loaded[n] = true
	}
	c.mu.Unlock()
}
