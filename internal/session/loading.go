package session

import (
	"time"

	"consoled/internal/catalog"
)

// warmStages is the fixed label schedule shown while a model warms. Real
// completion is gated on the gateway load call, not on this simulation.
var warmStages = []string{
	"Allocating VRAM",
	"Loading weights",
	"Initializing runtime",
	"Warming caches",
}

const warmStageReady = "Ready"

// advanceWarmStages drives the progress simulation for one activation.
// Progress tops out at 90 until the load call actually resolves.
func (c *Controller) advanceWarmStages(gen int) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.WarmStageTick)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}
		c.mu.Lock()
		if c.loadGen != gen || c.status != StatusWarming {
			c.mu.Unlock()
			return
		}
		if c.loadingProgress < 90 {
			c.loadingProgress += 6
			if c.loadingProgress > 90 {
				c.loadingProgress = 90
			}
		}
		idx := c.loadingProgress * len(warmStages) / 100
		if idx >= len(warmStages) {
			idx = len(warmStages) - 1
		}
		c.loadingStage = warmStages[idx]
		c.mu.Unlock()
	}
}

// loadModel issues the gateway load calls for one activation and commits the
// warming -> running (or warming -> idle on failure) transition.
func (c *Controller) loadModel(gen int, modelID string) {
	defer c.wg.Done()

	names, err := c.cfg.Catalog.Resolve(modelID)
	if err == nil {
		for _, name := range names {
			c.mu.Lock()
			resident := c.loaded[name]
			c.mu.Unlock()
			if resident {
				continue
			}
			if err = c.cfg.Gateway.LoadModel(c.ctx, name); err != nil {
				break
			}
			c.mu.Lock()
			c.loaded[name] = true
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadGen != gen {
		// A deactivation or clear superseded this load.
		return
	}

	if err != nil {
		c.setStatusLocked(StatusIdle)
		c.activeModel = catalog.ModelNone
		c.loadError = err.Error()
		c.loadingProgress = 0
		c.loadingStage = ""
		loadFailuresTotal.Inc()
		c.pub.Publish(Event{Name: EventLoadError, Model: modelID, Fields: map[string]any{"error": err.Error()}})
		c.log.Warn().Err(err).Str("model", modelID).Msg("model load failed")
		// A queued switch still deserves its turn.
		if next := c.pending; next != "" {
			c.pending = ""
			c.beginActivationLocked(next)
		}
		return
	}

	c.setStatusLocked(StatusRunning)
	c.loadingProgress = 100
	c.loadingStage = warmStageReady
	dur := time.Since(c.loadingStartedAt).Seconds()
	c.loadingDuration = &dur
	loadDurationSeconds.Observe(dur)
	c.pub.Publish(Event{Name: EventRunning, Model: modelID, Fields: map[string]any{"load_seconds": dur}})
	c.log.Info().Str("model", modelID).Float64("load_seconds", dur).Msg("model running")
}
