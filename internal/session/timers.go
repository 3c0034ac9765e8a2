package session

import "time"

// timerLoop enforces the idle-sleep and session-countdown policies. Both
// anchor on lastActivityAt, so recording activity resets them together.
func (c *Controller) timerLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.TimerTick)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.status != StatusRunning {
			c.mu.Unlock()
			continue
		}
		model := c.activeModel
		idleFor := time.Since(c.lastActivityAt)
		threshold := c.cfg.IdleTimeout
		if c.kioskOpen {
			threshold = c.cfg.KioskIdleTimeout
		}
		idleExpired := idleFor >= threshold
		sessionExpired := c.cfg.SessionLimit > 0 && idleFor >= c.cfg.SessionLimit
		c.mu.Unlock()

		switch {
		case idleExpired:
			timeoutsTotal.WithLabelValues("idle").Inc()
			c.pub.Publish(Event{Name: EventIdleTimeout, Model: model})
			c.log.Info().Str("model", model).Dur("idle_for", idleFor).Msg("idle timeout")
			c.deactivate("idle_timeout")
		case sessionExpired:
			timeoutsTotal.WithLabelValues("session").Inc()
			c.pub.Publish(Event{Name: EventSessionTimeout, Model: model})
			c.log.Info().Str("model", model).Msg("session timeout")
			c.deactivate("session_timeout")
		}
	}
}

// pullLoop polls the gateway's pull-status endpoint while the controller is
// alive, surfacing download progress as a separate session field.
func (c *Controller) pullLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.PullPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}

		ps, err := c.cfg.Gateway.PullStatus(c.ctx)
		if err != nil {
			// Poll again next tick; a flaky gateway must not spam logs.
			c.log.Debug().Err(err).Msg("pull-status poll failed")
			continue
		}
		c.mu.Lock()
		c.pullingModel = ps.Model
		c.pullProgress = ps.Progress
		c.mu.Unlock()
	}
}
