package session

import (
	"time"

	"consoled/pkg/types"
)

// Snapshot returns a read-only projection of the session for the API layer.
func (c *Controller) Snapshot() types.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := types.SessionStatus{
		ActiveModel:     c.activeModel,
		Status:          string(c.status),
		PendingRequest:  c.pending,
		LoadingProgress: c.loadingProgress,
		LoadingStage:    c.loadingStage,
		LoadError:       c.loadError,
		LastActivityAt:  c.lastActivityAt.Unix(),
		KioskOpen:       c.kioskOpen,
		PullingModel:    c.pullingModel,
		PullProgress:    c.pullProgress,
		ChallengeID:     c.challengeID,
	}
	if !c.loadingStartedAt.IsZero() && c.status == StatusWarming {
		st.LoadingStartedAt = c.loadingStartedAt.Unix()
	}
	if c.loadingDuration != nil {
		d := *c.loadingDuration
		st.LoadingDuration = &d
	}
	if c.output != nil {
		o := *c.output
		st.Output = &o
	}
	if c.cfg.SessionLimit > 0 && c.status == StatusRunning {
		remaining := int64((c.cfg.SessionLimit - time.Since(c.lastActivityAt)) / time.Second)
		if remaining < 0 {
			remaining = 0
		}
		st.SessionRemaining = &remaining
	}
	return st
}
