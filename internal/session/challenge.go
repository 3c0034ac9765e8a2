package session

import (
	"context"

	"github.com/google/uuid"

	"consoled/internal/kiosk"
	"consoled/pkg/types"
)

// SetChallenge records the challenge selection and dispatches the prompt to
// the active model (both pair members when dual is active). A completion
// failure is surfaced in place of output and never touches the model
// lifecycle. challengeID may be empty for a plain custom prompt.
func (c *Controller) SetChallenge(ctx context.Context, challengeID, prompt string) (types.ModelOutput, error) {
	var out types.ModelOutput
	if challengeID != "" && !kiosk.IsChallenge(challengeID) {
		return out, ErrUnknownChallenge(challengeID)
	}

	c.mu.Lock()
	if c.status != StatusRunning {
		c.mu.Unlock()
		return out, ErrNoActiveModel()
	}
	c.recordActivityLocked()
	if c.challengeID != challengeID {
		// New challenge: the previous output no longer applies.
		c.output = nil
	}
	c.challengeID = challengeID
	model := c.activeModel
	names, err := c.cfg.Catalog.Resolve(model)
	temperature, maxTokens := c.cfg.Temperature, c.cfg.MaxTokens
	c.mu.Unlock()
	if err != nil {
		return out, err
	}

	reqID := uuid.New().String()[:8]
	messages := []types.ChatMessage{
		{Role: "system", Content: kiosk.SystemPrompt(challengeID)},
		{Role: "user", Content: prompt},
	}

	for i, name := range names {
		content, usage, cerr := c.cfg.Gateway.ChatCompletion(ctx, name, messages, temperature, maxTokens)
		if cerr != nil {
			c.log.Warn().Err(cerr).Str("request_id", reqID).Str("gateway_model", name).Msg("completion failed")
			out = types.ModelOutput{Error: cerr.Error()}
			break
		}
		if i == 0 {
			out.Reasoned = content
		} else {
			out.Explained = content
		}
		ev := c.log.Info().Str("request_id", reqID).Str("gateway_model", name)
		if usage != nil {
			ev = ev.Int("total_tokens", usage.TotalTokens)
		}
		ev.Msg("completion ok")
	}

	c.mu.Lock()
	if out.Error != "" {
		c.output = &types.ModelOutput{Error: out.Error}
	} else {
		c.output = &types.ModelOutput{Reasoned: out.Reasoned, Explained: out.Explained}
	}
	c.mu.Unlock()
	return out, nil
}
