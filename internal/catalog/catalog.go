package catalog

import (
	"consoled/pkg/types"
)

// Demo-facing model ids. These are what the console UI and API speak;
// the gateway never sees them directly.
const (
	ModelNone     = "none"
	ModelDeepSeek = "deepseek-r1-70b"
	ModelLlama3   = "llama3-70b"
	ModelDual     = "dual"
)

// Gateway-facing model names.
const (
	gatewayDeepSeek = "deepseek-r1:70b"
	gatewayLlama3   = "llama3:70b"
)

// Default returns the fixed demo catalog. The dual slot fans out to the
// DeepSeek/Llama pair and is never sent to the gateway as a single id.
func Default() []types.DemoModel {
	return []types.DemoModel{
		{
			ID:           ModelDeepSeek,
			Name:         "DeepSeek R1 70B",
			GatewayNames: []string{gatewayDeepSeek},
			Description:  "Reasoning-focused model with visible chain of thought.",
		},
		{
			ID:           ModelLlama3,
			Name:         "Llama 3 70B",
			GatewayNames: []string{gatewayLlama3},
			Description:  "General-purpose instruction model.",
		},
		{
			ID:           ModelDual,
			Name:         "Dual (DeepSeek + Llama 3)",
			GatewayNames: []string{gatewayDeepSeek, gatewayLlama3},
			Description:  "Both models side by side for comparison demos.",
		},
	}
}

// Catalog resolves demo model ids to gateway model names.
type Catalog struct {
	models []types.DemoModel
	byID   map[string]types.DemoModel
}

// New builds a catalog from the given models, or the default set when nil.
func New(models []types.DemoModel) *Catalog {
	if models == nil {
		models = Default()
	}
	byID := make(map[string]types.DemoModel, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	return &Catalog{models: models, byID: byID}
}

// List returns a copy of the catalog entries.
func (c *Catalog) List() []types.DemoModel {
	out := make([]types.DemoModel, len(c.models))
	copy(out, c.models)
	return out
}

// Resolve maps a demo id to its gateway model names.
func (c *Catalog) Resolve(demoID string) ([]string, error) {
	m, ok := c.byID[demoID]
	if !ok {
		return nil, ErrModelNotFound(demoID)
	}
	names := make([]string, len(m.GatewayNames))
	copy(names, m.GatewayNames)
	return names, nil
}

// Has reports whether the demo id exists in the catalog.
func (c *Catalog) Has(demoID string) bool {
	_, ok := c.byID[demoID]
	return ok
}
