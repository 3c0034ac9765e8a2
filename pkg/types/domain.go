package types

// DemoModel represents a demo-facing model slot offered by the console.
type DemoModel struct {
	// Stable demo-facing identifier.
	// example: deepseek-r1-70b
	ID string `json:"id" example:"deepseek-r1-70b"`
	// Human-friendly display name.
	// example: DeepSeek R1 70B
	Name string `json:"name" example:"DeepSeek R1 70B"`
	// Gateway-facing model names this slot resolves to. The dual slot
	// fans out to two names; everything else maps to exactly one.
	// example: ["deepseek-r1:70b"]
	GatewayNames []string `json:"gateway_names" example:"[\"deepseek-r1:70b\"]"`
	// Optional short description shown on the selector card.
	Description string `json:"description,omitempty"`
}

// Asset is one entry of the gateway's asset/app/model registry.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ChatMessage is an OpenAI-style chat message.
type ChatMessage struct {
	// Role of the author (system, user, assistant).
	// example: user
	Role string `json:"role" example:"user"`
	// Message content.
	Content string `json:"content"`
}
