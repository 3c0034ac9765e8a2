package types

// ActivateRequest asks the controller to make a demo model the active one.
type ActivateRequest struct {
	// Demo-facing model id to activate.
	// example: llama3-70b
	Model string `json:"model" example:"llama3-70b"`
}

// ActivityRequest stamps user activity and optionally flips the kiosk flag.
type ActivityRequest struct {
	// When non-nil, records whether the guided kiosk is currently open.
	// example: true
	KioskOpen *bool `json:"kiosk_open,omitempty" example:"true"`
}

// ChallengeRequest dispatches a demo challenge prompt.
type ChallengeRequest struct {
	// Challenge identifier (reasoning, explanation, compare, summarize).
	// example: reasoning
	ChallengeID string `json:"challenge_id" example:"reasoning"`
	// Prompt text. For canned chips this is the chip text; for custom
	// input it is the raw user prompt and must pass validation.
	Prompt string `json:"prompt"`
	// Index of the canned chip that was clicked, or null for custom input.
	// example: 0
	PromptIndex *int `json:"prompt_index,omitempty" example:"0"`
}

// ChallengeInfo describes one guided-demo challenge for the kiosk UI.
type ChallengeInfo struct {
	// example: reasoning
	ID string `json:"id" example:"reasoning"`
	// example: Step-by-step reasoning
	Title       string   `json:"title" example:"Step-by-step reasoning"`
	Description string   `json:"description,omitempty"`
	// Canned example prompts shown as chips.
	Prompts []string `json:"prompts"`
}

// ModelOutput carries the result of the last chat completion.
type ModelOutput struct {
	// Output of the reasoning-oriented model (or the single active model).
	Reasoned string `json:"reasoned,omitempty"`
	// Output of the explanation-oriented model when the dual pair is active.
	Explained string `json:"explained,omitempty"`
	// Error message shown in place of output when the completion failed.
	Error string `json:"error,omitempty"`
}

// SessionStatus is the read-only projection of the model session returned
// by GET /v1/session.
type SessionStatus struct {
	// Active demo model id, or "none".
	// example: deepseek-r1-70b
	ActiveModel string `json:"active_model" example:"deepseek-r1-70b"`
	// Lifecycle status: idle, warming, running or cooling.
	// example: running
	Status string `json:"status" example:"running"`
	// Queued model switch, empty when none is pending.
	PendingRequest string `json:"pending_request,omitempty"`
	// Warm-up progress, 0-100.
	// example: 60
	LoadingProgress int `json:"loading_progress" example:"60"`
	// Free-text warm-up stage label.
	// example: Loading weights
	LoadingStage string `json:"loading_stage,omitempty" example:"Loading weights"`
	// Time the current warm-up started (unix seconds), 0 when idle.
	LoadingStartedAt int64 `json:"loading_started_at,omitempty"`
	// Seconds the last successful warm-up took; null until running.
	LoadingDuration *float64 `json:"loading_duration,omitempty"`
	// User-facing load failure, cleared on the next activation.
	LoadError string `json:"load_error,omitempty"`
	// Last user interaction (unix seconds).
	LastActivityAt int64 `json:"last_activity_at"`
	// Whether the guided kiosk is open (affects the idle policy).
	KioskOpen bool `json:"kiosk_open"`
	// Gateway model name currently being pulled, empty when none.
	PullingModel string `json:"pulling_model,omitempty"`
	// Pull progress, 0-100, meaningful only while PullingModel is set.
	PullProgress int `json:"pull_progress,omitempty"`
	// Seconds left on the demo session countdown; null when disabled.
	SessionRemaining *int64 `json:"session_remaining,omitempty"`
	// Selected challenge id, empty when none.
	ChallengeID string `json:"challenge_id,omitempty"`
	// Result of the last completion, null until one finishes.
	Output *ModelOutput `json:"output,omitempty"`
}

// SystemMetrics mirrors the gateway's system metrics payload, with a flag
// marking locally simulated fallback values.
type SystemMetrics struct {
	// CPU utilization percentage.
	// example: 37.5
	CPUPercent float64 `json:"cpu_percent" example:"37.5"`
	// Memory utilization percentage.
	MemoryPercent float64 `json:"memory_percent"`
	// Disk utilization percentage of the root volume.
	DiskPercent float64 `json:"disk_percent"`
	// GPU utilization percentage.
	GPUPercent float64 `json:"gpu_percent"`
	// GPU memory utilization percentage.
	GPUMemoryPercent float64 `json:"gpu_memory_percent"`
	// True when the gateway was unreachable and values were sampled or
	// simulated locally.
	Simulated bool `json:"simulated"`
}

// Preference is one persisted UI preference entry (panel position, open
// state and the like, never domain state).
type Preference struct {
	// example: control-panel.position
	Key string `json:"key" example:"control-panel.position"`
	// Opaque JSON-encoded value owned by the front-end.
	Value string `json:"value"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
