package session

// Status is the lifecycle state of the model session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusWarming Status = "warming"
	StatusRunning Status = "running"
	StatusCooling Status = "cooling"
)

// Event represents a session lifecycle event. Minimal and stable: name +
// demo model id and optional fields via key/values. This is the typed
// replacement for the original console's DOM-level event bus.
type Event struct {
	Name  string
	Model string
	Fields map[string]any
}

// Event names published by the controller.
const (
	EventWarming          = "warming"
	EventRunning          = "running"
	EventPendingSet       = "pending_set"
	EventPendingCancelled = "pending_cancelled"
	EventCooling          = "cooling"
	EventIdle             = "idle"
	EventLoadError        = "load_error"
	EventIdleTimeout      = "idle_timeout"
	EventSessionTimeout   = "session_timeout"
	EventSessionCleared   = "session_cleared"
)

// EventPublisher receives events from the controller. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
