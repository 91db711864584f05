package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Logger is the minimal logging interface phases use for free-form output.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines structured observability during the run.
type Observer interface {
	Logger

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns a new Observer with additional context fields.
	WithFields(fields map[string]string) Observer
}

// Event represents a structured pipeline event.
type Event struct {
	Type      EventType
	Phase     string            // Phase name (identity, trust, roles, verify)
	Message   string            // Human-readable message
	Item      string            // Binding or resource name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventPhaseStarted indicates a pipeline phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a pipeline phase completed.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a pipeline phase failed hard.
	EventPhaseFailed EventType = "phase.failed"

	// EventBindingCreated indicates a binding was created.
	EventBindingCreated EventType = "binding.created"
	// EventBindingExists indicates an identical binding already existed.
	EventBindingExists EventType = "binding.exists"
	// EventBindingFailed indicates binding creation failed.
	EventBindingFailed EventType = "binding.failed"
	// EventBindingSkipped indicates a binding was not attempted.
	EventBindingSkipped EventType = "binding.skipped"

	// EventResourceCreated indicates a fallback resource was provisioned.
	EventResourceCreated EventType = "resource.created"
	// EventSimulationMode indicates the run degraded to simulation mode.
	EventSimulationMode EventType = "simulation.mode"

	// EventVerifyPassed indicates the verification probe passed.
	EventVerifyPassed EventType = "verify.passed"
	// EventVerifyFailed indicates the probe failed after retries.
	EventVerifyFailed EventType = "verify.failed"
	// EventVerifySkipped indicates the probe was not applicable.
	EventVerifySkipped EventType = "verify.skipped"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements the Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	log.Print(formatEvent(event))
}

// WithFields implements the Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &ConsoleObserver{contextFields: newFields}
}

func formatEvent(event Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", event.Type)
	if event.Phase != "" {
		fmt.Fprintf(&b, " [%s]", event.Phase)
	}
	if event.Item != "" {
		fmt.Fprintf(&b, " %s:", event.Item)
	}
	if event.Message != "" {
		fmt.Fprintf(&b, " %s", event.Message)
	}
	for k, v := range event.Fields {
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

// NopObserver discards all output. Used in tests.
type NopObserver struct{}

// Printf implements the Logger interface.
func (NopObserver) Printf(string, ...interface{}) {}

// Event implements the Observer interface.
func (NopObserver) Event(Event) {}

// WithFields implements the Observer interface.
func (n NopObserver) WithFields(map[string]string) Observer { return n }
