package provisioning

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Observer defines the interface for structured observability during a run.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a stage
	Progress(phase string, current, total int)

	// Section starts a new block of the transcript.
	Section(title string)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured pipeline event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Stage name (e.g., "deploy-rg", "configure")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventPhaseStarted indicates a stage has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a stage completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseWarning indicates a stage completed with a non-fatal error.
	EventPhaseWarning EventType = "phase.warning"
	// EventPhaseSkipped indicates a stage did not run.
	EventPhaseSkipped EventType = "phase.skipped"
	// EventPhaseFailed indicates a stage failed and the run aborts.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceFailed indicates resource creation failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#3b82f6")).
	MarginTop(1)

// ConsoleObserver implements Observer on top of charmbracelet/log.
type ConsoleObserver struct {
	logger        *log.Logger
	out           io.Writer
	contextFields map[string]string
}

// NewConsoleObserver creates an observer writing to out (stderr when nil).
// Verbose output adds timestamps and debug events.
func NewConsoleObserver(out io.Writer, verbose bool) *ConsoleObserver {
	if out == nil {
		out = os.Stderr
	}
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &ConsoleObserver{
		logger: log.NewWithOptions(out, log.Options{
			Level:           level,
			ReportTimestamp: verbose,
		}),
		out:           out,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.logger.Info(fmt.Sprintf(format, v...), o.keyvals(nil)...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	kv := []any{}
	if event.Phase != "" {
		kv = append(kv, "stage", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, o.keyvals(event.Fields)...)

	switch event.Type {
	case EventPhaseFailed, EventResourceFailed:
		o.logger.Error(event.Message, kv...)
	case EventPhaseWarning, EventValidationWarning:
		o.logger.Warn(event.Message, kv...)
	case EventProgress, EventPhaseStarted:
		o.logger.Debug(event.Message, kv...)
	default:
		o.logger.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	kv := []any{"stage", phase, "current", current, "total", total}
	if total > 0 {
		kv = append(kv, "percent", (current*100)/total)
	}
	o.logger.Info("progress", kv...)
}

// Section implements Observer.
func (o *ConsoleObserver) Section(title string) {
	fmt.Fprintln(o.out, sectionStyle.Render("==> "+title))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	merged := maps.Clone(o.contextFields)
	maps.Copy(merged, fields)
	return &ConsoleObserver{
		logger:        o.logger,
		out:           o.out,
		contextFields: merged,
	}
}

// keyvals merges the context fields with extra, extra taking precedence,
// in key order.
func (o *ConsoleObserver) keyvals(extra map[string]string) []any {
	merged := maps.Clone(o.contextFields)
	maps.Copy(merged, extra)
	kv := make([]any, 0, 2*len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		kv = append(kv, k, merged[k])
	}
	return kv
}

// Helper functions for common events

// LogPhaseStart logs a stage start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a stage completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseWarning logs a stage that finished with a non-fatal error.
func LogPhaseWarning(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseWarning,
		Phase:   phase,
		Message: fmt.Sprintf("completed with warnings: %v", err),
	})
}

// LogPhaseSkipped logs a stage that did not run.
func LogPhaseSkipped(observer Observer, phase string, reason error) {
	observer.Event(Event{
		Type:    EventPhaseSkipped,
		Phase:   phase,
		Message: reason.Error(),
	})
}

// LogPhaseFailed logs a stage failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceFailed logs a resource that could not be created or applied.
func LogResourceFailed(observer Observer, phase, resourceType, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s failed: %v", resourceType, err),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}
