package provisioning

import (
	"fmt"
	"maps"
	"sync"
)

// MockObserver is an Observer for tests that records everything it is
// given. Observers derived with WithFields share the recording.
type MockObserver struct {
	rec    *recording
	fields map[string]string
}

type recording struct {
	mu       sync.Mutex
	events   []Event
	messages []string
	sections []string
}

// NewMockObserver creates an empty recording observer.
func NewMockObserver() *MockObserver {
	return &MockObserver{rec: &recording{}, fields: map[string]string{}}
}

// Printf implements Logger.
func (m *MockObserver) Printf(format string, v ...any) {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.messages = append(m.rec.messages, fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (m *MockObserver) Event(event Event) {
	fields := maps.Clone(m.fields)
	maps.Copy(fields, event.Fields)
	event.Fields = fields
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.events = append(m.rec.events, event)
}

// Progress implements Observer.
func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: "progress",
		Fields:  map[string]string{"current": fmt.Sprint(current), "total": fmt.Sprint(total)},
	})
}

// Section implements Observer.
func (m *MockObserver) Section(title string) {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.sections = append(m.rec.sections, title)
}

// WithFields implements Observer.
func (m *MockObserver) WithFields(fields map[string]string) Observer {
	merged := maps.Clone(m.fields)
	maps.Copy(merged, fields)
	return &MockObserver{rec: m.rec, fields: merged}
}

// Events returns the recorded events.
func (m *MockObserver) Events() []Event {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	return append([]Event(nil), m.rec.events...)
}

// EventsOfType returns the recorded events of type t.
func (m *MockObserver) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the recorded Printf lines.
func (m *MockObserver) Messages() []string {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	return append([]string(nil), m.rec.messages...)
}

// Sections returns the recorded section titles.
func (m *MockObserver) Sections() []string {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	return append([]string(nil), m.rec.sections...)
}
