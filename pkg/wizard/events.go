package wizard

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/buildwise/buildwise/pkg/parts"
)

// Stage names the configurator phase an event came from.
type Stage string

const (
	StageAllocate  Stage = "allocate"
	StageSelect    Stage = "select"
	StageDowngrade Stage = "downgrade"
	StageFill      Stage = "fill"
	StageValidate  Stage = "validate"
)

// Event is one observation appended by a stage.
type Event struct {
	RequestID string         `json:"request_id"`
	Stage     Stage          `json:"stage"`
	Category  parts.Category `json:"category,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// EventSink receives events. Implementations must be safe for concurrent use:
// categories are selected in parallel.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of what was recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of one stage and category. An empty
// category matches all.
func (r *Recorder) Filter(stage Stage, cat parts.Category) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Stage == stage && (cat == "" || e.Category == cat) {
			out = append(out, e)
		}
	}
	return out
}

// LogSink writes events to a logrus logger at debug level.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Emit(e Event) {
	if s.Logger == nil {
		return
	}
	fields := logrus.Fields{
		"request_id": e.RequestID,
		"stage":      e.Stage,
	}
	if e.Category != "" {
		fields["category"] = e.Category
	}
	for k, v := range e.Fields {
		fields[k] = v
	}
	s.Logger.WithFields(fields).Debug(e.Message)
}

// MultiSink fans events out to every member.
type MultiSink []EventSink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}
