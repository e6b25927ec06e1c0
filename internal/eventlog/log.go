package eventlog

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/grove/internal/event"
)

const (
	// Version is the current log schema version.
	Version = 3

	// DefaultFieldID scopes events when no field is given.
	DefaultFieldID = "grove"

	// StorageKey is the local storage key the log persists under.
	StorageKey = "grove-event-log"
)

// Log is the versioned event store: session-scoped events plus cumulative
// buckets that survive session rollover.
type Log struct {
	Version          int              `json:"version"`
	FieldID          string           `json:"fieldId"`
	CurrentSessionID string           `json:"currentSessionId"`
	SessionEvents    event.List       `json:"sessionEvents"`
	CumulativeEvents CumulativeEvents `json:"cumulativeEvents"`
	SessionCount     int              `json:"sessionCount"`
	LastSessionAt    int64            `json:"lastSessionAt"`
}

// CumulativeEvents holds the three typed buckets persisted across sessions.
type CumulativeEvents struct {
	JourneyCompletions []*event.JourneyCompleted `json:"journeyCompletions"`
	TopicExplorations  []*event.TopicExplored    `json:"topicExplorations"`
	InsightCaptures    []*event.InsightCaptured  `json:"insightCaptures"`
}

// IDSource generates session identifiers. The production implementation
// returns time-ordered UUIDs; tests substitute a fixed sequence.
type IDSource interface {
	NewSessionID() string
}

type uuidSource struct{}

func (uuidSource) NewSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// UUIDSource is the default session id generator.
var UUIDSource IDSource = uuidSource{}

// NewSessionID returns a fresh time-ordered session identifier.
func NewSessionID() string {
	return UUIDSource.NewSessionID()
}

// Option configures New.
type Option func(*Log)

// WithFieldID overrides the default field identifier.
func WithFieldID(fieldID string) Option {
	return func(l *Log) { l.FieldID = fieldID }
}

// WithSessionID sets the initial session identifier instead of generating one.
func WithSessionID(sessionID string) Option {
	return func(l *Log) { l.CurrentSessionID = sessionID }
}

// WithSessionCount sets the initial session count.
func WithSessionCount(n int) Option {
	return func(l *Log) { l.SessionCount = n }
}

// WithLastSessionAt sets the last session timestamp (epoch ms).
func WithLastSessionAt(ts int64) Option {
	return func(l *Log) { l.LastSessionAt = ts }
}

// WithCumulativeEvents seeds the cumulative buckets, e.g. from a migration.
func WithCumulativeEvents(ce CumulativeEvents) Option {
	return func(l *Log) { l.CumulativeEvents = ce }
}

// New creates a version 3 log. Defaults: field "grove", a generated session
// id, session count 1, and lastSessionAt stamped from the system clock.
func New(opts ...Option) *Log {
	l := &Log{
		Version:          Version,
		FieldID:          DefaultFieldID,
		CurrentSessionID: NewSessionID(),
		SessionEvents:    event.List{},
		CumulativeEvents: CumulativeEvents{
			JourneyCompletions: []*event.JourneyCompleted{},
			TopicExplorations:  []*event.TopicExplored{},
			InsightCaptures:    []*event.InsightCaptured{},
		},
		SessionCount:  1,
		LastSessionAt: millis(SystemClock.Now()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append returns a new log with e added to the session events. Cumulative
// event types are mirrored into their bucket as well. The receiver is not
// modified.
func (l *Log) Append(e event.Event) *Log {
	next := *l

	next.SessionEvents = make(event.List, len(l.SessionEvents), len(l.SessionEvents)+1)
	copy(next.SessionEvents, l.SessionEvents)
	next.SessionEvents = append(next.SessionEvents, e)

	switch ev := e.(type) {
	case *event.JourneyCompleted:
		next.CumulativeEvents.JourneyCompletions = appendCopy(l.CumulativeEvents.JourneyCompletions, ev)
	case *event.TopicExplored:
		next.CumulativeEvents.TopicExplorations = appendCopy(l.CumulativeEvents.TopicExplorations, ev)
	case *event.InsightCaptured:
		next.CumulativeEvents.InsightCaptures = appendCopy(l.CumulativeEvents.InsightCaptures, ev)
	}

	return &next
}

// ClearSession returns a new log with the session events emptied. Cumulative
// buckets, session id, and counters are unchanged.
func (l *Log) ClearSession() *Log {
	next := *l
	next.SessionEvents = event.List{}
	return &next
}

// StartNewSession returns a new log for a fresh session: empty session
// events, a session id drawn from ids, incremented session count, and
// lastSessionAt stamped from clock.
func (l *Log) StartNewSession(clock Clock, ids IDSource) *Log {
	next := *l
	next.SessionEvents = event.List{}
	next.CurrentSessionID = ids.NewSessionID()
	next.SessionCount = l.SessionCount + 1
	next.LastSessionAt = millis(clock.Now())
	return &next
}

// NewEnvelope stamps an envelope for an event of type t: field and session
// from the log, timestamp from clock.
func (l *Log) NewEnvelope(t event.Type, clock Clock) event.Envelope {
	return event.Envelope{
		FieldID:   l.FieldID,
		Timestamp: millis(clock.Now()),
		Type:      t,
		SessionID: l.CurrentSessionID,
	}
}

// EventsByType returns the session events of type t, in log order.
func (l *Log) EventsByType(t event.Type) []event.Event {
	var out []event.Event
	for _, e := range l.SessionEvents {
		if e.Kind() == t {
			out = append(out, e)
		}
	}
	return out
}

// LastEventOfType returns the most recent session event of type t, or nil.
func (l *Log) LastEventOfType(t event.Type) event.Event {
	for i := len(l.SessionEvents) - 1; i >= 0; i-- {
		if l.SessionEvents[i].Kind() == t {
			return l.SessionEvents[i]
		}
	}
	return nil
}

// SessionEventCount returns the number of session-scoped events.
func (l *Log) SessionEventCount() int {
	return len(l.SessionEvents)
}

// CumulativeEventCount returns the total size of the cumulative buckets.
func (l *Log) CumulativeEventCount() int {
	return len(l.CumulativeEvents.JourneyCompletions) +
		len(l.CumulativeEvents.TopicExplorations) +
		len(l.CumulativeEvents.InsightCaptures)
}

// Encode marshals the log to its JSON wire form.
func (l *Log) Encode() ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encoding event log: %w", err)
	}
	return data, nil
}

// Parse validates untrusted bytes against the v3 log schema and decodes them.
func Parse(data []byte) (*Log, error) {
	if err := event.ValidateLog(data); err != nil {
		return nil, err
	}

	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decoding event log: %w", err)
	}
	l.normalize()
	return &l, nil
}

// normalize replaces nil collections so encode output is stable.
func (l *Log) normalize() {
	if l.SessionEvents == nil {
		l.SessionEvents = event.List{}
	}
	if l.CumulativeEvents.JourneyCompletions == nil {
		l.CumulativeEvents.JourneyCompletions = []*event.JourneyCompleted{}
	}
	if l.CumulativeEvents.TopicExplorations == nil {
		l.CumulativeEvents.TopicExplorations = []*event.TopicExplored{}
	}
	if l.CumulativeEvents.InsightCaptures == nil {
		l.CumulativeEvents.InsightCaptures = []*event.InsightCaptured{}
	}
}

func appendCopy[T any](src []T, v T) []T {
	out := make([]T, len(src), len(src)+1)
	copy(out, src)
	return append(out, v)
}
