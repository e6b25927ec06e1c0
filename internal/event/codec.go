package event

import (
	"encoding/json"
	"fmt"
)

// Decode unmarshals a single event from its flat JSON form, dispatching on
// the type discriminant. It performs no schema validation beyond what
// encoding/json enforces; use Parse for untrusted bytes.
func Decode(data []byte) (Event, error) {
	var peek struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, &ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("malformed event JSON: %v", err),
			Code:    ErrMalformedJSON,
		}
	}

	target := newByType(peek.Type)
	if target == nil {
		return nil, &ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("unknown event type %q", peek.Type),
			Code:    ErrUnknownType,
		}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return nil, &ValidationError{
			Field:   string(peek.Type),
			Message: fmt.Sprintf("decoding event: %v", err),
			Code:    ErrMalformedJSON,
		}
	}
	return target, nil
}

// Encode marshals an event to its flat JSON form.
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", e.Kind(), err)
	}
	return data, nil
}

// newByType returns a zero value of the concrete variant for t, or nil for
// unknown types.
func newByType(t Type) Event {
	switch t {
	case TypeSessionStarted:
		return &SessionStarted{}
	case TypeSessionResumed:
		return &SessionResumed{}
	case TypeLensActivated:
		return &LensActivated{}
	case TypeQuerySubmitted:
		return &QuerySubmitted{}
	case TypeResponseCompleted:
		return &ResponseCompleted{}
	case TypeForkSelected:
		return &ForkSelected{}
	case TypePivotTriggered:
		return &PivotTriggered{}
	case TypeHubEntered:
		return &HubEntered{}
	case TypeJourneyStarted:
		return &JourneyStarted{}
	case TypeJourneyAdvanced:
		return &JourneyAdvanced{}
	case TypeJourneyCompleted:
		return &JourneyCompleted{}
	case TypeInsightCaptured:
		return &InsightCaptured{}
	case TypeTopicExplored:
		return &TopicExplored{}
	case TypeMomentSurfaced:
		return &MomentSurfaced{}
	case TypeMomentResolved:
		return &MomentResolved{}
	default:
		return nil
	}
}

// List is a JSON-ordered sequence of events. Unmarshaling dispatches each
// element on its type discriminant.
type List []Event

// MarshalJSON encodes a nil list as an empty array so the log's wire shape
// never carries JSON null.
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Event(l))
}

// UnmarshalJSON decodes a JSON array of flat event objects.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding event list: %w", err)
	}

	events := make(List, 0, len(raw))
	for i, item := range raw {
		e, err := Decode(item)
		if err != nil {
			return fmt.Errorf("event list index %d: %w", i, err)
		}
		events = append(events, e)
	}
	*l = events
	return nil
}
