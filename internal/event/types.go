package event

// Type is the discriminant carried by every event.
type Type string

// Event type discriminants.
const (
	TypeSessionStarted    Type = "SESSION_STARTED"
	TypeSessionResumed    Type = "SESSION_RESUMED"
	TypeLensActivated     Type = "LENS_ACTIVATED"
	TypeQuerySubmitted    Type = "QUERY_SUBMITTED"
	TypeResponseCompleted Type = "RESPONSE_COMPLETED"
	TypeForkSelected      Type = "FORK_SELECTED"
	TypePivotTriggered    Type = "PIVOT_TRIGGERED"
	TypeHubEntered        Type = "HUB_ENTERED"
	TypeJourneyStarted    Type = "JOURNEY_STARTED"
	TypeJourneyAdvanced   Type = "JOURNEY_ADVANCED"
	TypeJourneyCompleted  Type = "JOURNEY_COMPLETED"
	TypeInsightCaptured   Type = "INSIGHT_CAPTURED"
	TypeTopicExplored     Type = "TOPIC_EXPLORED"
	TypeMomentSurfaced    Type = "MOMENT_SURFACED"
	TypeMomentResolved    Type = "MOMENT_RESOLVED"
)

// Types lists every known discriminant in declaration order.
var Types = []Type{
	TypeSessionStarted,
	TypeSessionResumed,
	TypeLensActivated,
	TypeQuerySubmitted,
	TypeResponseCompleted,
	TypeForkSelected,
	TypePivotTriggered,
	TypeHubEntered,
	TypeJourneyStarted,
	TypeJourneyAdvanced,
	TypeJourneyCompleted,
	TypeInsightCaptured,
	TypeTopicExplored,
	TypeMomentSurfaced,
	TypeMomentResolved,
}

// Lens activation sources.
const (
	LensSourceURL          = "url"
	LensSourceSelection    = "selection"
	LensSourceSystem       = "system"
	LensSourceLocalStorage = "localStorage"
)

// Query intents and fork types share one closed vocabulary.
const (
	IntentDeepDive  = "deep_dive"
	IntentPivot     = "pivot"
	IntentApply     = "apply"
	IntentChallenge = "challenge"
)

// Hub entry sources.
const (
	HubSourceQuery      = "query"
	HubSourceNavigation = "navigation"
	HubSourcePivot      = "pivot"
	HubSourceJourney    = "journey"
)

// Moment resolutions.
const (
	ResolutionActioned  = "actioned"
	ResolutionDismissed = "dismissed"
)

// Envelope carries the fields common to all variants. Variants embed it,
// so each event marshals to a single flat JSON object.
type Envelope struct {
	FieldID   string `json:"fieldId"`
	Timestamp int64  `json:"timestamp"` // unix epoch milliseconds
	Type      Type   `json:"type"`
	SessionID string `json:"sessionId"`
}

// Kind returns the event's type discriminant.
func (e Envelope) Kind() Type { return e.Type }

// Meta returns the envelope itself, satisfying Event for all variants.
func (e Envelope) Meta() Envelope { return e }

// Event is implemented by all variants via their embedded Envelope.
type Event interface {
	Kind() Type
	Meta() Envelope
}

// SessionStarted marks the beginning of a session.
type SessionStarted struct {
	Envelope
	IsReturning       bool   `json:"isReturning"`
	PreviousSessionID string `json:"previousSessionId,omitempty"`
}

// SessionResumed marks a session picked up after a gap in activity.
type SessionResumed struct {
	Envelope
	PreviousSessionID        string `json:"previousSessionId"`
	MinutesSinceLastActivity int    `json:"minutesSinceLastActivity"`
}

// LensActivated records a perspective change.
type LensActivated struct {
	Envelope
	LensID   string `json:"lensId"`
	Source   string `json:"source"`
	IsCustom bool   `json:"isCustom"`
}

// QuerySubmitted records a user query entering the stream.
type QuerySubmitted struct {
	Envelope
	QueryID          string `json:"queryId"`
	Content          string `json:"content"`
	Intent           string `json:"intent,omitempty"`
	SourceResponseID string `json:"sourceResponseId,omitempty"`
}

// ResponseCompleted records a finished response to a prior query.
type ResponseCompleted struct {
	Envelope
	ResponseID    string `json:"responseId"`
	QueryID       string `json:"queryId"`
	HubID         string `json:"hubId,omitempty"`
	HasNavigation bool   `json:"hasNavigation"`
	SpanCount     int    `json:"spanCount"`
}

// ForkSelected records the user choosing a follow-up fork on a response.
type ForkSelected struct {
	Envelope
	ForkID     string `json:"forkId"`
	ForkType   string `json:"forkType"`
	Label      string `json:"label"`
	ResponseID string `json:"responseId"`
}

// PivotTriggered records a concept pivot away from the current thread.
type PivotTriggered struct {
	Envelope
	ConceptID  string `json:"conceptId"`
	SourceText string `json:"sourceText"`
	ResponseID string `json:"responseId"`
}

// HubEntered records arrival at a topic hub.
type HubEntered struct {
	Envelope
	HubID  string `json:"hubId"`
	Source string `json:"source"`
}

// JourneyStarted records the start of a guided journey.
type JourneyStarted struct {
	Envelope
	JourneyID     string `json:"journeyId"`
	LensID        string `json:"lensId"`
	WaypointCount int    `json:"waypointCount"`
}

// JourneyAdvanced records progress to a waypoint within a journey.
type JourneyAdvanced struct {
	Envelope
	JourneyID  string `json:"journeyId"`
	WaypointID string `json:"waypointId"`
	Position   int    `json:"position"`
}

// JourneyCompleted records a finished journey. Cumulative.
type JourneyCompleted struct {
	Envelope
	JourneyID        string `json:"journeyId"`
	DurationMs       int64  `json:"durationMs,omitempty"`
	WaypointsVisited int    `json:"waypointsVisited,omitempty"`
}

// InsightCaptured records a sprout capture. Cumulative.
type InsightCaptured struct {
	Envelope
	SproutID  string `json:"sproutId"`
	JourneyID string `json:"journeyId,omitempty"`
	HubID     string `json:"hubId,omitempty"`
}

// TopicExplored records exploration of a topic at a hub. Cumulative.
type TopicExplored struct {
	Envelope
	TopicID      string `json:"topicId"`
	HubID        string `json:"hubId"`
	QueryTrigger string `json:"queryTrigger,omitempty"`
}

// MomentSurfaced records a contextual moment shown to the user.
type MomentSurfaced struct {
	Envelope
	MomentID string `json:"momentId"`
	Surface  string `json:"surface"`
	Priority int    `json:"priority"`
}

// MomentResolved records the user acting on or dismissing a moment.
type MomentResolved struct {
	Envelope
	MomentID   string `json:"momentId"`
	Resolution string `json:"resolution"`
	ActionID   string `json:"actionId,omitempty"`
	ActionType string `json:"actionType,omitempty"`
}

// IsSession reports whether t is a session lifecycle type.
func IsSession(t Type) bool {
	return t == TypeSessionStarted || t == TypeSessionResumed
}

// IsCumulative reports whether events of type t are mirrored into the
// cumulative buckets in addition to the session slice.
func IsCumulative(t Type) bool {
	return t == TypeJourneyCompleted || t == TypeTopicExplored || t == TypeInsightCaptured
}
