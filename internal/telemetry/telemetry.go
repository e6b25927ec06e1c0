// Package telemetry defines the legacy version 2 cumulative metrics shapes.
//
// These types exist for migration and for projecting the v3 event log back
// into the format older consumers read. New code records events instead.
package telemetry

// CumulativeMetricsV2 is the pre-event-log metrics document, persisted under
// the legacy storage key.
type CumulativeMetricsV2 struct {
	Version            int                 `json:"version"`
	FieldID            string              `json:"fieldId"`
	JourneyCompletions []JourneyCompletion `json:"journeyCompletions"`
	TopicExplorations  []TopicExploration  `json:"topicExplorations"`
	SproutCaptures     []SproutCapture     `json:"sproutCaptures"`
	SessionCount       int                 `json:"sessionCount"`
	LastSessionAt      int64               `json:"lastSessionAt"`
}

// JourneyCompletion is a v2 journey completion record.
type JourneyCompletion struct {
	FieldID          string `json:"fieldId"`
	Timestamp        int64  `json:"timestamp"`
	JourneyID        string `json:"journeyId"`
	DurationMs       int64  `json:"durationMs,omitempty"`
	WaypointsVisited int    `json:"waypointsVisited,omitempty"`
}

// TopicExploration is a v2 topic exploration record.
type TopicExploration struct {
	FieldID      string `json:"fieldId"`
	Timestamp    int64  `json:"timestamp"`
	TopicID      string `json:"topicId"`
	HubID        string `json:"hubId"`
	QueryTrigger string `json:"queryTrigger,omitempty"`
}

// SproutCapture is a v2 sprout capture record. The event log calls these
// insight captures.
type SproutCapture struct {
	FieldID   string `json:"fieldId"`
	Timestamp int64  `json:"timestamp"`
	SproutID  string `json:"sproutId"`
	JourneyID string `json:"journeyId,omitempty"`
	HubID     string `json:"hubId,omitempty"`
}
