// Package migration upgrades legacy v2 cumulative metrics into the v3 event
// log.
//
// The upgrade runs once, at load time: if the current storage key has no
// valid log but the legacy key holds v2 metrics, each v2 record becomes a
// cumulative event stamped with the sentinel session id "migrated", and the
// result is verified against the source before it is persisted.
package migration

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/eventlog"
	"github.com/roach88/grove/internal/telemetry"
)

const (
	// MigratedSessionID marks events carried over from v2 records, which
	// have no session attribution of their own.
	MigratedSessionID = "migrated"

	// LegacyMetricsKey is the storage key v2 metrics persist under.
	LegacyMetricsKey = "grove-cumulative-metrics"
)

// IsCumulativeMetricsV2 reports whether raw looks like a v2 metrics
// document: version 2 plus the three record arrays.
func IsCumulativeMetricsV2(raw []byte) bool {
	var probe struct {
		Version            *int             `json:"version"`
		JourneyCompletions *json.RawMessage `json:"journeyCompletions"`
		TopicExplorations  *json.RawMessage `json:"topicExplorations"`
		SproutCaptures     *json.RawMessage `json:"sproutCaptures"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Version != nil && *probe.Version == 2 &&
		probe.JourneyCompletions != nil &&
		probe.TopicExplorations != nil &&
		probe.SproutCaptures != nil
}

// IsEventLogV3 reports whether raw looks like a v3 event log: version 3
// plus the session and cumulative event containers.
func IsEventLogV3(raw []byte) bool {
	var probe struct {
		Version          *int             `json:"version"`
		SessionEvents    *json.RawMessage `json:"sessionEvents"`
		CumulativeEvents *json.RawMessage `json:"cumulativeEvents"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Version != nil && *probe.Version == 3 &&
		probe.SessionEvents != nil &&
		probe.CumulativeEvents != nil
}

// ParseLegacy decodes a v2 metrics document after checking its shape.
func ParseLegacy(raw []byte) (*telemetry.CumulativeMetricsV2, error) {
	if !IsCumulativeMetricsV2(raw) {
		return nil, fmt.Errorf("not a v2 cumulative metrics document")
	}

	var v2 telemetry.CumulativeMetricsV2
	if err := json.Unmarshal(raw, &v2); err != nil {
		return nil, fmt.Errorf("decoding v2 metrics: %w", err)
	}
	return &v2, nil
}

// FromCumulativeMetricsV2 builds a v3 log from v2 metrics. The log gets a
// fresh current session id from ids; migrated events keep their original
// timestamps and are attributed to MigratedSessionID. Session count and
// last session timestamp carry over unchanged. Records missing their own
// field id inherit the document's, since old writers did not always stamp
// it per record.
func FromCumulativeMetricsV2(v2 *telemetry.CumulativeMetricsV2, ids eventlog.IDSource) *eventlog.Log {
	journeys := make([]*event.JourneyCompleted, 0, len(v2.JourneyCompletions))
	for _, jc := range v2.JourneyCompletions {
		journeys = append(journeys, &event.JourneyCompleted{
			Envelope: event.Envelope{
				FieldID:   recordFieldID(jc.FieldID, v2),
				Timestamp: jc.Timestamp,
				Type:      event.TypeJourneyCompleted,
				SessionID: MigratedSessionID,
			},
			JourneyID:        jc.JourneyID,
			DurationMs:       jc.DurationMs,
			WaypointsVisited: jc.WaypointsVisited,
		})
	}

	topics := make([]*event.TopicExplored, 0, len(v2.TopicExplorations))
	for _, te := range v2.TopicExplorations {
		topics = append(topics, &event.TopicExplored{
			Envelope: event.Envelope{
				FieldID:   recordFieldID(te.FieldID, v2),
				Timestamp: te.Timestamp,
				Type:      event.TypeTopicExplored,
				SessionID: MigratedSessionID,
			},
			TopicID:      te.TopicID,
			HubID:        te.HubID,
			QueryTrigger: te.QueryTrigger,
		})
	}

	insights := make([]*event.InsightCaptured, 0, len(v2.SproutCaptures))
	for _, sc := range v2.SproutCaptures {
		insights = append(insights, &event.InsightCaptured{
			Envelope: event.Envelope{
				FieldID:   recordFieldID(sc.FieldID, v2),
				Timestamp: sc.Timestamp,
				Type:      event.TypeInsightCaptured,
				SessionID: MigratedSessionID,
			},
			SproutID:  sc.SproutID,
			JourneyID: sc.JourneyID,
			HubID:     sc.HubID,
		})
	}

	return eventlog.New(
		eventlog.WithFieldID(recordFieldID(v2.FieldID, v2)),
		eventlog.WithSessionID(ids.NewSessionID()),
		eventlog.WithSessionCount(v2.SessionCount),
		eventlog.WithLastSessionAt(v2.LastSessionAt),
		eventlog.WithCumulativeEvents(eventlog.CumulativeEvents{
			JourneyCompletions: journeys,
			TopicExplorations:  topics,
			InsightCaptures:    insights,
		}),
	)
}

// recordFieldID resolves a v2 record's field id, falling back to the
// document field and then the default.
func recordFieldID(id string, v2 *telemetry.CumulativeMetricsV2) string {
	if id != "" {
		return id
	}
	if v2.FieldID != "" {
		return v2.FieldID
	}
	return eventlog.DefaultFieldID
}

// Verify checks that a migrated log accounts for every v2 record: the three
// bucket sizes, the session count, and the last session timestamp must all
// match the source. The log must also satisfy the v3 schema, so a migration
// that would be rejected on the next load never verifies.
func Verify(v2 *telemetry.CumulativeMetricsV2, l *eventlog.Log) bool {
	if len(l.CumulativeEvents.JourneyCompletions) != len(v2.JourneyCompletions) ||
		len(l.CumulativeEvents.TopicExplorations) != len(v2.TopicExplorations) ||
		len(l.CumulativeEvents.InsightCaptures) != len(v2.SproutCaptures) ||
		l.SessionCount != v2.SessionCount ||
		l.LastSessionAt != v2.LastSessionAt {
		return false
	}

	data, err := l.Encode()
	if err != nil {
		return false
	}
	return event.ValidateLog(data) == nil
}
