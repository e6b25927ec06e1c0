package projection

import (
	"github.com/roach88/grove/internal/eventlog"
	"github.com/roach88/grove/internal/telemetry"
)

// ToCumulativeMetricsV2 renders the cumulative buckets back into the legacy
// v2 shape, the inverse of migration. Consumers still reading the old format
// see current data without knowing about the event log.
func ToCumulativeMetricsV2(l *eventlog.Log) *telemetry.CumulativeMetricsV2 {
	journeys := make([]telemetry.JourneyCompletion, 0, len(l.CumulativeEvents.JourneyCompletions))
	for _, jc := range l.CumulativeEvents.JourneyCompletions {
		journeys = append(journeys, telemetry.JourneyCompletion{
			FieldID:          jc.FieldID,
			Timestamp:        jc.Timestamp,
			JourneyID:        jc.JourneyID,
			DurationMs:       jc.DurationMs,
			WaypointsVisited: jc.WaypointsVisited,
		})
	}

	topics := make([]telemetry.TopicExploration, 0, len(l.CumulativeEvents.TopicExplorations))
	for _, te := range l.CumulativeEvents.TopicExplorations {
		topics = append(topics, telemetry.TopicExploration{
			FieldID:      te.FieldID,
			Timestamp:    te.Timestamp,
			TopicID:      te.TopicID,
			HubID:        te.HubID,
			QueryTrigger: te.QueryTrigger,
		})
	}

	sprouts := make([]telemetry.SproutCapture, 0, len(l.CumulativeEvents.InsightCaptures))
	for _, ic := range l.CumulativeEvents.InsightCaptures {
		sprouts = append(sprouts, telemetry.SproutCapture{
			FieldID:   ic.FieldID,
			Timestamp: ic.Timestamp,
			SproutID:  ic.SproutID,
			JourneyID: ic.JourneyID,
			HubID:     ic.HubID,
		})
	}

	return &telemetry.CumulativeMetricsV2{
		Version:            2,
		FieldID:            l.FieldID,
		JourneyCompletions: journeys,
		TopicExplorations:  topics,
		SproutCaptures:     sprouts,
		SessionCount:       l.SessionCount,
		LastSessionAt:      l.LastSessionAt,
	}
}

// Computed aggregates counters over the cumulative buckets.
type Computed struct {
	JourneysCompleted     int `json:"journeysCompleted"`
	UniqueTopics          int `json:"uniqueTopics"`
	SproutsCaptured       int `json:"sproutsCaptured"`
	SessionCount          int `json:"sessionCount"`
	TotalCumulativeEvents int `json:"totalCumulativeEvents"`
}

// ComputedMetrics derives the aggregate counters from a log.
func ComputedMetrics(l *eventlog.Log) Computed {
	return Computed{
		JourneysCompleted:     JourneyCompletionCount(l),
		UniqueTopics:          len(UniqueTopicsExplored(l)),
		SproutsCaptured:       SproutCaptureCount(l),
		SessionCount:          l.SessionCount,
		TotalCumulativeEvents: l.CumulativeEventCount(),
	}
}

// JourneyCompletionCount counts completed journeys across all sessions.
func JourneyCompletionCount(l *eventlog.Log) int {
	return len(l.CumulativeEvents.JourneyCompletions)
}

// UniqueTopicsExplored returns topic ids deduplicated in first-seen order.
func UniqueTopicsExplored(l *eventlog.Log) []string {
	seen := make(map[string]bool, len(l.CumulativeEvents.TopicExplorations))
	var topics []string
	for _, te := range l.CumulativeEvents.TopicExplorations {
		if !seen[te.TopicID] {
			seen[te.TopicID] = true
			topics = append(topics, te.TopicID)
		}
	}
	return topics
}

// SproutCaptureCount counts insight captures across all sessions.
func SproutCaptureCount(l *eventlog.Log) int {
	return len(l.CumulativeEvents.InsightCaptures)
}
