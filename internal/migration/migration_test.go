package migration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/eventlog"
	"github.com/roach88/grove/internal/telemetry"
	"github.com/roach88/grove/internal/testutil"
)

const testMillis = 1704067200000 // 2024-01-01 00:00:00 UTC

func v2Metrics() *telemetry.CumulativeMetricsV2 {
	return &telemetry.CumulativeMetricsV2{
		Version: 2,
		FieldID: "grove",
		JourneyCompletions: []telemetry.JourneyCompletion{
			{
				FieldID:          "grove",
				Timestamp:        testMillis - 86400000,
				JourneyID:        "ghost-journey",
				DurationMs:       300000,
				WaypointsVisited: 5,
			},
			{
				FieldID:          "grove",
				Timestamp:        testMillis - 172800000,
				JourneyID:        "gardener-journey",
				DurationMs:       600000,
				WaypointsVisited: 8,
			},
		},
		TopicExplorations: []telemetry.TopicExploration{
			{
				FieldID:      "grove",
				Timestamp:    testMillis - 3600000,
				TopicID:      "ratchet-effect",
				HubID:        "ratchet-effect",
				QueryTrigger: "What is the ratchet effect?",
			},
		},
		SproutCaptures: []telemetry.SproutCapture{
			{
				FieldID:   "grove",
				Timestamp: testMillis - 7200000,
				SproutID:  "sprout-123",
				JourneyID: "ghost-journey",
				HubID:     "ratchet-effect",
			},
		},
		SessionCount:  5,
		LastSessionAt: testMillis - 3600000,
	}
}

func v3LogJSON() []byte {
	return []byte(`{
		"version": 3,
		"fieldId": "grove",
		"currentSessionId": "session-123",
		"sessionEvents": [],
		"cumulativeEvents": {
			"journeyCompletions": [],
			"topicExplorations": [],
			"insightCaptures": []
		},
		"sessionCount": 1,
		"lastSessionAt": 1704067200000
	}`)
}

func TestIsCumulativeMetricsV2(t *testing.T) {
	v2Raw, err := json.Marshal(v2Metrics())
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"valid v2", v2Raw, true},
		{"v3 log", v3LogJSON(), false},
		{"null", []byte(`null`), false},
		{"wrong version", []byte(`{"version":1,"journeyCompletions":[],"topicExplorations":[],"sproutCaptures":[]}`), false},
		{"missing record arrays", []byte(`{"version":2,"fieldId":"grove"}`), false},
		{"not JSON", []byte(`{`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCumulativeMetricsV2(tt.raw))
		})
	}
}

func TestIsEventLogV3(t *testing.T) {
	v2Raw, err := json.Marshal(v2Metrics())
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"valid v3", v3LogJSON(), true},
		{"v2 metrics", v2Raw, false},
		{"null", []byte(`null`), false},
		{"wrong version", []byte(`{"version":2,"sessionEvents":[],"cumulativeEvents":{}}`), false},
		{"missing containers", []byte(`{"version":3,"fieldId":"grove"}`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEventLogV3(tt.raw))
		})
	}
}

func TestParseLegacy(t *testing.T) {
	raw, err := json.Marshal(v2Metrics())
	require.NoError(t, err)

	v2, err := ParseLegacy(raw)
	require.NoError(t, err)
	assert.Equal(t, v2Metrics(), v2)
}

func TestParseLegacyRejectsNonV2(t *testing.T) {
	_, err := ParseLegacy(v3LogJSON())
	assert.Error(t, err)
}

func TestFromCumulativeMetricsV2(t *testing.T) {
	v2 := v2Metrics()
	ids := testutil.NewSequentialIDSource("migrated-run")
	l := FromCumulativeMetricsV2(v2, ids)

	assert.Equal(t, 3, l.Version)
	assert.Equal(t, "grove", l.FieldID)
	assert.Equal(t, "migrated-run-0001", l.CurrentSessionID)
	assert.NotEqual(t, MigratedSessionID, l.CurrentSessionID)
	assert.Empty(t, l.SessionEvents)

	require.Len(t, l.CumulativeEvents.JourneyCompletions, 2)
	first := l.CumulativeEvents.JourneyCompletions[0]
	assert.Equal(t, event.TypeJourneyCompleted, first.Kind())
	assert.Equal(t, MigratedSessionID, first.SessionID)
	assert.Equal(t, "ghost-journey", first.JourneyID)
	assert.Equal(t, int64(300000), first.DurationMs)
	assert.Equal(t, 5, first.WaypointsVisited)

	require.Len(t, l.CumulativeEvents.TopicExplorations, 1)
	topic := l.CumulativeEvents.TopicExplorations[0]
	assert.Equal(t, event.TypeTopicExplored, topic.Kind())
	assert.Equal(t, MigratedSessionID, topic.SessionID)
	assert.Equal(t, "ratchet-effect", topic.TopicID)
	assert.Equal(t, "ratchet-effect", topic.HubID)
	assert.Equal(t, "What is the ratchet effect?", topic.QueryTrigger)

	require.Len(t, l.CumulativeEvents.InsightCaptures, 1)
	insight := l.CumulativeEvents.InsightCaptures[0]
	assert.Equal(t, event.TypeInsightCaptured, insight.Kind())
	assert.Equal(t, MigratedSessionID, insight.SessionID)
	assert.Equal(t, "sprout-123", insight.SproutID)
	assert.Equal(t, "ghost-journey", insight.JourneyID)
	assert.Equal(t, "ratchet-effect", insight.HubID)

	assert.Equal(t, 5, l.SessionCount)
	assert.Equal(t, v2.LastSessionAt, l.LastSessionAt)
}

func TestFromCumulativeMetricsV2Empty(t *testing.T) {
	v2 := &telemetry.CumulativeMetricsV2{
		Version:            2,
		FieldID:            "grove",
		JourneyCompletions: []telemetry.JourneyCompletion{},
		TopicExplorations:  []telemetry.TopicExploration{},
		SproutCaptures:     []telemetry.SproutCapture{},
		SessionCount:       0,
		LastSessionAt:      testMillis,
	}

	l := FromCumulativeMetricsV2(v2, testutil.NewSequentialIDSource(""))

	assert.Empty(t, l.CumulativeEvents.JourneyCompletions)
	assert.Empty(t, l.CumulativeEvents.TopicExplorations)
	assert.Empty(t, l.CumulativeEvents.InsightCaptures)
}

func TestVerify(t *testing.T) {
	v2 := v2Metrics()
	ids := testutil.NewSequentialIDSource("")

	t.Run("valid migration", func(t *testing.T) {
		l := FromCumulativeMetricsV2(v2, ids)
		assert.True(t, Verify(v2, l))
	})

	t.Run("journey completion count differs", func(t *testing.T) {
		l := FromCumulativeMetricsV2(v2, ids)
		l.CumulativeEvents.JourneyCompletions = nil
		assert.False(t, Verify(v2, l))
	})

	t.Run("topic exploration count differs", func(t *testing.T) {
		l := FromCumulativeMetricsV2(v2, ids)
		l.CumulativeEvents.TopicExplorations = nil
		assert.False(t, Verify(v2, l))
	})

	t.Run("insight capture count differs", func(t *testing.T) {
		l := FromCumulativeMetricsV2(v2, ids)
		l.CumulativeEvents.InsightCaptures = nil
		assert.False(t, Verify(v2, l))
	})

	t.Run("session count differs", func(t *testing.T) {
		l := FromCumulativeMetricsV2(v2, ids)
		l.SessionCount = 999
		assert.False(t, Verify(v2, l))
	})

	t.Run("lastSessionAt differs", func(t *testing.T) {
		l := FromCumulativeMetricsV2(v2, ids)
		l.LastSessionAt = 0
		assert.False(t, Verify(v2, l))
	})
}

func TestFromCumulativeMetricsV2InheritsDocFieldID(t *testing.T) {
	v2 := v2Metrics()
	v2.JourneyCompletions[0].FieldID = ""
	v2.TopicExplorations[0].FieldID = ""
	v2.SproutCaptures[0].FieldID = ""

	l := FromCumulativeMetricsV2(v2, testutil.NewSequentialIDSource("session"))

	assert.Equal(t, "grove", l.CumulativeEvents.JourneyCompletions[0].FieldID)
	assert.Equal(t, "grove", l.CumulativeEvents.TopicExplorations[0].FieldID)
	assert.Equal(t, "grove", l.CumulativeEvents.InsightCaptures[0].FieldID)
	assert.True(t, Verify(v2, l))
}

func TestFromCumulativeMetricsV2DefaultFieldID(t *testing.T) {
	v2 := v2Metrics()
	v2.FieldID = ""
	v2.JourneyCompletions[0].FieldID = ""

	l := FromCumulativeMetricsV2(v2, testutil.NewSequentialIDSource("session"))

	assert.Equal(t, eventlog.DefaultFieldID, l.FieldID)
	assert.Equal(t, eventlog.DefaultFieldID, l.CumulativeEvents.JourneyCompletions[0].FieldID)
}

func TestVerifyRejectsSchemaInvalidLog(t *testing.T) {
	// A blank topicId survives migration structurally but violates the v3
	// schema; verification must fail before such a log is ever persisted.
	v2 := v2Metrics()
	v2.TopicExplorations[0].TopicID = ""

	l := FromCumulativeMetricsV2(v2, testutil.NewSequentialIDSource("session"))
	assert.False(t, Verify(v2, l))
}
