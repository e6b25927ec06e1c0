package eventlog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/testutil"
)

const testMillis = 1704067200000 // 2024-01-01 00:00:00 UTC

func testLog() *Log {
	return New(
		WithSessionID("test-session"),
		WithLastSessionAt(testMillis),
	)
}

func sessionStarted() *event.SessionStarted {
	return &event.SessionStarted{
		Envelope: event.Envelope{
			FieldID:   "grove",
			Timestamp: testMillis,
			Type:      event.TypeSessionStarted,
			SessionID: "test-session",
		},
		IsReturning: false,
	}
}

func querySubmitted(queryID, content string, ts int64) *event.QuerySubmitted {
	return &event.QuerySubmitted{
		Envelope: event.Envelope{
			FieldID:   "grove",
			Timestamp: ts,
			Type:      event.TypeQuerySubmitted,
			SessionID: "test-session",
		},
		QueryID: queryID,
		Content: content,
	}
}

func journeyCompleted(journeyID string) *event.JourneyCompleted {
	return &event.JourneyCompleted{
		Envelope: event.Envelope{
			FieldID:   "grove",
			Timestamp: testMillis,
			Type:      event.TypeJourneyCompleted,
			SessionID: "test-session",
		},
		JourneyID: journeyID,
	}
}

func TestNewSessionID(t *testing.T) {
	id1 := NewSessionID()
	id2 := NewSessionID()

	assert.NotEqual(t, id1, id2)
	assert.Greater(t, len(id1), 8)
}

func TestNewDefaults(t *testing.T) {
	l := New()

	assert.Equal(t, Version, l.Version)
	assert.Equal(t, DefaultFieldID, l.FieldID)
	assert.NotEmpty(t, l.CurrentSessionID)
	assert.Empty(t, l.SessionEvents)
	assert.Empty(t, l.CumulativeEvents.JourneyCompletions)
	assert.Empty(t, l.CumulativeEvents.TopicExplorations)
	assert.Empty(t, l.CumulativeEvents.InsightCaptures)
	assert.Equal(t, 1, l.SessionCount)
	assert.Greater(t, l.LastSessionAt, int64(0))
}

func TestNewOptions(t *testing.T) {
	l := New(
		WithFieldID("custom-field"),
		WithSessionID("custom-session"),
		WithSessionCount(5),
	)

	assert.Equal(t, "custom-field", l.FieldID)
	assert.Equal(t, "custom-session", l.CurrentSessionID)
	assert.Equal(t, 5, l.SessionCount)
}

func TestNewWithCumulativeEvents(t *testing.T) {
	l := New(WithCumulativeEvents(CumulativeEvents{
		JourneyCompletions: []*event.JourneyCompleted{journeyCompleted("j-1")},
		TopicExplorations:  []*event.TopicExplored{},
		InsightCaptures:    []*event.InsightCaptured{},
	}))

	assert.Len(t, l.CumulativeEvents.JourneyCompletions, 1)
}

func TestAppendSessionEvent(t *testing.T) {
	l := testLog()
	updated := l.Append(sessionStarted())

	require.Len(t, updated.SessionEvents, 1)
	assert.Equal(t, event.TypeSessionStarted, updated.SessionEvents[0].Kind())
	assert.Empty(t, updated.CumulativeEvents.JourneyCompletions)
}

func TestAppendMirrorsCumulativeEvents(t *testing.T) {
	l := testLog()

	l = l.Append(journeyCompleted("j-1"))
	assert.Len(t, l.SessionEvents, 1)
	assert.Len(t, l.CumulativeEvents.JourneyCompletions, 1)

	l = l.Append(&event.TopicExplored{
		Envelope: l.NewEnvelope(event.TypeTopicExplored, testutil.NewManualClockAtMillis(testMillis)),
		TopicID:  "t-1",
		HubID:    "h-1",
	})
	assert.Len(t, l.SessionEvents, 2)
	assert.Len(t, l.CumulativeEvents.TopicExplorations, 1)

	l = l.Append(&event.InsightCaptured{
		Envelope: l.NewEnvelope(event.TypeInsightCaptured, testutil.NewManualClockAtMillis(testMillis)),
		SproutID: "s-1",
	})
	assert.Len(t, l.SessionEvents, 3)
	assert.Len(t, l.CumulativeEvents.InsightCaptures, 1)
	assert.Equal(t, 3, l.CumulativeEventCount())
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	l := testLog()
	updated := l.Append(sessionStarted())

	assert.NotSame(t, l, updated)
	assert.Empty(t, l.SessionEvents)
	assert.Len(t, updated.SessionEvents, 1)
}

func TestClearSession(t *testing.T) {
	l := testLog().Append(sessionStarted()).Append(journeyCompleted("j-1"))

	cleared := l.ClearSession()

	assert.Empty(t, cleared.SessionEvents)
	assert.Len(t, cleared.CumulativeEvents.JourneyCompletions, 1)
	assert.Len(t, l.SessionEvents, 2, "receiver must be unchanged")
}

func TestStartNewSession(t *testing.T) {
	clock := testutil.NewManualClockAtMillis(testMillis + 60000)
	ids := testutil.NewSequentialIDSource("next")

	l := testLog().Append(journeyCompleted("j-1"))
	fresh := l.StartNewSession(clock, ids)

	assert.Empty(t, fresh.SessionEvents)
	assert.Equal(t, "next-0001", fresh.CurrentSessionID)
	assert.NotEqual(t, l.CurrentSessionID, fresh.CurrentSessionID)
	assert.Equal(t, l.SessionCount+1, fresh.SessionCount)
	assert.Equal(t, int64(testMillis+60000), fresh.LastSessionAt)
	assert.Len(t, fresh.CumulativeEvents.JourneyCompletions, 1)
}

func TestNewEnvelope(t *testing.T) {
	clock := testutil.NewManualClockAtMillis(testMillis)
	l := testLog()

	env := l.NewEnvelope(event.TypeQuerySubmitted, clock)

	assert.Equal(t, DefaultFieldID, env.FieldID)
	assert.Equal(t, "test-session", env.SessionID)
	assert.Equal(t, event.TypeQuerySubmitted, env.Type)
	assert.Equal(t, int64(testMillis), env.Timestamp)
}

func TestEventsByType(t *testing.T) {
	l := testLog().
		Append(sessionStarted()).
		Append(querySubmitted("q-1", "test", testMillis))

	started := l.EventsByType(event.TypeSessionStarted)
	require.Len(t, started, 1)
	assert.Equal(t, event.TypeSessionStarted, started[0].Kind())

	queries := l.EventsByType(event.TypeQuerySubmitted)
	require.Len(t, queries, 1)

	assert.Empty(t, l.EventsByType(event.TypeJourneyCompleted))
}

func TestLastEventOfType(t *testing.T) {
	l := testLog().
		Append(querySubmitted("q-1", "first", testMillis)).
		Append(querySubmitted("q-2", "second", testMillis+1000))

	last := l.LastEventOfType(event.TypeQuerySubmitted)
	require.NotNil(t, last)
	assert.Equal(t, "q-2", last.(*event.QuerySubmitted).QueryID)

	assert.Nil(t, l.LastEventOfType(event.TypeJourneyCompleted))
}

func TestSessionEventCount(t *testing.T) {
	l := testLog()
	assert.Equal(t, 0, l.SessionEventCount())

	l = l.Append(sessionStarted())
	assert.Equal(t, 1, l.SessionEventCount())

	l = l.Append(querySubmitted("q-1", "test", testMillis))
	assert.Equal(t, 2, l.SessionEventCount())
}

func TestEncodeParseRoundTrip(t *testing.T) {
	l := testLog().
		Append(sessionStarted()).
		Append(journeyCompleted("j-1"))

	data, err := l.Encode()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, l, parsed)
}

func TestParseRejectsInvalidLog(t *testing.T) {
	_, err := Parse([]byte(`{"version":2,"fieldId":"grove"}`))
	require.Error(t, err)
	assert.True(t, event.IsValidationError(err))
}

func TestEncodeEmitsEmptyArraysNotNull(t *testing.T) {
	data, err := testLog().Encode()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `[]`, string(raw["sessionEvents"]))
}
