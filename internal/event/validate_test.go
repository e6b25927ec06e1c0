package event

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMillis = 1704067200000

// minimalValid returns the smallest JSON document accepted for each type.
func minimalValid(t Type) string {
	base := fmt.Sprintf(`"fieldId":"grove","timestamp":%d,"sessionId":"s-1","type":%q`, int64(testMillis), t)
	switch t {
	case TypeSessionStarted:
		return `{` + base + `,"isReturning":false}`
	case TypeSessionResumed:
		return `{` + base + `,"previousSessionId":"s-0","minutesSinceLastActivity":5}`
	case TypeLensActivated:
		return `{` + base + `,"lensId":"ghost","source":"selection","isCustom":false}`
	case TypeQuerySubmitted:
		return `{` + base + `,"queryId":"q-1","content":""}`
	case TypeResponseCompleted:
		return `{` + base + `,"responseId":"r-1","queryId":"q-1","hasNavigation":false,"spanCount":0}`
	case TypeForkSelected:
		return `{` + base + `,"forkId":"f-1","forkType":"deep_dive","label":"","responseId":"r-1"}`
	case TypePivotTriggered:
		return `{` + base + `,"conceptId":"c-1","sourceText":"","responseId":"r-1"}`
	case TypeHubEntered:
		return `{` + base + `,"hubId":"h-1","source":"query"}`
	case TypeJourneyStarted:
		return `{` + base + `,"journeyId":"j-1","lensId":"ghost","waypointCount":3}`
	case TypeJourneyAdvanced:
		return `{` + base + `,"journeyId":"j-1","waypointId":"w-1","position":0}`
	case TypeJourneyCompleted:
		return `{` + base + `,"journeyId":"j-1"}`
	case TypeInsightCaptured:
		return `{` + base + `,"sproutId":"sp-1"}`
	case TypeTopicExplored:
		return `{` + base + `,"topicId":"t-1","hubId":"h-1"}`
	case TypeMomentSurfaced:
		return `{` + base + `,"momentId":"m-1","surface":"inline","priority":0}`
	case TypeMomentResolved:
		return `{` + base + `,"momentId":"m-1","resolution":"actioned"}`
	default:
		return `{` + base + `}`
	}
}

func TestValidateAcceptsEveryVariant(t *testing.T) {
	for _, typ := range Types {
		t.Run(string(typ), func(t *testing.T) {
			assert.NoError(t, Validate([]byte(minimalValid(typ))))
		})
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unknown type",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"UNKNOWN_EVENT"}`,
		},
		{
			name:  "missing required variant field",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"SESSION_STARTED"}`,
		},
		{
			name:  "empty fieldId",
			input: `{"fieldId":"","timestamp":1,"sessionId":"s-1","type":"SESSION_STARTED","isReturning":false}`,
		},
		{
			name:  "zero timestamp",
			input: `{"fieldId":"grove","timestamp":0,"sessionId":"s-1","type":"SESSION_STARTED","isReturning":false}`,
		},
		{
			name:  "empty sessionId",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"","type":"SESSION_STARTED","isReturning":false}`,
		},
		{
			name:  "enum outside closed set",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"LENS_ACTIVATED","lensId":"ghost","source":"magic","isCustom":false}`,
		},
		{
			name:  "field not in variant",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"HUB_ENTERED","hubId":"h-1","source":"query","extra":true}`,
		},
		{
			name:  "empty queryId",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"QUERY_SUBMITTED","queryId":"","content":"x"}`,
		},
		{
			name:  "negative spanCount",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"RESPONSE_COMPLETED","responseId":"r-1","queryId":"q-1","hasNavigation":false,"spanCount":-1}`,
		},
		{
			name:  "zero waypointCount",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"JOURNEY_STARTED","journeyId":"j-1","lensId":"l-1","waypointCount":0}`,
		},
		{
			name:  "invalid resolution",
			input: `{"fieldId":"grove","timestamp":1,"sessionId":"s-1","type":"MOMENT_RESOLVED","momentId":"m-1","resolution":"ignored"}`,
		},
		{
			name:  "not JSON",
			input: `{"fieldId":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.input))
			require.Error(t, err)

			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
		})
	}
}

func TestValidateLog(t *testing.T) {
	valid := fmt.Sprintf(`{
		"version": 3,
		"fieldId": "grove",
		"currentSessionId": "s-1",
		"sessionEvents": [%s],
		"cumulativeEvents": {
			"journeyCompletions": [],
			"topicExplorations": [],
			"insightCaptures": []
		},
		"sessionCount": 1,
		"lastSessionAt": %d
	}`, minimalValid(TypeSessionStarted), int64(testMillis))

	assert.NoError(t, ValidateLog([]byte(valid)))
}

func TestValidateLogRejectsWrongVersion(t *testing.T) {
	input := fmt.Sprintf(`{
		"version": 2,
		"fieldId": "grove",
		"currentSessionId": "s-1",
		"sessionEvents": [],
		"cumulativeEvents": {
			"journeyCompletions": [],
			"topicExplorations": [],
			"insightCaptures": []
		},
		"sessionCount": 1,
		"lastSessionAt": %d
	}`, int64(testMillis))

	err := ValidateLog([]byte(input))
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrLogSchema, ve.Code)
}

func TestValidateLogRejectsMixedBucket(t *testing.T) {
	// Session events in a cumulative bucket must not validate.
	input := fmt.Sprintf(`{
		"version": 3,
		"fieldId": "grove",
		"currentSessionId": "s-1",
		"sessionEvents": [],
		"cumulativeEvents": {
			"journeyCompletions": [%s],
			"topicExplorations": [],
			"insightCaptures": []
		},
		"sessionCount": 1,
		"lastSessionAt": %d
	}`, minimalValid(TypeSessionStarted), int64(testMillis))

	assert.Error(t, ValidateLog([]byte(input)))
}

func TestParseReturnsTypedEvent(t *testing.T) {
	e, err := Parse([]byte(minimalValid(TypeQuerySubmitted)))
	require.NoError(t, err)

	q, ok := e.(*QuerySubmitted)
	require.True(t, ok, "expected *QuerySubmitted, got %T", e)
	assert.Equal(t, "q-1", q.QueryID)
	assert.Equal(t, TypeQuerySubmitted, q.Kind())
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"type":"SESSION_STARTED"}`))
	assert.True(t, IsValidationError(err))
}
