package projection

import "github.com/roach88/grove/internal/event"

// SessionState is the session projection's view model.
type SessionState struct {
	SessionID        string  `json:"sessionId"`
	IsReturning      bool    `json:"isReturning"`
	StartedAt        int64   `json:"startedAt"`
	MinutesActive    float64 `json:"minutesActive"`
	LensID           string  `json:"lensId"`
	LensSource       string  `json:"lensSource"`
	IsCustomLens     bool    `json:"isCustomLens"`
	InteractionCount int     `json:"interactionCount"`
}

// InitialSessionState is the fold result for an empty event slice.
var InitialSessionState = SessionState{}

// Session folds session events into a SessionState. now (epoch ms) anchors
// the minutes-active computation.
func Session(events []event.Event, now int64) SessionState {
	state := InitialSessionState

	for _, e := range events {
		switch ev := e.(type) {
		case *event.SessionStarted:
			state.SessionID = ev.SessionID
			state.IsReturning = ev.IsReturning
			state.StartedAt = ev.Timestamp
		case *event.SessionResumed:
			// A resume implies prior history even if no SESSION_STARTED
			// with isReturning was recorded in this slice.
			state.SessionID = ev.SessionID
			state.IsReturning = true
		case *event.LensActivated:
			state.LensID = ev.LensID
			state.LensSource = ev.Source
			state.IsCustomLens = ev.IsCustom
		case *event.QuerySubmitted:
			state.InteractionCount++
		}
	}

	if state.StartedAt > 0 && now > state.StartedAt {
		state.MinutesActive = float64(now-state.StartedAt) / 60000
	}
	return state
}

// ExtractSessionID returns the session id recorded by the first session
// lifecycle event, or "" when the slice has none.
func ExtractSessionID(events []event.Event) string {
	for _, e := range events {
		if event.IsSession(e.Kind()) {
			return e.Meta().SessionID
		}
	}
	return ""
}

// HasActiveLens reports whether any lens has been activated in the slice.
func HasActiveLens(events []event.Event) bool {
	for _, e := range events {
		if e.Kind() == event.TypeLensActivated {
			return true
		}
	}
	return false
}

// InteractionCount counts QUERY_SUBMITTED events. Other interaction-like
// events (forks, pivots) deliberately do not count.
func InteractionCount(events []event.Event) int {
	n := 0
	for _, e := range events {
		if e.Kind() == event.TypeQuerySubmitted {
			n++
		}
	}
	return n
}
