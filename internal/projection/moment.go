package projection

import (
	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/eventlog"
)

// Moment flag names set by Flags.
const (
	FlagJourneyStarted   = "journeyStarted"
	FlagJourneyCompleted = "journeyCompleted"
	FlagInsightCaptured  = "insightCaptured"
	FlagLensActivated    = "lensActivated"
	FlagPivotTriggered   = "pivotTriggered"
)

// MomentContext is the input to moment-triggering policy: engagement stage,
// exchange volume, observed flags, per-moment cooldowns, and the cumulative
// counters policies key on.
type MomentContext struct {
	Stage             Stage            `json:"stage"`
	ExchangeCount     int              `json:"exchangeCount"`
	Flags             map[string]bool  `json:"flags"`
	Cooldowns         map[string]int64 `json:"cooldowns"`
	ActiveMoments     []string         `json:"activeMoments"`
	MomentsShown      []string         `json:"momentsShown"`
	JourneysCompleted int              `json:"journeysCompleted"`
	SproutsCaptured   int              `json:"sproutsCaptured"`
	MinutesActive     float64          `json:"minutesActive"`
}

// Moment composes the moment context from a log.
func Moment(l *eventlog.Log, now int64) MomentContext {
	session := Session(l.SessionEvents, now)
	signals := deriveEntropySignals(l.SessionEvents)
	journeys := JourneyCompletionCount(l)

	return MomentContext{
		Stage:             ComputeStage(session.InteractionCount, journeys),
		ExchangeCount:     signals.ExchangeCount,
		Flags:             Flags(l.SessionEvents),
		Cooldowns:         Cooldowns(l.SessionEvents),
		ActiveMoments:     ActiveMoments(l.SessionEvents),
		MomentsShown:      MomentsShown(l.SessionEvents),
		JourneysCompleted: journeys,
		SproutsCaptured:   SproutCaptureCount(l),
		MinutesActive:     session.MinutesActive,
	}
}

// Flags sets a boolean per observed trigger event type. A flag, once set
// within a slice, is never unset.
func Flags(events []event.Event) map[string]bool {
	flags := map[string]bool{}
	for _, e := range events {
		switch e.Kind() {
		case event.TypeJourneyStarted:
			flags[FlagJourneyStarted] = true
		case event.TypeJourneyCompleted:
			flags[FlagJourneyCompleted] = true
		case event.TypeInsightCaptured:
			flags[FlagInsightCaptured] = true
		case event.TypeLensActivated:
			flags[FlagLensActivated] = true
		case event.TypePivotTriggered:
			flags[FlagPivotTriggered] = true
		}
	}
	return flags
}

// Cooldowns maps each surfaced moment id to its most recent surfacing
// timestamp. Last write wins on replay.
func Cooldowns(events []event.Event) map[string]int64 {
	cooldowns := map[string]int64{}
	for _, e := range events {
		if ms, ok := e.(*event.MomentSurfaced); ok {
			cooldowns[ms.MomentID] = ms.Timestamp
		}
	}
	return cooldowns
}

// ActiveMoments returns ids surfaced but not yet resolved, in first-surfaced
// order.
func ActiveMoments(events []event.Event) []string {
	resolved := map[string]bool{}
	for _, e := range events {
		if mr, ok := e.(*event.MomentResolved); ok {
			resolved[mr.MomentID] = true
		}
	}

	seen := map[string]bool{}
	active := []string{}
	for _, e := range events {
		ms, ok := e.(*event.MomentSurfaced)
		if !ok || resolved[ms.MomentID] || seen[ms.MomentID] {
			continue
		}
		seen[ms.MomentID] = true
		active = append(active, ms.MomentID)
	}
	return active
}

// MomentsShown returns every id ever surfaced, deduplicated in
// first-surfaced order.
func MomentsShown(events []event.Event) []string {
	seen := map[string]bool{}
	shown := []string{}
	for _, e := range events {
		ms, ok := e.(*event.MomentSurfaced)
		if !ok || seen[ms.MomentID] {
			continue
		}
		seen[ms.MomentID] = true
		shown = append(shown, ms.MomentID)
	}
	return shown
}
