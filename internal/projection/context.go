package projection

import (
	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/eventlog"
)

// Stage is a coarse engagement-maturity bucket.
type Stage string

// Stages, in increasing engagement order.
const (
	StageArrival   Stage = "ARRIVAL"
	StageOriented  Stage = "ORIENTED"
	StageExploring Stage = "EXPLORING"
	StageEngaged   Stage = "ENGAGED"
)

// Stage score thresholds. The score is interactions + 2*journeys, so the
// staircase is monotonic in both inputs.
const (
	exploringScore = 8
	engagedScore   = 20
)

// ComputeStage buckets two engagement counters into a stage. Increasing
// either input never moves the stage backward.
func ComputeStage(interactionCount, journeysCompleted int) Stage {
	score := interactionCount + 2*journeysCompleted
	switch {
	case score <= 0:
		return StageArrival
	case score >= engagedScore:
		return StageEngaged
	case score >= exploringScore:
		return StageExploring
	default:
		return StageOriented
	}
}

// EntropySignals are the diversity inputs to ComputeEntropy.
type EntropySignals struct {
	HubsVisited           []string `json:"hubsVisited"`
	ExchangeCount         int      `json:"exchangeCount"`
	PivotCount            int      `json:"pivotCount"`
	ConsecutiveHubRepeats int      `json:"consecutiveHubRepeats"`
}

// Entropy weights. Hub diversity dominates, pivoting adds, dwelling on one
// hub subtracts a flat penalty per consecutive repeat.
const (
	hubDiversityWeight = 0.6
	pivotWeight        = 0.4
	repeatPenalty      = 0.1
)

// ComputeEntropy returns a [0,1] exploration-diversity measure. Zero
// exchanges means zero entropy; repeated dwelling on a single hub pushes
// the value toward zero.
func ComputeEntropy(s EntropySignals) float64 {
	if s.ExchangeCount <= 0 {
		return 0
	}

	unique := make(map[string]bool, len(s.HubsVisited))
	for _, hub := range s.HubsVisited {
		unique[hub] = true
	}

	exchanges := float64(s.ExchangeCount)
	entropy := hubDiversityWeight*float64(len(unique))/exchanges +
		pivotWeight*float64(s.PivotCount)/exchanges -
		repeatPenalty*float64(s.ConsecutiveHubRepeats)

	switch {
	case entropy < 0:
		return 0
	case entropy > 1:
		return 1
	default:
		return entropy
	}
}

// ContextState is the composed engagement context.
type ContextState struct {
	Stage             Stage        `json:"stage"`
	Session           SessionState `json:"session"`
	Entropy           float64      `json:"entropy"`
	ExchangeCount     int          `json:"exchangeCount"`
	JourneysCompleted int          `json:"journeysCompleted"`
}

// InitialContextState is the context of a log with no events.
var InitialContextState = ContextState{Stage: StageArrival}

// Context composes the session projection with stage and entropy.
func Context(l *eventlog.Log, now int64) ContextState {
	session := Session(l.SessionEvents, now)
	signals := deriveEntropySignals(l.SessionEvents)
	journeys := JourneyCompletionCount(l)

	return ContextState{
		Stage:             ComputeStage(session.InteractionCount, journeys),
		Session:           session,
		Entropy:           ComputeEntropy(signals),
		ExchangeCount:     signals.ExchangeCount,
		JourneysCompleted: journeys,
	}
}

// deriveEntropySignals scans session events for the diversity inputs: hubs
// entered, completed exchanges, pivots, and consecutive same-hub entries.
func deriveEntropySignals(events []event.Event) EntropySignals {
	var s EntropySignals
	lastHub := ""

	for _, e := range events {
		switch ev := e.(type) {
		case *event.HubEntered:
			s.HubsVisited = append(s.HubsVisited, ev.HubID)
			if ev.HubID == lastHub {
				s.ConsecutiveHubRepeats++
			}
			lastHub = ev.HubID
		case *event.ResponseCompleted:
			s.ExchangeCount++
		case *event.PivotTriggered:
			s.PivotCount++
		}
	}
	return s
}
