package bridge

import (
	"context"

	"github.com/roach88/grove/internal/event"
)

// Emitter wraps a Provider with one typed constructor per event type. A
// nil-provider Emitter silently drops every emit, so call sites never
// check for presence.
type Emitter struct {
	p *Provider
}

// NewEmitter returns an emitter dispatching through p.
func NewEmitter(p *Provider) *Emitter {
	return &Emitter{p: p}
}

// SafeEmitter returns an emitter that no-ops when p is nil or the feature
// flag is off.
func SafeEmitter(ctx context.Context, p *Provider) *Emitter {
	if p == nil {
		return &Emitter{}
	}
	if !Enabled(ctx, p.storage) {
		return &Emitter{}
	}
	return &Emitter{p: p}
}

// Active reports whether emits reach a provider.
func (e *Emitter) Active() bool {
	return e != nil && e.p != nil
}

func (e *Emitter) dispatch(ctx context.Context, ev event.Event) error {
	if !e.Active() {
		return nil
	}
	return e.p.Dispatch(ctx, ev)
}

func (e *Emitter) SessionStarted(ctx context.Context, isReturning bool, previousSessionID string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.SessionStarted{
		Envelope:          e.p.Envelope(event.TypeSessionStarted),
		IsReturning:       isReturning,
		PreviousSessionID: previousSessionID,
	})
}

func (e *Emitter) SessionResumed(ctx context.Context, previousSessionID string, minutesSinceLastActivity int) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.SessionResumed{
		Envelope:                 e.p.Envelope(event.TypeSessionResumed),
		PreviousSessionID:        previousSessionID,
		MinutesSinceLastActivity: minutesSinceLastActivity,
	})
}

func (e *Emitter) LensActivated(ctx context.Context, lensID, source string, isCustom bool) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.LensActivated{
		Envelope: e.p.Envelope(event.TypeLensActivated),
		LensID:   lensID,
		Source:   source,
		IsCustom: isCustom,
	})
}

func (e *Emitter) QuerySubmitted(ctx context.Context, queryID, content, intent, sourceResponseID string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.QuerySubmitted{
		Envelope:         e.p.Envelope(event.TypeQuerySubmitted),
		QueryID:          queryID,
		Content:          content,
		Intent:           intent,
		SourceResponseID: sourceResponseID,
	})
}

func (e *Emitter) ResponseCompleted(ctx context.Context, responseID, queryID, hubID string, hasNavigation bool, spanCount int) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.ResponseCompleted{
		Envelope:      e.p.Envelope(event.TypeResponseCompleted),
		ResponseID:    responseID,
		QueryID:       queryID,
		HubID:         hubID,
		HasNavigation: hasNavigation,
		SpanCount:     spanCount,
	})
}

func (e *Emitter) ForkSelected(ctx context.Context, forkID, forkType, label, responseID string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.ForkSelected{
		Envelope:   e.p.Envelope(event.TypeForkSelected),
		ForkID:     forkID,
		ForkType:   forkType,
		Label:      label,
		ResponseID: responseID,
	})
}

func (e *Emitter) PivotTriggered(ctx context.Context, conceptID, sourceText, responseID string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.PivotTriggered{
		Envelope:   e.p.Envelope(event.TypePivotTriggered),
		ConceptID:  conceptID,
		SourceText: sourceText,
		ResponseID: responseID,
	})
}

func (e *Emitter) HubEntered(ctx context.Context, hubID, source string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.HubEntered{
		Envelope: e.p.Envelope(event.TypeHubEntered),
		HubID:    hubID,
		Source:   source,
	})
}

func (e *Emitter) JourneyStarted(ctx context.Context, journeyID, lensID string, waypointCount int) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.JourneyStarted{
		Envelope:      e.p.Envelope(event.TypeJourneyStarted),
		JourneyID:     journeyID,
		LensID:        lensID,
		WaypointCount: waypointCount,
	})
}

func (e *Emitter) JourneyAdvanced(ctx context.Context, journeyID, waypointID string, position int) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.JourneyAdvanced{
		Envelope:   e.p.Envelope(event.TypeJourneyAdvanced),
		JourneyID:  journeyID,
		WaypointID: waypointID,
		Position:   position,
	})
}

func (e *Emitter) JourneyCompleted(ctx context.Context, journeyID string, durationMs int64, waypointsVisited int) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.JourneyCompleted{
		Envelope:         e.p.Envelope(event.TypeJourneyCompleted),
		JourneyID:        journeyID,
		DurationMs:       durationMs,
		WaypointsVisited: waypointsVisited,
	})
}

func (e *Emitter) InsightCaptured(ctx context.Context, sproutID, journeyID, hubID string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.InsightCaptured{
		Envelope:  e.p.Envelope(event.TypeInsightCaptured),
		SproutID:  sproutID,
		JourneyID: journeyID,
		HubID:     hubID,
	})
}

func (e *Emitter) TopicExplored(ctx context.Context, topicID, hubID, queryTrigger string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.TopicExplored{
		Envelope:     e.p.Envelope(event.TypeTopicExplored),
		TopicID:      topicID,
		HubID:        hubID,
		QueryTrigger: queryTrigger,
	})
}

func (e *Emitter) MomentSurfaced(ctx context.Context, momentID, surface string, priority int) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.MomentSurfaced{
		Envelope: e.p.Envelope(event.TypeMomentSurfaced),
		MomentID: momentID,
		Surface:  surface,
		Priority: priority,
	})
}

func (e *Emitter) MomentResolved(ctx context.Context, momentID, resolution, actionID, actionType string) error {
	if !e.Active() {
		return nil
	}
	return e.dispatch(ctx, &event.MomentResolved{
		Envelope:   e.p.Envelope(event.TypeMomentResolved),
		MomentID:   momentID,
		Resolution: resolution,
		ActionID:   actionID,
		ActionType: actionType,
	})
}
