package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/grove/internal/bridge"
	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/localstore"
	"github.com/roach88/grove/internal/migration"
	"github.com/roach88/grove/internal/projection"
	"github.com/roach88/grove/internal/telemetry"
	"github.com/roach88/grove/internal/testutil"
)

// Snapshot captures every projection after a scenario run. Serialized
// canonically for golden comparison.
type Snapshot struct {
	ScenarioName string                         `json:"scenario_name"`
	Session      *projection.SessionState       `json:"session"`
	Context      *projection.ContextState       `json:"context"`
	Moment       *projection.MomentContext      `json:"moment"`
	Stream       *projection.StreamState        `json:"stream"`
	Telemetry    *telemetry.CumulativeMetricsV2 `json:"telemetry"`
}

// Result is a scenario run's outcome.
type Result struct {
	Scenario *Scenario
	Snapshot *Snapshot

	// Failures lists unmet expectations. Empty means passed.
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Run executes a scenario against a fresh provider. Each run gets its own
// in-memory storage, a clock frozen at start_at, and sequential session
// ids, so results are byte-reproducible.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	storage := localstore.NewMemory(nil)
	if scenario.Legacy != nil {
		raw, err := json.Marshal(scenario.Legacy)
		if err != nil {
			return nil, fmt.Errorf("encode legacy seed: %w", err)
		}
		if err := storage.Set(ctx, migration.LegacyMetricsKey, string(raw)); err != nil {
			return nil, fmt.Errorf("seed legacy metrics: %w", err)
		}
	}

	clock := testutil.NewManualClockAtMillis(scenario.StartAt)
	provider, err := bridge.NewProvider(ctx,
		bridge.WithStorage(storage),
		bridge.WithClock(clock),
		bridge.WithIDSource(testutil.NewSequentialIDSource("session")),
		bridge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("start provider: %w", err)
	}

	for i, step := range scenario.Steps {
		switch {
		case step.AdvanceMs > 0:
			clock.Advance(time.Duration(step.AdvanceMs) * time.Millisecond)
		case step.NewSession:
			provider.StartNewSession(ctx)
		case step.Emit != "":
			if err := emitStep(ctx, provider, step); err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, step.Emit, err)
			}
		}
	}

	result := &Result{
		Scenario: scenario,
		Snapshot: &Snapshot{
			ScenarioName: scenario.Name,
			Session:      provider.Session(),
			Context:      provider.ContextState(),
			Moment:       provider.MomentContext(),
			Stream:       provider.Stream(),
			Telemetry:    provider.Telemetry(),
		},
	}
	evaluateExpect(scenario.Expect, provider, result)
	return result, nil
}

// emitStep assembles a wire-shaped event from the step's args over a
// provider-stamped envelope, decodes it through the production codec, and
// dispatches it. Args may override envelope fields when a scenario needs
// to pin a timestamp or session id.
func emitStep(ctx context.Context, provider *bridge.Provider, step Step) error {
	env := provider.Envelope(event.Type(step.Emit))
	payload := map[string]any{
		"type":      string(env.Type),
		"fieldId":   env.FieldID,
		"timestamp": env.Timestamp,
		"sessionId": env.SessionID,
	}
	for k, v := range step.Args {
		payload[k] = v
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ev, err := event.Decode(data)
	if err != nil {
		return err
	}
	return provider.Dispatch(ctx, ev)
}

func evaluateExpect(expect *Expect, provider *bridge.Provider, result *Result) {
	if expect == nil {
		return
	}

	fail := func(format string, args ...any) {
		result.Failures = append(result.Failures, fmt.Sprintf(format, args...))
	}

	contextState := provider.ContextState()
	session := provider.Session()
	l := provider.Log()

	if expect.Stage != "" && string(contextState.Stage) != expect.Stage {
		fail("stage = %s, want %s", contextState.Stage, expect.Stage)
	}
	if expect.LensID != "" && session.LensID != expect.LensID {
		fail("lensId = %q, want %q", session.LensID, expect.LensID)
	}
	if expect.InteractionCount != nil && session.InteractionCount != *expect.InteractionCount {
		fail("interactionCount = %d, want %d", session.InteractionCount, *expect.InteractionCount)
	}
	if expect.ExchangeCount != nil && contextState.ExchangeCount != *expect.ExchangeCount {
		fail("exchangeCount = %d, want %d", contextState.ExchangeCount, *expect.ExchangeCount)
	}
	if expect.JourneysCompleted != nil && contextState.JourneysCompleted != *expect.JourneysCompleted {
		fail("journeysCompleted = %d, want %d", contextState.JourneysCompleted, *expect.JourneysCompleted)
	}
	if expect.SessionCount != nil && l.SessionCount != *expect.SessionCount {
		fail("sessionCount = %d, want %d", l.SessionCount, *expect.SessionCount)
	}
	if expect.StreamItems != nil && len(provider.Stream().Items) != *expect.StreamItems {
		fail("stream items = %d, want %d", len(provider.Stream().Items), *expect.StreamItems)
	}
	if expect.HasActiveQuery != nil {
		got := projection.HasActiveQuery(l.SessionEvents)
		if got != *expect.HasActiveQuery {
			fail("hasActiveQuery = %v, want %v", got, *expect.HasActiveQuery)
		}
	}
	if expect.ActiveMoments != nil {
		got := projection.ActiveMoments(l.SessionEvents)
		if !equalStrings(got, expect.ActiveMoments) {
			fail("activeMoments = %v, want %v", got, expect.ActiveMoments)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
