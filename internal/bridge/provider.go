package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/grove/internal/event"
	"github.com/roach88/grove/internal/eventlog"
	"github.com/roach88/grove/internal/migration"
	"github.com/roach88/grove/internal/projection"
	"github.com/roach88/grove/internal/telemetry"
)

// Provider is the single writer over the event log. All mutation flows
// through Dispatch or the session operations; readers get memoized
// projections that stay pointer-identical until the log changes.
type Provider struct {
	mu      sync.Mutex
	log     *eventlog.Log
	storage Storage
	clock   eventlog.Clock
	ids     eventlog.IDSource
	logger  *slog.Logger

	version uint64
	memo    memo

	subs    map[int]func()
	nextSub int
}

// memo caches one projection result per kind for a single log version.
type memo struct {
	version   uint64
	session   *projection.SessionState
	context   *projection.ContextState
	telemetry *telemetry.CumulativeMetricsV2
	moment    *projection.MomentContext
	stream    *projection.StreamState
}

// Option configures a Provider.
type Option func(*Provider)

// WithStorage sets the persistence backend. Without one the provider is
// memory-only and nothing survives the process.
func WithStorage(s Storage) Option {
	return func(p *Provider) { p.storage = s }
}

// WithClock overrides the timestamp source.
func WithClock(c eventlog.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithIDSource overrides session id generation.
func WithIDSource(ids eventlog.IDSource) Option {
	return func(p *Provider) { p.ids = ids }
}

// WithLogger overrides the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// NewProvider builds a provider, loading state through the recovery chain:
// current-format storage first, then legacy metrics migrated and verified,
// then a fresh log. Corrupt stored state is abandoned, not repaired.
func NewProvider(ctx context.Context, opts ...Option) (*Provider, error) {
	p := &Provider{
		clock:  eventlog.SystemClock,
		ids:    eventlog.UUIDSource,
		logger: slog.Default(),
		subs:   map[int]func(){},
	}
	for _, opt := range opts {
		opt(p)
	}

	l, migrated, err := p.loadLog(ctx)
	if err != nil {
		return nil, err
	}
	p.log = l

	if migrated {
		p.persistLocked(ctx)
	}
	return p, nil
}

// loadLog resolves the starting log. Returns migrated=true when the log
// came from the legacy metrics format and should be persisted in the new
// format immediately.
func (p *Provider) loadLog(ctx context.Context) (*eventlog.Log, bool, error) {
	if p.storage == nil {
		return p.freshLog(), false, nil
	}

	raw, ok, err := p.storage.Get(ctx, eventlog.StorageKey)
	if err != nil {
		return nil, false, fmt.Errorf("load event log: %w", err)
	}
	if ok {
		l, err := eventlog.Parse([]byte(raw))
		if err == nil {
			return l, false, nil
		}
		p.logger.Warn("stored event log invalid, falling back",
			"key", eventlog.StorageKey, "error", err)
	}

	raw, ok, err = p.storage.Get(ctx, migration.LegacyMetricsKey)
	if err != nil {
		return nil, false, fmt.Errorf("load legacy metrics: %w", err)
	}
	if ok && migration.IsCumulativeMetricsV2([]byte(raw)) {
		v2, err := migration.ParseLegacy([]byte(raw))
		if err == nil {
			l := migration.FromCumulativeMetricsV2(v2, p.ids)
			if migration.Verify(v2, l) {
				p.logger.Info("migrated legacy metrics to event log",
					"journeys", len(v2.JourneyCompletions),
					"topics", len(v2.TopicExplorations),
					"sprouts", len(v2.SproutCaptures))
				return l, true, nil
			}
			p.logger.Warn("legacy metrics migration failed verification")
		} else {
			p.logger.Warn("legacy metrics unreadable", "error", err)
		}
	}

	return p.freshLog(), false, nil
}

// freshLog builds an empty log stamped from the provider's clock and ids.
func (p *Provider) freshLog() *eventlog.Log {
	return eventlog.New(
		eventlog.WithSessionID(p.ids.NewSessionID()),
		eventlog.WithLastSessionAt(p.clock.Now().UnixMilli()),
	)
}

// Dispatch validates e, appends it to the log, persists best-effort, and
// notifies subscribers. The only error returned is a validation error;
// persistence failures are logged and swallowed so the in-memory log is
// always the source of truth.
func (p *Provider) Dispatch(ctx context.Context, e event.Event) error {
	data, err := event.Encode(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := event.Validate(data); err != nil {
		return err
	}

	p.mu.Lock()
	p.log = p.log.Append(e)
	p.version++
	p.persistLocked(ctx)
	subs := p.snapshotSubsLocked()
	p.mu.Unlock()

	notify(subs)
	return nil
}

// StartNewSession rotates to a fresh session and returns its id.
func (p *Provider) StartNewSession(ctx context.Context) string {
	p.mu.Lock()
	p.log = p.log.StartNewSession(p.clock, p.ids)
	p.version++
	p.persistLocked(ctx)
	sessionID := p.log.CurrentSessionID
	subs := p.snapshotSubsLocked()
	p.mu.Unlock()

	notify(subs)
	return sessionID
}

// ClearSession drops the session events, keeping cumulative history.
func (p *Provider) ClearSession(ctx context.Context) {
	p.mu.Lock()
	p.log = p.log.ClearSession()
	p.version++
	p.persistLocked(ctx)
	subs := p.snapshotSubsLocked()
	p.mu.Unlock()

	notify(subs)
}

// Log returns the current log. Logs are immutable, so the returned value
// is safe to read without coordination.
func (p *Provider) Log() *eventlog.Log {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.log
}

// Version returns the mutation counter. It increments on every successful
// Dispatch, StartNewSession, and ClearSession.
func (p *Provider) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// Subscribe registers fn to run after every log change. The returned
// cancel func unregisters it.
func (p *Provider) Subscribe(fn func()) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Session returns the session projection, memoized per log version.
func (p *Provider) Session() *projection.SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freshenMemoLocked()
	if p.memo.session == nil {
		s := projection.Session(p.log.SessionEvents, p.nowLocked())
		p.memo.session = &s
	}
	return p.memo.session
}

// ContextState returns the engagement context, memoized per log version.
func (p *Provider) ContextState() *projection.ContextState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freshenMemoLocked()
	if p.memo.context == nil {
		c := projection.Context(p.log, p.nowLocked())
		p.memo.context = &c
	}
	return p.memo.context
}

// Telemetry returns the legacy-shaped cumulative metrics, memoized per log
// version.
func (p *Provider) Telemetry() *telemetry.CumulativeMetricsV2 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freshenMemoLocked()
	if p.memo.telemetry == nil {
		p.memo.telemetry = projection.ToCumulativeMetricsV2(p.log)
	}
	return p.memo.telemetry
}

// MomentContext returns the moment-policy inputs, memoized per log version.
func (p *Provider) MomentContext() *projection.MomentContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freshenMemoLocked()
	if p.memo.moment == nil {
		m := projection.Moment(p.log, p.nowLocked())
		p.memo.moment = &m
	}
	return p.memo.moment
}

// Stream returns the conversation stream, memoized per log version.
func (p *Provider) Stream() *projection.StreamState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freshenMemoLocked()
	if p.memo.stream == nil {
		s := projection.Stream(p.log.SessionEvents)
		p.memo.stream = &s
	}
	return p.memo.stream
}

// Envelope stamps an envelope for a new event of type t: field and session
// from the current log, timestamp from the clock.
func (p *Provider) Envelope(t event.Type) event.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.log.NewEnvelope(t, p.clock)
}

// freshenMemoLocked invalidates cached projections when the log has moved.
func (p *Provider) freshenMemoLocked() {
	if p.memo.version != p.version {
		p.memo = memo{version: p.version}
	}
}

func (p *Provider) nowLocked() int64 {
	return p.clock.Now().UnixMilli()
}

// persistLocked writes the current log through storage. Failures are
// logged, never returned: persistence is best-effort.
func (p *Provider) persistLocked(ctx context.Context) {
	if p.storage == nil {
		return
	}
	data, err := p.log.Encode()
	if err != nil {
		p.logger.Error("encode event log for persistence", "error", err)
		return
	}
	if err := p.storage.Set(ctx, eventlog.StorageKey, string(data)); err != nil {
		p.logger.Warn("persist event log", "key", eventlog.StorageKey, "error", err)
	}
}

func (p *Provider) snapshotSubsLocked() []func() {
	subs := make([]func(), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
