// Package projection folds event sequences into derived view models.
//
// Every projection is a pure function of (events, now): no side effects, no
// subscriptions, no hidden state. Callers that want reference-stable results
// across repeated reads memoize at the call site (the bridge does this per
// log version); the projections themselves only promise value-equal output
// for value-equal input.
//
// Five view models are derived:
//
//   - SessionState: who the current session is and how engaged it has been.
//   - CumulativeMetricsV2 rendering plus aggregate counters, for consumers
//     still reading the legacy telemetry shape.
//   - ContextState: engagement stage and exploration entropy.
//   - MomentContext: flags, cooldowns, and active moments for nudge policy.
//   - StreamState: the conversational query/response timeline.
package projection
