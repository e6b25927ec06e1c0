package eventlog

import "time"

// Clock supplies event timestamps. The production implementation reads the
// wall clock; tests substitute a deterministic one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default wall-clock source.
var SystemClock Clock = systemClock{}

// millis converts a time to unix epoch milliseconds, the log's timestamp unit.
func millis(t time.Time) int64 { return t.UnixMilli() }
