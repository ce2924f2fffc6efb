// Package clock provides monotonic time queries relative to process start.
//
// All values come from the monotonic reading carried by time.Time, so they
// never go backwards when the wall clock is adjusted.
package clock

import "time"

// Unit conversion factors.
const (
	NanosPerMicro = int64(time.Microsecond)
	NanosPerMilli = int64(time.Millisecond)
	NanosPerSec   = int64(time.Second)
)

// epoch is the reference point every query is measured from.
var epoch = time.Now()

// Nanos returns monotonic nanoseconds since process start.
func Nanos() int64 {
	return int64(time.Since(epoch))
}

// Micros returns monotonic microseconds since process start.
func Micros() int64 {
	return Nanos() / NanosPerMicro
}

// Millis returns monotonic milliseconds since process start.
func Millis() int64 {
	return Nanos() / NanosPerMilli
}

// Since returns the time elapsed since the Nanos timestamp nanos.
func Since(nanos int64) time.Duration {
	return time.Duration(Nanos() - nanos)
}

// Deadline converts a Nanos timestamp back into a time.Time suitable for
// Condition.WaitUntil.
func Deadline(nanos int64) time.Time {
	return epoch.Add(time.Duration(nanos))
}

// Stopwatch measures elapsed monotonic time.
type Stopwatch struct {
	start int64
}

// Start returns a running stopwatch.
func Start() Stopwatch {
	return Stopwatch{start: Nanos()}
}

// Elapsed returns the time since Start.
func (s Stopwatch) Elapsed() time.Duration {
	return Since(s.start)
}
