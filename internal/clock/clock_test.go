package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic(t *testing.T) {
	prev := Nanos()
	for i := 0; i < 1000; i++ {
		now := Nanos()
		assert.GreaterOrEqual(t, now, prev)
		prev = now
	}
}

func TestUnits(t *testing.T) {
	n := Nanos()
	us := Micros()
	ms := Millis()

	assert.GreaterOrEqual(t, us, n/NanosPerMicro)
	assert.GreaterOrEqual(t, ms, n/NanosPerMilli)
	assert.LessOrEqual(t, ms, us/1000+1)
}

func TestDeadline(t *testing.T) {
	d := Deadline(Nanos() + int64(50*time.Millisecond))
	until := time.Until(d)

	assert.Greater(t, until, 40*time.Millisecond)
	assert.LessOrEqual(t, until, 50*time.Millisecond)
}

func TestStopwatch(t *testing.T) {
	sw := Start()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, sw.Elapsed(), 5*time.Millisecond)
}

func TestSince(t *testing.T) {
	start := Nanos()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, Since(start), 2*time.Millisecond)
}
