package hb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:noinline
func captureHere(d *depot) uint64 {
	return d.capture(0)
}

// TestDepot_Deduplicates verifies one entry per distinct call site.
func TestDepot_Deduplicates(t *testing.T) {
	d := &depot{}

	var keys []uint64
	for i := 0; i < 3; i++ {
		keys = append(keys, captureHere(d))
	}
	other := d.capture(0)

	require.NotZero(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, keys[0], keys[2])
	assert.NotEqual(t, keys[0], other)
	assert.Equal(t, 2, d.size())
}

// TestDepot_Format verifies frames name the capturing function.
func TestDepot_Format(t *testing.T) {
	d := &depot{}
	key := captureHere(d)

	out := d.lookup(key).format()
	assert.Contains(t, out, "hb.captureHere()")
	assert.Contains(t, out, "stacks_test.go:")
	assert.False(t, strings.Contains(out, "runtime.Callers"))
}

// TestDepot_Missing verifies unknown keys.
func TestDepot_Missing(t *testing.T) {
	d := &depot{}
	assert.Nil(t, d.lookup(0))
	assert.Nil(t, d.lookup(12345))

	var s *stack
	assert.Equal(t, "  <unknown>\n", s.format())
}

//go:noinline
func writeShared(a *Auditor) { a.Write("shared") }

// TestViolation_Report verifies both call sites reach the report.
func TestViolation_Report(t *testing.T) {
	a := NewAuditor()
	runSequenced(
		func() { writeShared(a) },
		func() { writeShared(a) },
	)

	violations := a.Violations()
	require.Len(t, violations, 1)
	v := violations[0]
	assert.Contains(t, v.CurrentStack, "hb.writeShared()")
	assert.Contains(t, v.PreviousStack, "hb.writeShared()")

	report := v.Report()
	assert.Contains(t, report, `write-write on "shared"`)
	assert.Contains(t, report, "Previous access by goroutine")
}
