package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLimiter_Clamp tests the lower bound of the budget.
func TestNewLimiter_Clamp(t *testing.T) {
	assert.Equal(t, int64(1), NewLimiter(0).Max())
	assert.Equal(t, int64(1), NewLimiter(-4).Max())
	assert.Equal(t, int64(3), NewLimiter(3).Max())
	assert.Equal(t, int64(DefaultMaxThreads), DefaultLimiter().Max())
}

// TestLimiter_Exhaustion verifies spawn fails once the budget is used up and
// succeeds again after a thread exits.
func TestLimiter_Exhaustion(t *testing.T) {
	l := NewLimiter(2)
	release := make(chan struct{})
	body := func() { <-release }

	a, err := Join(body, "a", WithLimiter(l), WithBackend(&fakeBackend{}))
	require.NoError(t, err)
	b, err := Join(body, "b", WithLimiter(l), WithBackend(&fakeBackend{}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.Live())

	c, err := Join(body, "c", WithLimiter(l), WithBackend(&fakeBackend{}))
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.Contains(t, err.Error(), `"c"`)
	assert.Nil(t, c)

	close(release)
	require.NoError(t, a.Finalize())
	require.NoError(t, b.Finalize())
	assert.Zero(t, l.Live())

	d, err := Join(func() {}, "d", WithLimiter(l), WithBackend(&fakeBackend{}))
	require.NoError(t, err)
	assert.NoError(t, d.Finalize())
}

// TestLimiter_Nil verifies a nil limiter admits everything.
func TestLimiter_Nil(t *testing.T) {
	var l *Limiter
	for i := 0; i < 3; i++ {
		require.NoError(t, l.acquire())
	}
	l.release()

	th, err := Join(func() {}, "unbounded", WithLimiter(nil), WithBackend(&fakeBackend{}))
	require.NoError(t, err)
	assert.NoError(t, th.Finalize())
}

// TestLimiter_SlotFreeAfterFinalize verifies a joined thread has returned its
// slot by the time Finalize returns, so a budget of one never refuses the
// next spawn.
func TestLimiter_SlotFreeAfterFinalize(t *testing.T) {
	l := NewLimiter(1)
	for i := 0; i < 2000; i++ {
		th, err := Join(func() {}, "serial", WithLimiter(l), WithBackend(&fakeBackend{}))
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, th.Finalize())
		require.Zero(t, l.Live(), "iteration %d", i)
	}
}
