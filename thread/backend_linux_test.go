//go:build linux

package thread

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// comm reads the kernel name of thread tid.
func comm(tid Handle) (string, error) {
	b, err := os.ReadFile(fmt.Sprintf("/proc/self/task/%d/comm", tid))
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// TestLinux_NameAndHandle verifies the kernel sees the name on the thread's
// own tid, truncated to 15 bytes.
func TestLinux_NameAndHandle(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"short", "short"},
		{"exactly-15-char", "exactly-15-char"},
		{"a-much-longer-thread-name", "a-much-longer-t"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var gotTid int
			var readErr error
			th, err := Join(func() {
				gotTid = unix.Gettid()
				got, readErr = comm(Handle(gotTid))
			}, tt.name)
			require.NoError(t, err)

			h, ok := th.Handle()
			require.True(t, ok)
			require.NoError(t, th.Finalize())

			require.NoError(t, readErr)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Handle(gotTid), h)
		})
	}
}

// TestLinux_CurrentThread names and identifies a goroutine's own locked
// thread without going through Join.
func TestLinux_CurrentThread(t *testing.T) {
	type observed struct {
		handle Handle
		ok     bool
		tid    int
		name   string
		err    error
	}
	ch := make(chan observed, 1)

	go func() {
		// Left locked: the renamed thread exits with this goroutine.
		runtime.LockOSThread()
		var o observed
		o.handle, o.ok = CurrentHandle()
		o.tid = unix.Gettid()
		if o.err = SetCurrentName("self-named-thread"); o.err == nil {
			o.name, o.err = comm(o.handle)
		}
		ch <- o
	}()

	o := <-ch
	require.NoError(t, o.err)
	assert.True(t, o.ok)
	assert.Equal(t, Handle(o.tid), o.handle)
	assert.Equal(t, "self-named-thre", o.name)
}

// TestLinux_CurrentHandleMatchesThread verifies a body sees the handle its
// Thread reports.
func TestLinux_CurrentHandleMatchesThread(t *testing.T) {
	var inside Handle
	th, err := Join(func() { inside, _ = CurrentHandle() }, "whoami")
	require.NoError(t, err)

	h, ok := th.Handle()
	require.True(t, ok)
	require.NoError(t, th.Finalize())
	assert.Equal(t, h, inside)
}

// TestLinux_LowPriority verifies Low only raises the nice value, which
// never needs privileges.
func TestLinux_LowPriority(t *testing.T) {
	logger := &recordingLogger{}
	th, err := Join(func() {}, "low", WithPriority(Low), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, th.Finalize())

	assert.Empty(t, logger.at("warn"))
}

// TestLinux_NormalIsNoop verifies Normal never touches scheduling.
func TestLinux_NormalIsNoop(t *testing.T) {
	assert.NoError(t, linuxBackend{}.SetPriority(Normal))
	assert.Error(t, linuxBackend{}.SetPriority(Priority(0)))
}

// TestFifoLevel tests the mapping into the SCHED_FIFO range.
func TestFifoLevel(t *testing.T) {
	tests := []struct {
		p      Priority
		lo, hi int
		want   int
	}{
		{High, 1, 99, 96},
		{Realtime, 1, 99, 98},
		{High, 0, 5, 2},
		{Realtime, 0, 5, 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%s_%d_%d", tt.p, tt.lo, tt.hi), func(t *testing.T) {
			got, err := fifoLevel(tt.p, tt.lo, tt.hi)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := fifoLevel(High, 1, 3)
	assert.ErrorIs(t, err, errNarrowRange)
}
