//go:build linux

package futex

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futex(2) operations. The private flag tells the kernel the word is not
// shared with other processes, which lets it skip the mm lookup.
const (
	futexPrivateFlag = 128
	futexWaitPrivate = 0 | futexPrivateFlag
	futexWakePrivate = 1 | futexPrivateFlag
)

// Wait blocks the calling OS thread while *addr == val.
//
// A zero deadline means no deadline. Wait reports whether it returned because
// the deadline passed; false covers a wakeup, a mismatched value (EAGAIN) and
// an interrupted sleep (EINTR), all of which the caller treats as a possibly
// spurious wakeup.
//
// Parameters:
//   - addr: Address of the state word (must stay valid while sleeping)
//   - val: Snapshot the caller took before releasing its lock
//   - deadline: Absolute deadline, or the zero time for none
//
// Returns:
//   - bool: true iff the sleep ended because the deadline passed
func Wait(addr *uint32, val uint32, deadline time.Time) bool {
	var ts *unix.Timespec
	if !deadline.IsZero() {
		// FUTEX_WAIT takes a relative CLOCK_MONOTONIC timeout. time.Until uses
		// the monotonic reading of deadline when it has one.
		d := time.Until(deadline)
		if d <= 0 {
			return true
		}
		rel := unix.NsecToTimespec(d.Nanoseconds())
		ts = &rel
	}

	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitPrivate,
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0, 0,
	)
	return errno == unix.ETIMEDOUT
}

// Wake wakes up to n threads sleeping on addr and returns how many were woken.
//
// Wake never fails from the caller's point of view: an error from the kernel
// (only possible for an invalid address) is reported as zero woken threads.
func Wake(addr *uint32, n int) int {
	r, _, errno := unix.RawSyscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakePrivate,
		uintptr(clampCount(n)),
		0, 0, 0,
	)
	if errno != 0 {
		return 0
	}
	return int(r)
}
