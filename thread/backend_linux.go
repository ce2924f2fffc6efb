//go:build linux

package thread

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
)

// schedFIFO is SCHED_FIFO from <sched.h>.
const schedFIFO = 1

// errNarrowRange is returned when SCHED_FIFO offers too few levels to keep
// High below Realtime.
var errNarrowRange = errors.New("SCHED_FIFO priority range too narrow")

// schedParam mirrors struct sched_param.
type schedParam struct {
	priority int32
}

// niceValues are the fallback nice values per priority.
var niceValues = map[Priority]int{
	Low:      10,
	Normal:   0,
	High:     -5,
	Realtime: -10,
}

type linuxBackend struct{}

var platform Backend = linuxBackend{}

// SetName implements Backend with prctl(PR_SET_NAME).
func (linuxBackend) SetName(name string) error {
	var buf [maxNameLen + 1]byte
	copy(buf[:maxNameLen], truncateName(name))
	if err := unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(PR_SET_NAME): %w", err)
	}
	return nil
}

// SetPriority implements Backend.
//
// Low only raises the nice value: a SCHED_FIFO thread at any level would
// preempt every normal thread. High and Realtime try SCHED_FIFO and fall back
// to a negative nice value, which needs CAP_SYS_NICE or a matching
// RLIMIT_NICE. When both are refused the returned error lists both causes.
func (linuxBackend) SetPriority(p Priority) error {
	switch p {
	case Normal:
		return nil
	case Low:
		return setNice(p)
	case High, Realtime:
	default:
		return fmt.Errorf("unknown priority %d", p)
	}

	fifoErr := setFIFO(p)
	if fifoErr == nil {
		return nil
	}
	niceErr := setNice(p)
	if niceErr == nil {
		return nil
	}

	var merr *multierror.Error
	merr = multierror.Append(merr, fifoErr, niceErr)
	return merr.ErrorOrNil()
}

// CurrentHandle implements Backend with gettid.
func (linuxBackend) CurrentHandle() (Handle, bool) {
	return Handle(unix.Gettid()), true
}

// fifoLevel maps High or Realtime into [lo, hi] of SCHED_FIFO, keeping one
// level of headroom at both ends. Realtime gets the top level, High two below.
func fifoLevel(p Priority, lo, hi int) (int, error) {
	if hi-lo <= 2 {
		return 0, errNarrowRange
	}
	top, bottom := hi-1, lo+1
	if p == High {
		return max(top-2, bottom), nil
	}
	return top, nil
}

func setFIFO(p Priority) error {
	lo, _, errno := unix.RawSyscall(unix.SYS_SCHED_GET_PRIORITY_MIN, schedFIFO, 0, 0)
	if errno != 0 {
		return fmt.Errorf("sched_get_priority_min: %w", errno)
	}
	hi, _, errno := unix.RawSyscall(unix.SYS_SCHED_GET_PRIORITY_MAX, schedFIFO, 0, 0)
	if errno != 0 {
		return fmt.Errorf("sched_get_priority_max: %w", errno)
	}
	level, err := fifoLevel(p, int(lo), int(hi))
	if err != nil {
		return err
	}

	param := schedParam{priority: int32(level)}
	// pid 0 is the calling thread.
	_, _, errno = unix.RawSyscall(unix.SYS_SCHED_SETSCHEDULER, 0, schedFIFO, uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return fmt.Errorf("sched_setscheduler(SCHED_FIFO, %d): %w", level, errno)
	}
	return nil
}

// setNice sets the nice value of the calling thread. On Linux PRIO_PROCESS
// with a thread id addresses that single thread.
func setNice(p Priority) error {
	nice := niceValues[p]
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice); err != nil {
		return fmt.Errorf("setpriority(%d): %w", nice, err)
	}
	return nil
}
