package futex

import "math"

// All wakes every sleeper when passed to Wake.
const All = math.MaxInt32

// clampCount maps a caller supplied wake count onto the kernel's int32 range.
// Zero and negative counts mean "everybody".
func clampCount(n int) int {
	if n <= 0 || n > All {
		return All
	}
	return n
}
