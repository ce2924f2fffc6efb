//go:build !linux

package futex

import "time"

// parking is the process-wide table standing in for the kernel wait queues.
var parking = newTable()

// Wait blocks the calling goroutine while *addr == val.
// See futex_linux.go for the full contract.
func Wait(addr *uint32, val uint32, deadline time.Time) bool {
	return parking.wait(addr, val, deadline)
}

// Wake wakes up to n goroutines sleeping on addr and returns how many were woken.
func Wake(addr *uint32, n int) int {
	return parking.wake(addr, clampCount(n))
}
