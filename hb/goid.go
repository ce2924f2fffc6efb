package hb

import "runtime"

// goroutineID returns the id of the calling goroutine.
//
// The id is parsed from the header line of the goroutine's own stack trace,
// "goroutine 123 [running]:". It is only used to key vector clocks, never to
// make scheduling decisions.
//
// Returns:
//   - uint64: Goroutine id, or 0 if the header could not be parsed
func goroutineID() uint64 {
	// Only the first line is needed.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the goroutine id from stack trace bytes.
//
// Expected format: "goroutine 123 [running]:..."
// Returns 0 if the prefix is missing or no digits follow it.
func parseGID(buf []byte) uint64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid uint64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + uint64(c-'0')
	}
	return gid
}
