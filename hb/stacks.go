package hb

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

// maxFrames is the depth of a captured call site.
const maxFrames = 8

// stack is a fixed-size captured call site.
type stack struct {
	pc [maxFrames]uintptr
}

// depot stores call sites once per distinct stack, keyed by an FNV-1a hash
// of their program counters.
//
// Thread Safety: capture and lookup are safe for concurrent use.
type depot struct {
	stacks sync.Map // uint64 -> *stack
}

// capture records the current call stack, starting skip frames above the
// caller of capture, and returns its key. Key 0 means no stack was available.
func (d *depot) capture(skip int) uint64 {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	key := hashPCs(pcs[:n])
	if _, ok := d.stacks.Load(key); !ok {
		d.stacks.Store(key, &stack{pc: pcs})
	}
	return key
}

// lookup returns the stack stored under key, or nil.
func (d *depot) lookup(key uint64) *stack {
	if key == 0 {
		return nil
	}
	v, ok := d.stacks.Load(key)
	if !ok {
		return nil
	}
	return v.(*stack)
}

// size returns the number of distinct stacks stored.
func (d *depot) size() int {
	n := 0
	d.stacks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func hashPCs(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, pc := range pcs {
		for i := range b {
			b[i] = byte(pc >> (8 * i))
		}
		_, _ = h.Write(b[:])
	}
	return h.Sum64()
}

// format renders the stack one frame per two lines, runtime frames
// omitted:
//
//	main.worker()
//	    /path/to/file.go:45
func (s *stack) format() string {
	if s == nil {
		return "  <unknown>\n"
	}

	var n int
	for n < maxFrames && s.pc[n] != 0 {
		n++
	}
	frames := runtime.CallersFrames(s.pc[:n])

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC != 0 && !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&buf, "  %s()\n      %s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}
