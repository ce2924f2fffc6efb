package hb_test

import (
	"fmt"

	"github.com/kolkov/threadsync/hb"
)

// Example reports a write that no synchronization orders.
func Example() {
	a := hb.NewAuditor()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Write("counter")
	}()
	<-done

	// The channel orders the two writes, but the auditor was never told.
	a.Write("counter")

	for _, v := range a.Violations() {
		fmt.Println(v.Kind, v.Var)
	}

	// Output:
	// write-write counter
}

// ExampleVectorClock compares two clocks.
func ExampleVectorClock() {
	a := hb.VectorClock{1: 2, 2: 1}
	b := a.Clone()
	b.Increment(2)

	fmt.Println(a, b, a.HappensBefore(b), b.HappensBefore(a))

	// Output:
	// {1:2, 2:1} {1:2, 2:2} true false
}
