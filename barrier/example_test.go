package barrier_test

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kolkov/threadsync/barrier"
)

// Example runs three workers through two phases.
func Example() {
	const workers = 3
	b := barrier.New(workers)
	var phase1 atomic.Int32

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			phase1.Add(1)
			_ = b.Await()
			// Every worker sees all of phase 1 here.
			if phase1.Load() != workers {
				fmt.Println("barrier broken")
			}
			_ = b.Await()
		}()
	}
	wg.Wait()

	fmt.Println(phase1.Load(), b.WaitingThreadCount())

	// Output:
	// 3 0
}
