package stress

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/kolkov/threadsync/thread"
)

// runWorkers runs body(0..n-1) on n joinable threads named prefix-i and
// waits for all of them.
//
// A spawn failure stops spawning; threads already running are still joined.
// Spawn failures and panics are aggregated into the returned error.
func runWorkers(n int, prefix string, logger *slog.Logger, body func(i int)) error {
	var merr *multierror.Error

	threads := make([]*thread.Thread, 0, n)
	for i := 0; i < n; i++ {
		i := i
		t, err := thread.Join(func() { body(i) }, fmt.Sprintf("%s-%d", prefix, i),
			thread.WithLogger(logger))
		if err != nil {
			merr = multierror.Append(merr, err)
			break
		}
		threads = append(threads, t)
	}

	for _, t := range threads {
		if err := t.Finalize(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

// failures collects invariant breaches from concurrent workers.
type failures struct {
	ch chan error
}

func newFailures(capacity int) *failures {
	return &failures{ch: make(chan error, capacity)}
}

// add records err unless the buffer is full: the first breaches are enough
// to diagnose a run.
func (f *failures) add(err error) {
	select {
	case f.ch <- err:
	default:
	}
}

// err drains the collected breaches. Call it after every worker has finished.
func (f *failures) err() error {
	close(f.ch)
	var merr *multierror.Error
	for err := range f.ch {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

// joinErrors aggregates the non-nil errors.
func joinErrors(errs ...error) error {
	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
