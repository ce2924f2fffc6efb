package stress

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kolkov/threadsync/internal/clock"
	"github.com/kolkov/threadsync/thread"
)

// errProbe is the value the panic probes raise.
var errProbe = errors.New("stress: panic probe")

// panicEvery is the period of joinable threads whose body panics on purpose.
const panicEvery = 100

// RunThreads churns through Iterations thread lifecycles, alternating
// joinable and detached threads, against a Limiter of Workers slots.
// Detached threads hold their slot until their body returns, after their
// handle is gone, so the budget is hit regularly; a spawn refused with
// ErrResourceExhausted is retried after a short backoff. Every
// panicEvery-th joinable body panics and its Finalize must report that
// panic.
//
// Counters: joined, detached, exhausted, panics_recovered, max_spawn_us.
func RunThreads(cfg Config, logger *slog.Logger) (Result, error) {
	cfg = cfg.withDefaults()
	res := newResult("thread")

	limiter := thread.NewLimiter(int64(cfg.Workers))
	attrs := []thread.Attribute{thread.WithLimiter(limiter), thread.WithLogger(logger)}

	var (
		detachedDone sync.WaitGroup
		merr         []error
		joined       int64
		detached     int64
		exhausted    int64
		recovered    int64
		maxSpawn     int64
	)

	spawn := func(fn func(func(), string, ...thread.Attribute) (*thread.Thread, error),
		body func(), name string) (*thread.Thread, error) {
		for {
			start := clock.Nanos()
			t, err := fn(body, name, attrs...)
			if errors.Is(err, thread.ErrResourceExhausted) {
				exhausted++
				time.Sleep(50 * time.Microsecond)
				continue
			}
			if d := clock.Nanos() - start; d > maxSpawn {
				maxSpawn = d
			}
			return t, err
		}
	}

	sw := clock.Start()
	for n := 0; n < cfg.Iterations; n++ {
		if n%2 == 1 {
			detachedDone.Add(1)
			t, err := spawn(thread.Detach, func() {
				defer detachedDone.Done()
				time.Sleep(10 * time.Microsecond)
			}, fmt.Sprintf("churn-d%d", n))
			if err != nil {
				detachedDone.Done()
				merr = append(merr, err)
				break
			}
			if err := t.Finalize(); err != nil {
				merr = append(merr, fmt.Errorf("thread %d: %w", n, err))
			}
			detached++
			continue
		}

		probe := (n/2)%panicEvery == panicEvery-1
		t, err := spawn(thread.Join, func() {
			if probe {
				panic(errProbe)
			}
		}, fmt.Sprintf("churn-j%d", n))
		if err != nil {
			merr = append(merr, err)
			break
		}
		err = t.Finalize()
		switch {
		case probe && errors.Is(err, errProbe):
			recovered++
		case probe:
			merr = append(merr, fmt.Errorf("thread %d: panic not reported, got %v", n, err))
		case err != nil:
			merr = append(merr, fmt.Errorf("thread %d: %w", n, err))
		}
		joined++
	}
	detachedDone.Wait()
	res.Elapsed = sw.Elapsed()

	res.Ops = joined + detached
	res.Counters["joined"] = joined
	res.Counters["detached"] = detached
	res.Counters["exhausted"] = exhausted
	res.Counters["panics_recovered"] = recovered
	res.Counters["max_spawn_us"] = maxSpawn / clock.NanosPerMicro

	return res, joinErrors(merr...)
}
