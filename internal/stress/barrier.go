package stress

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kolkov/threadsync/barrier"
	"github.com/kolkov/threadsync/hb"
	"github.com/kolkov/threadsync/internal/clock"
)

// RunBarrier runs Workers threads through Phases cycles of one
// CyclicBarrier. At the start of every phase each worker checks that all
// workers completed the previous phase.
//
// With Audit set, each worker writes its own slot before the barrier and
// reads every slot after it; the auditor checks those accesses are ordered
// by the barrier's edges.
//
// Counters: cycles, early_leavers.
func RunBarrier(cfg Config, logger *slog.Logger) (Result, error) {
	cfg = cfg.withDefaults()
	res := newResult("barrier")

	var auditor *hb.Auditor
	var opts []barrier.Option
	if cfg.Audit {
		auditor = hb.NewAuditor()
		opts = append(opts, barrier.WithTracer(auditor))
	}
	b := barrier.New(cfg.Workers, opts...)

	completed := make([]atomic.Int32, cfg.Phases)
	var (
		awaits atomic.Int64
		early  atomic.Int64
	)
	fails := newFailures(16)

	slots := make([]string, cfg.Workers)
	for i := range slots {
		slots[i] = fmt.Sprintf("slot-%d", i)
	}

	sw := clock.Start()
	err := runWorkers(cfg.Workers, "bar", logger, func(i int) {
		for p := 0; p < cfg.Phases; p++ {
			if p > 0 {
				if got := completed[p-1].Load(); got != int32(cfg.Workers) {
					early.Add(1)
					fails.add(fmt.Errorf("worker %d entered phase %d with %d/%d done", i, p, got, cfg.Workers))
				}
			}
			if auditor != nil {
				auditor.Write(slots[i])
			}
			completed[p].Add(1)

			if err := b.Await(); err != nil {
				fails.add(fmt.Errorf("worker %d phase %d: %w", i, p, err))
				return
			}
			awaits.Add(1)

			if auditor != nil {
				for _, s := range slots {
					auditor.Read(s)
				}
				// Second rendezvous so nobody overwrites a slot that is
				// still being read.
				if err := b.Await(); err != nil {
					fails.add(fmt.Errorf("worker %d phase %d: %w", i, p, err))
					return
				}
				awaits.Add(1)
			}
		}
	})
	res.Elapsed = sw.Elapsed()

	res.Ops = awaits.Load()
	res.Counters["cycles"] = awaits.Load() / int64(cfg.Workers)
	res.Counters["early_leavers"] = early.Load()

	errs := []error{err, fails.err()}
	if auditor != nil {
		errs = append(errs, auditor.Err())
	}
	return res, joinErrors(errs...)
}
