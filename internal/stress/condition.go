package stress

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kolkov/threadsync/condition"
	"github.com/kolkov/threadsync/internal/clock"
)

// pingPong is a pair of workers handing a turn back and forth.
type pingPong struct {
	mu   sync.Mutex
	cond condition.Condition
	turn int
}

// RunCondition pairs up Workers threads; each pair passes a turn back and
// forth Iterations times through one Condition. Every handoff depends on a
// single Signal, so a lost wakeup shows up as a wait running into
// WakeupTimeout.
//
// Counters: handoffs, timeouts, max_handoff_us.
func RunCondition(cfg Config, logger *slog.Logger) (Result, error) {
	cfg = cfg.withDefaults()
	res := newResult("condition")

	pairs := max(cfg.Workers/2, 1)
	games := make([]*pingPong, pairs)
	for i := range games {
		games[i] = &pingPong{}
	}

	var (
		handoffs   atomic.Int64
		timeouts   atomic.Int64
		maxHandoff atomic.Int64
	)
	fails := newFailures(pairs * 2)

	sw := clock.Start()
	err := runWorkers(pairs*2, "cond", logger, func(i int) {
		g, side := games[i/2], i%2
		var slowest int64
		defer func() { storeMax(&maxHandoff, slowest) }()

		for r := 0; r < cfg.Iterations; r++ {
			start := clock.Nanos()
			g.mu.Lock()
			for g.turn%2 != side {
				if g.cond.WaitFor(&g.mu, cfg.WakeupTimeout) == condition.Timeout && g.turn%2 != side {
					timeouts.Add(1)
					g.mu.Unlock()
					fails.add(fmt.Errorf("pair %d side %d: no wakeup within %s at round %d",
						i/2, side, cfg.WakeupTimeout, r))
					return
				}
			}
			g.turn++
			g.mu.Unlock()
			g.cond.Signal()

			handoffs.Add(1)
			if d := clock.Nanos() - start; d > slowest {
				slowest = d
			}
		}
	})
	res.Elapsed = sw.Elapsed()

	res.Ops = handoffs.Load()
	res.Counters["handoffs"] = handoffs.Load()
	res.Counters["timeouts"] = timeouts.Load()
	res.Counters["max_handoff_us"] = maxHandoff.Load() / clock.NanosPerMicro

	return res, joinErrors(err, fails.err())
}

// storeMax raises m to v if v is larger.
func storeMax(m *atomic.Int64, v int64) {
	for {
		cur := m.Load()
		if v <= cur || m.CompareAndSwap(cur, v) {
			return
		}
	}
}
