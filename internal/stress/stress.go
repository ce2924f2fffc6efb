// Package stress runs load scenarios against the synchronization
// primitives and reports throughput and correctness.
//
// Every scenario runs its workers on dedicated OS threads (package thread),
// checks the invariants of the primitive it exercises while it runs, and
// returns a Result. Invariant breaches are returned as errors; a run of
// several scenarios aggregates them with go-multierror.
package stress

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Config sizes the scenarios. Zero fields take the value of DefaultConfig.
type Config struct {
	// Workers is the number of threads in the condition, barrier and
	// thread scenarios.
	Workers int `yaml:"workers"`
	// Iterations is the number of operations per worker.
	Iterations int `yaml:"iterations"`
	// Readers and Writers size the rwlock scenario.
	Readers int `yaml:"readers"`
	Writers int `yaml:"writers"`
	// Phases is the number of barrier cycles.
	Phases int `yaml:"phases"`
	// Audit checks happens-before edges with an hb.Auditor where a
	// scenario supports it. It slows the run down considerably.
	Audit bool `yaml:"audit"`
	// WakeupTimeout bounds every single wait; a wait that exceeds it is
	// reported as a lost wakeup instead of hanging the run.
	WakeupTimeout time.Duration `yaml:"wakeup_timeout"`
}

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		Iterations:    10000,
		Readers:       6,
		Writers:       2,
		Phases:        1000,
		WakeupTimeout: 10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.Readers <= 0 {
		c.Readers = d.Readers
	}
	if c.Writers <= 0 {
		c.Writers = d.Writers
	}
	if c.Phases <= 0 {
		c.Phases = d.Phases
	}
	if c.WakeupTimeout <= 0 {
		c.WakeupTimeout = d.WakeupTimeout
	}
	return c
}

// Result is the outcome of one scenario run.
type Result struct {
	// Scenario is the registered scenario name.
	Scenario string `json:"scenario" yaml:"scenario"`
	// RunID identifies the run in logs and reports.
	RunID uuid.UUID `json:"run_id" yaml:"run_id"`
	// Ops is the number of primitive operations performed.
	Ops int64 `json:"ops" yaml:"ops"`
	// Elapsed is the wall time of the run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	// Counters holds scenario-specific measurements.
	Counters map[string]int64 `json:"counters,omitempty" yaml:"counters,omitempty"`
}

// Throughput returns operations per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// Scenario runs one load pattern.
type Scenario func(cfg Config, logger *slog.Logger) (Result, error)

var scenarios = map[string]Scenario{
	"condition": RunCondition,
	"rwlock":    RunRWLock,
	"barrier":   RunBarrier,
	"thread":    RunThreads,
}

// Names returns the registered scenario names in sorted order.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named scenario.
func Lookup(name string) (Scenario, bool) {
	s, ok := scenarios[name]
	return s, ok
}

// Run executes the named scenarios one after another.
//
// Parameters:
//   - names: Scenario names; see Names
//   - cfg: Sizes; zero fields take defaults
//   - logger: Destination of progress records
//
// Returns:
//   - []Result: Results of every scenario that ran, in order
//   - error: All scenario failures, aggregated; nil if every scenario passed
func Run(names []string, cfg Config, logger *slog.Logger) ([]Result, error) {
	var (
		results []Result
		merr    *multierror.Error
	)
	for _, name := range names {
		s, ok := Lookup(name)
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("unknown scenario %q", name))
			continue
		}

		l := logger.With("scenario", name)
		l.Info("scenario started")
		res, err := s(cfg, l)
		res.Scenario = name
		results = append(results, res)
		if err != nil {
			l.Error("scenario failed", "err", err)
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", name, err))
			continue
		}
		l.Info("scenario finished",
			"run_id", res.RunID,
			"ops", res.Ops,
			"elapsed", res.Elapsed,
			"ops_per_sec", int64(res.Throughput()))
	}
	return results, merr.ErrorOrNil()
}

// newResult starts a Result for a run.
func newResult(name string) Result {
	return Result{
		Scenario: name,
		RunID:    uuid.New(),
		Counters: make(map[string]int64),
	}
}
