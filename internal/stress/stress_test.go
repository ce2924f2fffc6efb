package stress

import (
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() Config {
	return Config{
		Workers:    4,
		Iterations: 300,
		Readers:    3,
		Writers:    2,
		Phases:     50,
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Config{Workers: 2, Audit: true}.withDefaults()
	want := DefaultConfig()
	want.Workers = 2
	want.Audit = true
	assert.Equal(t, want, got)
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"barrier", "condition", "rwlock", "thread"}, Names())
	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestResult_Throughput(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Result{Ops: 10}.Throughput())
	assert.InDelta(t, 50.0, Result{Ops: 100, Elapsed: 2 * time.Second}.Throughput(), 1e-9)
}

func TestRunCondition(t *testing.T) {
	t.Parallel()

	res, err := RunCondition(smallConfig(), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(4*300), res.Ops)
	assert.Zero(t, res.Counters["timeouts"])
	assert.NotEqual(t, uuid.Nil, res.RunID)
}

func TestRunRWLock(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Audit = true
	res, err := RunRWLock(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(2*300), res.Counters["writes"])
	assert.Equal(t, int64(3*300), res.Counters["reads"])
	assert.Zero(t, res.Counters["exclusion_breaches"])
	assert.Zero(t, res.Counters["hb_violations"])
}

func TestRunBarrier(t *testing.T) {
	t.Parallel()

	for _, audit := range []bool{false, true} {
		cfg := smallConfig()
		cfg.Audit = audit
		res, err := RunBarrier(cfg, quietLogger())
		require.NoError(t, err)
		assert.Zero(t, res.Counters["early_leavers"])

		cycles := int64(50)
		if audit {
			cycles *= 2
		}
		assert.Equal(t, cycles, res.Counters["cycles"], "audit=%v", audit)
	}
}

func TestRunThreads(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Iterations = 400
	res, err := RunThreads(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.Counters["joined"])
	assert.Equal(t, int64(200), res.Counters["detached"])
	assert.Equal(t, int64(2), res.Counters["panics_recovered"])
}

func TestRun_AggregatesUnknown(t *testing.T) {
	t.Parallel()

	results, err := Run([]string{"condition", "bogus", "nope"}, smallConfig(), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown scenario "bogus"`)
	assert.Contains(t, err.Error(), `unknown scenario "nope"`)
	require.Len(t, results, 1)
	assert.Equal(t, "condition", results[0].Scenario)
}

func TestCollectProcessStats(t *testing.T) {
	t.Parallel()

	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("process stats are only checked on linux and darwin")
	}

	stats, err := CollectProcessStats()
	require.NoError(t, err)
	assert.Positive(t, stats.PID)
	assert.Positive(t, stats.Threads)
	assert.Positive(t, stats.RSS)
	assert.Positive(t, stats.LogicalCPU)
}
