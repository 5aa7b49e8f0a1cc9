package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lantern/internal/metrics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "lantern.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRunRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, "run-1", "http://example.com/"))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "http://example.com/", run.URL)
	assert.NotEmpty(t, run.CreatedAt)
}

func TestReadRun_Missing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ReadRun(context.Background(), "nope")
	assert.Error(t, err)
}

func TestCreateRun_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "http://example.com/"))
	assert.Error(t, s.CreateRun(ctx, "run-1", "http://example.com/"))
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-a", "http://a.example/"))
	require.NoError(t, s.CreateRun(ctx, "run-b", "http://b.example/"))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestWriteSimulation_UpsertsOnReplay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "http://example.com/"))

	row := SimulationRow{
		RunID:            "run-1",
		Label:            "full",
		GraphFingerprint: "abc123",
		ParamsKey:        "rtt=150.000",
		NodeCount:        12,
		CompletionMs:     1234.5,
	}
	require.NoError(t, s.WriteSimulation(ctx, row))

	row.CompletionMs = 2000
	require.NoError(t, s.WriteSimulation(ctx, row))

	sims, err := s.ListSimulations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, sims, 1)
	assert.InDelta(t, 2000.0, sims[0].CompletionMs, 1e-9)
	assert.Equal(t, 12, sims[0].NodeCount)
}

func TestWriteSimulation_UnknownRunViolatesForeignKey(t *testing.T) {
	s := openTestStore(t)
	err := s.WriteSimulation(context.Background(), SimulationRow{
		RunID: "ghost", Label: "full", GraphFingerprint: "x", ParamsKey: "y",
	})
	assert.Error(t, err)
}

func TestWriteEstimate_Success(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "http://example.com/"))

	result := metrics.Result{
		Kind: metrics.FirstContentfulPaint,
		Metric: &metrics.MetricResult{
			Kind:        metrics.FirstContentfulPaint,
			TimingMs:    325,
			Optimistic:  metrics.Estimate{TimingMs: 250},
			Pessimistic: metrics.Estimate{TimingMs: 400},
		},
	}
	require.NoError(t, s.WriteEstimate(ctx, "run-1", result))

	rows, err := s.ListEstimates(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, string(metrics.FirstContentfulPaint), rows[0].Metric)
	require.True(t, rows[0].TimingMs.Valid)
	assert.InDelta(t, 325.0, rows[0].TimingMs.Float64, 1e-9)
	assert.InDelta(t, 250.0, rows[0].OptimisticMs.Float64, 1e-9)
	assert.InDelta(t, 400.0, rows[0].PessimisticMs.Float64, 1e-9)
	assert.Empty(t, rows[0].ErrorCode)
}

func TestWriteEstimate_FailurePersistsCodeWithNullTimings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "http://example.com/"))

	result := metrics.Result{
		Kind: metrics.TimeToInteractive,
		Err:  &metrics.NoIdlePeriodError{Code: metrics.NoCPUIdlePeriod, SearchStartMs: 400, TraceEndMs: 3000},
	}
	require.NoError(t, s.WriteEstimate(ctx, "run-1", result))

	rows, err := s.ListEstimates(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].TimingMs.Valid)
	assert.False(t, rows[0].OptimisticMs.Valid)
	assert.Equal(t, "NO_CPU_IDLE_PERIOD", rows[0].ErrorCode)
}

func TestWriteEstimate_RetryAfterFailureOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "http://example.com/"))

	require.NoError(t, s.WriteEstimate(ctx, "run-1", metrics.Result{
		Kind: metrics.TimeToInteractive,
		Err:  errors.New("boom"),
	}))
	require.NoError(t, s.WriteEstimate(ctx, "run-1", metrics.Result{
		Kind: metrics.TimeToInteractive,
		Metric: &metrics.MetricResult{
			Kind:        metrics.TimeToInteractive,
			TimingMs:    6000,
			Optimistic:  metrics.Estimate{TimingMs: 400},
			Pessimistic: metrics.Estimate{TimingMs: 400},
		},
	}))

	rows, err := s.ListEstimates(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].TimingMs.Valid)
	assert.InDelta(t, 6000.0, rows[0].TimingMs.Float64, 1e-9)
	assert.Empty(t, rows[0].ErrorCode)
}
