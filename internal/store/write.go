package store

import (
	"context"
	"fmt"

	"github.com/roach88/lantern/internal/metrics"
)

// SimulationRow is one archived simulation result.
type SimulationRow struct {
	RunID            string
	Label            string
	GraphFingerprint string
	ParamsKey        string
	NodeCount        int
	CompletionMs     float64
}

// WriteSimulation archives one simulation result. Idempotent for the same
// (run, label, fingerprint, params) key: replays overwrite identically.
func (s *Store) WriteSimulation(ctx context.Context, row SimulationRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO simulations (run_id, label, graph_fingerprint, params_key, node_count, completion_ms)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, label, graph_fingerprint, params_key)
		 DO UPDATE SET node_count = excluded.node_count, completion_ms = excluded.completion_ms`,
		row.RunID, row.Label, row.GraphFingerprint, row.ParamsKey, row.NodeCount, row.CompletionMs,
	)
	if err != nil {
		return fmt.Errorf("write simulation %s/%s: %w", row.RunID, row.Label, err)
	}
	return nil
}

// WriteEstimate archives one metric result, successful or failed. Failed
// metrics persist their error code with NULL timings.
func (s *Store) WriteEstimate(ctx context.Context, runID string, result metrics.Result) error {
	if result.Err != nil {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO estimates (run_id, metric, timing_ms, optimistic_ms, pessimistic_ms, error_code)
			 VALUES (?, ?, NULL, NULL, NULL, ?)
			 ON CONFLICT (run_id, metric) DO UPDATE SET error_code = excluded.error_code`,
			runID, string(result.Kind), result.ErrorCode(),
		)
		if err != nil {
			return fmt.Errorf("write estimate error %s/%s: %w", runID, result.Kind, err)
		}
		return nil
	}

	m := result.Metric
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO estimates (run_id, metric, timing_ms, optimistic_ms, pessimistic_ms, error_code)
		 VALUES (?, ?, ?, ?, ?, '')
		 ON CONFLICT (run_id, metric)
		 DO UPDATE SET timing_ms = excluded.timing_ms,
		               optimistic_ms = excluded.optimistic_ms,
		               pessimistic_ms = excluded.pessimistic_ms,
		               error_code = ''`,
		runID, string(m.Kind), m.TimingMs, m.Optimistic.TimingMs, m.Pessimistic.TimingMs,
	)
	if err != nil {
		return fmt.Errorf("write estimate %s/%s: %w", runID, result.Kind, err)
	}
	return nil
}
