package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EstimateRow is one archived metric estimate. Timings are NULL for
// failed metrics; ErrorCode is "" for successful ones.
type EstimateRow struct {
	RunID         string
	Metric        string
	TimingMs      sql.NullFloat64
	OptimisticMs  sql.NullFloat64
	PessimisticMs sql.NullFloat64
	ErrorCode     string
}

// ListEstimates returns a run's archived estimates in metric order.
func (s *Store) ListEstimates(ctx context.Context, runID string) ([]EstimateRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, metric, timing_ms, optimistic_ms, pessimistic_ms, error_code
		 FROM estimates WHERE run_id = ? ORDER BY metric`, runID)
	if err != nil {
		return nil, fmt.Errorf("list estimates for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []EstimateRow
	for rows.Next() {
		var r EstimateRow
		if err := rows.Scan(&r.RunID, &r.Metric, &r.TimingMs, &r.OptimisticMs, &r.PessimisticMs, &r.ErrorCode); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSimulations returns a run's archived simulation results in label
// order.
func (s *Store) ListSimulations(ctx context.Context, runID string) ([]SimulationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, label, graph_fingerprint, params_key, node_count, completion_ms
		 FROM simulations WHERE run_id = ? ORDER BY label, graph_fingerprint`, runID)
	if err != nil {
		return nil, fmt.Errorf("list simulations for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []SimulationRow
	for rows.Next() {
		var r SimulationRow
		if err := rows.Scan(&r.RunID, &r.Label, &r.GraphFingerprint, &r.ParamsKey, &r.NodeCount, &r.CompletionMs); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
