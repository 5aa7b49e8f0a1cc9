package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad profile", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", WrapExitError(ExitCommandError, "bad path", nil))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError_Message(t *testing.T) {
	err := WrapExitError(ExitFailure, "simulation failed", errors.New("boom"))
	assert.Equal(t, "simulation failed: boom", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "boom")

	bare := &ExitError{Code: ExitFailure, Message: "no details"}
	assert.Equal(t, "no details", bare.Error())
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Success(map[string]int{"nodes": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_SuccessJSONOnlySilentInText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.SuccessJSONOnly(map[string]int{"nodes": 3}))
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Error("NO_CPU_IDLE_PERIOD", "main thread never quieted", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_CPU_IDLE_PERIOD", resp.Error.Code)
}

func TestPrintEstimateTable_WritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	printEstimateTable(&buf, estimateReport{
		RunID:   "run-1",
		URL:     "http://example.com/",
		Profile: "baseline",
		Estimates: []estimateRowReport{
			{Metric: "fcp", TimingMs: 325, OptimisticMs: 250, PessimisticMs: 400},
			{Metric: "tti", ErrorCode: "NO_CPU_IDLE_PERIOD"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "325.0")
	assert.Contains(t, out, "NO_CPU_IDLE_PERIOD")
}

func TestPrintTimingsTable_WritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	printTimingsTable(&buf, simulateReport{
		Profile:      "baseline",
		CompletionMs: 400,
		Nodes: []nodeReport{
			{NodeID: 0, Kind: "network", Name: "http://example.com/", StartMs: 0, EndMs: 200},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Simulated completion: 400.0ms")
	assert.Contains(t, out, "http://example.com/")
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Error("TRACE_TOO_SHORT", "trace ended early", nil))
	assert.Contains(t, buf.String(), "TRACE_TOO_SHORT")
	assert.Contains(t, buf.String(), "trace ended early")
}
