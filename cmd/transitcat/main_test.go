package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busnet/transitcat/internal/appconf"
)

const sampleDocument = `{
  "base_requests": [
    {"type": "Stop", "name": "Harbour", "latitude": 43.587795, "longitude": 39.716901,
     "road_distances": {"Market": 3000}},
    {"type": "Stop", "name": "Market", "latitude": 43.581969, "longitude": 39.719848},
    {"type": "Bus", "name": "14", "stops": ["Harbour", "Market"], "is_roundtrip": false}
  ],
  "routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
  "stat_requests": [
    {"id": 1, "type": "Bus", "name": "14"},
    {"id": 2, "type": "Stop", "name": "Market"},
    {"id": 3, "type": "Stop", "name": "Lighthouse"},
    {"id": 4, "type": "Route", "from": "Harbour", "to": "Market"},
    {"id": 5, "type": "Map"}
  ]
}`

// baseArgs isolates a run from any .env file in the working directory.
func baseArgs(t *testing.T, extra ...string) []string {
	t.Helper()
	return append([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")}, extra...)
}

func decodeAnswers(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var answers []map[string]any
	require.NoError(t, json.Unmarshal(data, &answers), "response: %s", data)
	return answers
}

func TestRunAnswersSampleDocument(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(baseArgs(t), strings.NewReader(sampleDocument), &stdout, &stderr)
	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())

	answers := decodeAnswers(t, stdout.Bytes())
	require.Len(t, answers, 5)

	bus := answers[0]
	assert.Equal(t, float64(1), bus["request_id"])
	assert.Equal(t, float64(6000), bus["route_length"])
	assert.Equal(t, float64(3), bus["stop_count"])
	assert.Equal(t, float64(2), bus["unique_stop_count"])
	assert.Greater(t, bus["curvature"].(float64), 1.0)

	assert.Equal(t, []any{"14"}, answers[1]["buses"])
	assert.Equal(t, "not found", answers[2]["error_message"])

	route := answers[3]
	assert.InDelta(t, 10.5, route["total_time"].(float64), 1e-9)
	items := route["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Wait", items[0].(map[string]any)["type"])
	assert.Equal(t, "Bus", items[1].(map[string]any)["type"])

	// No render settings in the document.
	assert.Equal(t, "not found", answers[4]["error_message"])

	logs := stderr.String()
	assert.Contains(t, logs, `"run_id"`)
	assert.Contains(t, logs, "run_complete")
}

func TestRunGzipFilesAndMetrics(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "requests.json.gz")
	out := filepath.Join(dir, "answers.json.gz")
	prom := filepath.Join(dir, "run.prom")

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write([]byte(sampleDocument))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(in, compressed.Bytes(), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(baseArgs(t, "-in", in, "-out", out, "-metrics-file", prom, "-indent", "2"),
		strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	assert.Empty(t, stdout.String())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	var plain bytes.Buffer
	_, err = plain.ReadFrom(zr)
	require.NoError(t, err)
	assert.Contains(t, plain.String(), "\n  {")
	assert.Len(t, decodeAnswers(t, plain.Bytes()), 5)

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "transitcat_requests_total")
	assert.Contains(t, string(metrics), "transitcat_graph_vertices 4")
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		input    string
		wantCode int
		wantLog  string
	}{
		{
			name:     "malformed document",
			input:    `{"base_requests": [`,
			wantCode: exitFailure,
			wantLog:  "run_failed",
		},
		{
			name:     "unknown base request type",
			input:    `{"base_requests": [{"type": "Tram", "name": "T1"}]}`,
			wantCode: exitFailure,
			wantLog:  "unknown base request type",
		},
		{
			name: "route with unknown stop",
			input: `{"base_requests": [
				{"type": "Bus", "name": "7", "stops": ["Nowhere"], "is_roundtrip": true}
			]}`,
			wantCode: exitFailure,
			wantLog:  "Nowhere",
		},
		{
			name:     "unknown flag",
			args:     []string{"-bogus"},
			wantCode: exitUsage,
			wantLog:  "flag provided but not defined",
		},
		{
			name:     "stray argument",
			args:     []string{"extra"},
			wantCode: exitUsage,
			wantLog:  "unexpected arguments",
		},
		{
			name:     "invalid environment",
			args:     []string{"-env", "staging"},
			input:    `{}`,
			wantCode: exitFailure,
			wantLog:  "configuration error",
		},
		{
			name:     "missing input file",
			args:     []string{"-in", "/nonexistent/requests.json"},
			wantCode: exitFailure,
			wantLog:  "failed to open request document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(baseArgs(t, tt.args...), strings.NewReader(tt.input), &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr.String(), tt.wantLog)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunEmptyDocument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(baseArgs(t), strings.NewReader(`{}`), &stdout, &stderr)
	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	assert.JSONEq(t, `[]`, stdout.String())
}

func TestRunDumpWritesNetwork(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(baseArgs(t, "-dump"), strings.NewReader(sampleDocument), &stdout, &stderr)
	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	assert.Contains(t, stderr.String(), "network: 2 stops, 1 routes, 1 distances")
	assert.Contains(t, stderr.String(), `"14"`)
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "transitcat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: error\nindent: 4\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(baseArgs(t, "-config", cfgPath, "-log-level", "debug"),
		strings.NewReader(sampleDocument), &stdout, &stderr)
	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())

	assert.Contains(t, stdout.String(), "\n    {")
	assert.Contains(t, stderr.String(), "stat_request")
}

func TestBuildApplication(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func() appconf.Config
		wantErr string
	}{
		{
			name: "defaults",
			cfg:  appconf.Default,
		},
		{
			name: "bad log level",
			cfg: func() appconf.Config {
				cfg := appconf.Default()
				cfg.LogLevel = "chatty"
				return cfg
			},
			wantErr: "failed to configure logging",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			application, err := BuildApplication(tt.cfg(), &logs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, application.RunID)
			assert.NotNil(t, application.Catalogue)
			assert.NotNil(t, application.Metrics)
			assert.Nil(t, application.Router)
		})
	}
}
