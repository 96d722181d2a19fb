package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsYAML = `
system:
  logging_level: INFO
runtime:
  __default__:
    error_max_retries: 0
    error_procedure: pass
  text-collector:
    module: collector-text
    name: Local Feed
  lines-parser:
    module: parser-lines
pipeline:
  text-collector:
    source-queue: text-collector-input
    destination-queues: [text-collector-output]
  lines-parser:
    source-queue: lines-parser-input
    destination-queues: [lines-parser-output]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCmd_JSON(t *testing.T) {
	cfg := writeFile(t, "botline.yaml", settingsYAML)
	input := writeFile(t, "input.txt", "first\n\nsecond\n")

	stdout, stderr, err := execute(t, "run", "text-collector", "--config", cfg, "--input", input, "--split-lines", "--json")
	require.NoError(t, err)

	var dump QueueDump
	require.NoError(t, json.Unmarshal([]byte(stdout), &dump))
	assert.Equal(t, "text-collector-output", dump.Queue)
	require.Len(t, dump.Messages, 2)

	first, ok := dump.Messages[0].(map[string]any)
	require.True(t, ok, "expected decoded message, got %T", dump.Messages[0])
	assert.Equal(t, "Report", first["__type"])
	assert.Equal(t, "Local Feed", first["feed.name"])
	assert.Equal(t, "Zmlyc3Q=", first["raw"])

	assert.Contains(t, stderr, "text-collector - INFO - Bot is starting")
}

func TestRunCmd_Table(t *testing.T) {
	cfg := writeFile(t, "botline.yaml", settingsYAML)
	input := writeFile(t, "input.txt", "payload")

	stdout, _, err := execute(t, "run", "text-collector", "-c", cfg, "-i", input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "text-collector-output (1)")
	assert.Contains(t, stdout, "Report")
}

func TestRunCmd_ModuleFlagOverrides(t *testing.T) {
	cfg := writeFile(t, "botline.yaml", settingsYAML)

	// parser-lines на пустом входе: проход завершается без сообщений
	stdout, _, err := execute(t, "run", "text-collector", "-c", cfg, "--module", "parser-lines")
	require.NoError(t, err)
	assert.Contains(t, stdout, "text-collector-output (0)")
}

func TestRunCmd_Errors(t *testing.T) {
	cfg := writeFile(t, "botline.yaml", settingsYAML)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "no module", args: []string{"run", "ghost", "-c", cfg}, want: ErrNoModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	_, _, err := execute(t, "run", "text-collector", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open settings")

	_, _, err = execute(t, "run", "text-collector", "-c", cfg, "--module", "nope")
	assert.ErrorContains(t, err, "unknown module")
}

func TestModulesCmd(t *testing.T) {
	stdout, _, err := execute(t, "modules", "--json")
	require.NoError(t, err)

	var modules []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &modules))
	assert.Equal(t, []string{"collector-text", "expert-filter", "output-postgres", "parser-lines"}, modules)
}

func TestReadInput(t *testing.T) {
	stdin := strings.NewReader("a\n  \nb\n")

	got, err := readInput(stdin, "-", true)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got)

	got, err = readInput(nil, "", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	path := writeFile(t, "in.txt", "x\ny")
	got, err = readInput(nil, path, false)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x\ny")}, got)
}

func TestMetricsServer_Healthz(t *testing.T) {
	connected := true
	srv := newMetricsServer(":0", func() bool { return connected })

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	connected = false
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOutput_QueuePreview(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(false, &buf, &buf)
	out.Queue("q", [][]byte{[]byte("plain\ttext\nsecond line")})

	assert.Contains(t, buf.String(), "q (1)")
	assert.Contains(t, buf.String(), "plain text")
	assert.NotContains(t, buf.String(), "second line")
}
