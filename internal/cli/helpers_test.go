package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/config"
)

var (
	kofCatalog    = filepath.Join("..", "catalog", "testdata", "kof.yaml")
	validCatalog  = filepath.Join("..", "validate", "testdata", "valid.yaml")
	brokenCatalog = filepath.Join("..", "validate", "testdata", "broken.yaml")
)

// testConfig plays fast so playback tests finish quickly.
func testConfig() config.Config {
	return config.Config{FPS: 1000, LogLevel: "info"}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, cfg, "", args...)
}

func executeWithInput(t *testing.T, cfg config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(cfg)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

// response is CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "scone.db")
}
