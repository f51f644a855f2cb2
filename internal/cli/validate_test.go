package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/config"
)

func TestValidateCommand_Valid(t *testing.T) {
	out, err := execute(t, testConfig(), "validate", validCatalog)
	require.NoError(t, err)
	assert.Equal(t, "✓ Catalog valid (5 motions)\n", out)
}

func TestValidateCommand_CatalogFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = validCatalog

	out, err := execute(t, cfg, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Catalog valid")
}

func TestValidateCommand_Broken(t *testing.T) {
	out, err := execute(t, testConfig(), "validate", brokenCatalog)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, err.Error(), "validation failed with")
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := execute(t, testConfig(), "--format", "json", "validate", validCatalog)
	require.NoError(t, err)

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 5, resp.Data.Motions)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateCommand_BrokenJSON(t *testing.T) {
	out, err := execute(t, testConfig(), "--format", "json", "validate", brokenCatalog)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[ValidationResult](t, out)
	assert.False(t, resp.Data.Valid)
	require.NotEmpty(t, resp.Data.Errors)
	assert.NotZero(t, resp.Data.Errors[0].Line)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	out, err := execute(t, testConfig(), "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestValidateCommand_NoCatalog(t *testing.T) {
	out, err := execute(t, config.Config{}, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeBadArgument)
}
