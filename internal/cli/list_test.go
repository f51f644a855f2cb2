package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ez2torta/SConE/internal/catalog"
)

func TestListCommand_Builtins(t *testing.T) {
	out, err := execute(t, testConfig(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "hadouken")
	assert.Contains(t, out, "Hadouken")
	assert.Contains(t, out, "6f")
}

func TestListCommand_Category(t *testing.T) {
	out, err := execute(t, testConfig(), "list", kofCatalog, "--category", catalog.SpecialMotions)
	require.NoError(t, err)
	assert.Contains(t, out, "special_motions.QCF")
	assert.Contains(t, out, "Quarter circle forward")
	assert.Contains(t, out, "★★☆☆☆")
	assert.NotContains(t, out, "combos.")
}

func TestListCommand_MaxDifficulty(t *testing.T) {
	out, err := execute(t, testConfig(), "list", kofCatalog, "--max-difficulty", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "basic_attacks.st_A")
	assert.NotContains(t, out, "special_motions.QCF")
	assert.NotContains(t, out, "training_drills.hit_confirm")
}

func TestListCommand_StatsJSON(t *testing.T) {
	out, err := execute(t, testConfig(), "--format", "json", "list", kofCatalog, "--stats")
	require.NoError(t, err)

	resp := decode[ListResult](t, out)
	require.NotNil(t, resp.Data.Stats)
	assert.Equal(t, 16, resp.Data.Stats.Total)
	assert.Equal(t, 3, resp.Data.Stats.ByCategory[catalog.SpecialMotions])
	assert.Equal(t, 8, resp.Data.Stats.ByCategory[catalog.Combos])
	assert.Len(t, resp.Data.Entries, 16)
}

func TestListCommand_StatsText(t *testing.T) {
	out, err := execute(t, testConfig(), "list", kofCatalog, "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "16 motions")
	assert.Contains(t, out, "aerial_attacks")
}

func TestListCommand_MissingCatalog(t *testing.T) {
	_, err := execute(t, testConfig(), "list", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "☆☆☆☆☆", stars(0))
	assert.Equal(t, "★★★☆☆", stars(3))
	assert.Equal(t, "★★★★★", stars(9))
}
