package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pearsonr", c.Metric)
	assert.Equal(t, 20000, c.NSamplesDistance)
	assert.Equal(t, int64(42), c.EstimatorSeed)
	assert.False(t, c.KFold)
	assert.Empty(t, c.CategoricalColumns)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eval.yaml")
	want := Default()
	want.CategoricalColumns = []string{"sex", "smoker"}
	want.Metric = "spearmanr"
	want.NSamples = 500
	want.Seed = 7
	want.KFold = true
	want.Workers = 2

	require.NoError(t, Save(want, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 3\nmetric: kendalltau\n"), 0o644))
	t.Setenv("SYNTHCHECK_SEED", "11")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), c.Seed)
	assert.Equal(t, "kendalltau", c.Metric)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -1\n"), 0o644))
	_, err = Load(path)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}
