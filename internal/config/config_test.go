package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-toolplan/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "toolplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Planner, cfg.Planner)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, `
catalog: testdata/catalog.yaml
neo4j:
  uri: bolt://graph:7687
  connection_timeout: 5s
planner:
  top_k: 3
  query_timeout: 2s
log:
  level: debug
  format: text
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testdata/catalog.yaml", cfg.Catalog)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, 5*time.Second, cfg.Neo4j.ConnectionTimeout)
	assert.Equal(t, 3, cfg.Planner.TopK)
	assert.Equal(t, 2*time.Second, cfg.Planner.QueryTimeout)
	assert.Equal(t, 7, cfg.Planner.MaxPathEdges)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadPasswordFromEnv(t *testing.T) {
	t.Setenv(config.PasswordEnv, "secret")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "planner: [not, a, map]"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "planner:\n  top_k: 0\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate  func(c *config.Config)
		wantErr bool
	}{
		"default":              {mutate: func(c *config.Config) {}},
		"empty uri":            {mutate: func(c *config.Config) { c.Neo4j.URI = "" }, wantErr: true},
		"empty uri in memory":  {mutate: func(c *config.Config) { c.Neo4j.URI = ""; c.Catalog = "catalog.yaml" }},
		"zero conn timeout":    {mutate: func(c *config.Config) { c.Neo4j.ConnectionTimeout = 0 }, wantErr: true},
		"zero query timeout":   {mutate: func(c *config.Config) { c.Planner.QueryTimeout = 0 }, wantErr: true},
		"negative path edges":  {mutate: func(c *config.Config) { c.Planner.MaxPathEdges = -1 }, wantErr: true},
		"negative insertions":  {mutate: func(c *config.Config) { c.Planner.MaxInsertions = -1 }, wantErr: true},
		"zero replacements":    {mutate: func(c *config.Config) { c.Planner.ReplacementLimit = 0 }, wantErr: true},
		"zero concurrency":     {mutate: func(c *config.Config) { c.Planner.Concurrency = 0 }, wantErr: true},
		"unknown log format":   {mutate: func(c *config.Config) { c.Log.Format = "xml" }, wantErr: true},
		"unknown log level":    {mutate: func(c *config.Config) { c.Log.Level = "trace" }, wantErr: true},
		"zero insertions okay": {mutate: func(c *config.Config) { c.Planner.MaxInsertions = 0 }},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
