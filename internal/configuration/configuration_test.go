package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarni/ndc-postgres/internal/errs"
)

func TestWriteParseRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Empty()
	cfg.ConnectionURI = "postgresql://localhost:5432/app"
	cfg.PoolSettings.MaxConnections = 10

	require.NoError(t, Write(dir, cfg))

	got, err := Parse(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(t.TempDir())
	assert.True(t, errs.IsNotFound(err))
}

func TestParse_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte("{"), 0o644))

	_, err := Parse(dir)
	assert.True(t, errs.IsInvalidConfig(err))
}

func TestParse_UnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	cfg := Empty()
	cfg.Version = "99"
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), data, 0o644))

	_, err = Parse(dir)
	assert.True(t, errs.IsInvalidConfig(err))
}

func TestEmptyConfigurationShape(t *testing.T) {
	data, err := json.Marshal(Empty())
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.JSONEq(t, `"1"`, string(decoded["version"]))
	assert.NotContains(t, decoded, "connectionUri")
	assert.Contains(t, decoded, "introspectionOptions")
	assert.JSONEq(t, `{"tables":{},"aggregateFunctions":{},"comparisonFunctions":{}}`,
		string(decoded["metadata"]))
}

func TestResolveConnectionURI(t *testing.T) {
	cfg := Empty()
	cfg.ConnectionURI = "postgresql://inline:5432/app"

	uri, err := cfg.ResolveConnectionURI()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://inline:5432/app", uri)
}

func TestResolveConnectionURI_Environment(t *testing.T) {
	t.Setenv(ConnectionURIVariable, "postgresql://fromenv:5432/app")

	uri, err := Empty().ResolveConnectionURI()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://fromenv:5432/app", uri)
}

func TestResolveConnectionURI_Missing(t *testing.T) {
	t.Setenv(ConnectionURIVariable, "")

	_, err := Empty().ResolveConnectionURI()
	assert.True(t, errs.IsInvalidConfig(err))
}

func TestDatabaseConfig(t *testing.T) {
	cfg := Empty()
	cfg.ConnectionURI = "postgresql://localhost:5432/app"
	cfg.PoolSettings.MaxConnections = 8
	cfg.PoolSettings.QueryTimeoutSec = 45

	dbCfg, err := cfg.DatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.ConnectionURI, dbCfg.DSN)
	assert.Equal(t, int32(8), dbCfg.MaxConns)
	assert.Equal(t, 45*time.Second, dbCfg.QueryTimeout)
}
