// Package configuration manages the connector configuration file: parsing
// and writing configuration.json, and refreshing its embedded metadata by
// introspecting the target database.
package configuration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/database"
	"github.com/jkarni/ndc-postgres/internal/errs"
	"github.com/jkarni/ndc-postgres/internal/introspection"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// Filename is the name of the configuration file inside a connector
// context directory.
const Filename = "configuration.json"

// ConnectionURIVariable is the environment variable consulted when the
// configuration does not carry a connection URI inline.
const ConnectionURIVariable = "CONNECTION_URI"

// Version is the configuration format version this build reads and writes.
const Version = "1"

// RawConfiguration is the on-disk configuration: just enough to connect to
// a database, the introspection options, and the metadata produced by the
// last introspection run.
type RawConfiguration struct {
	Version              string                `json:"version"`
	ConnectionURI        string                `json:"connectionUri,omitempty"`
	PoolSettings         PoolSettings          `json:"poolSettings"`
	IntrospectionOptions introspection.Options `json:"introspectionOptions"`
	Metadata             metadata.Metadata     `json:"metadata"`
}

// PoolSettings tunes the connection pool used during introspection and
// serving.
type PoolSettings struct {
	MaxConnections    int32 `json:"maxConnections,omitempty"`
	MinConnections    int32 `json:"minConnections,omitempty"`
	ConnectTimeoutSec int32 `json:"connectTimeoutSeconds,omitempty"`
	QueryTimeoutSec   int32 `json:"queryTimeoutSeconds,omitempty"`
}

// Empty returns a fresh configuration with default options and no
// metadata, ready to be filled in by the user and then by introspection.
func Empty() RawConfiguration {
	return RawConfiguration{
		Version:              Version,
		IntrospectionOptions: introspection.DefaultOptions(),
		Metadata:             metadata.Empty(),
	}
}

// Parse reads the configuration file from the given context directory.
func Parse(contextPath string) (RawConfiguration, error) {
	var cfg RawConfiguration

	data, err := os.ReadFile(filepath.Join(contextPath, Filename))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errs.Wrap(errs.ErrKindNotFound, "configuration file not found", err)
		}
		return cfg, errs.Wrap(errs.ErrKindInvalidConfig, "cannot read configuration file", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Wrap(errs.ErrKindInvalidConfig, "cannot parse configuration file", err)
	}
	if cfg.Version != Version {
		return cfg, errs.New(errs.ErrKindInvalidConfig, "unsupported configuration version: "+cfg.Version)
	}
	return cfg, nil
}

// Write stores the configuration file in the given context directory.
func Write(contextPath string, cfg RawConfiguration) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidConfig, "cannot serialize configuration", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(contextPath, Filename), data, 0o644); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "cannot write configuration file", err)
	}
	return nil
}

// ResolveConnectionURI returns the connection URI from the configuration,
// falling back to the CONNECTION_URI environment variable.
func (cfg RawConfiguration) ResolveConnectionURI() (string, error) {
	if cfg.ConnectionURI != "" {
		return cfg.ConnectionURI, nil
	}
	if uri := os.Getenv(ConnectionURIVariable); uri != "" {
		return uri, nil
	}
	return "", errs.New(errs.ErrKindInvalidConfig,
		"no connection URI: set connectionUri or the "+ConnectionURIVariable+" environment variable")
}

// DatabaseConfig builds the pool configuration from the connection URI and
// pool settings.
func (cfg RawConfiguration) DatabaseConfig() (*database.Config, error) {
	uri, err := cfg.ResolveConnectionURI()
	if err != nil {
		return nil, err
	}
	dbCfg := database.DefaultConfig(uri)
	if cfg.PoolSettings.MaxConnections > 0 {
		dbCfg.MaxConns = cfg.PoolSettings.MaxConnections
	}
	if cfg.PoolSettings.MinConnections > 0 {
		dbCfg.MinConns = cfg.PoolSettings.MinConnections
	}
	if cfg.PoolSettings.ConnectTimeoutSec > 0 {
		dbCfg.ConnectTimeout = time.Duration(cfg.PoolSettings.ConnectTimeoutSec) * time.Second
	}
	if cfg.PoolSettings.QueryTimeoutSec > 0 {
		dbCfg.QueryTimeout = time.Duration(cfg.PoolSettings.QueryTimeoutSec) * time.Second
	}
	return dbCfg, nil
}

// Introspect connects to the configured database, reads one atomic catalog
// snapshot, runs the resolution algorithm, and returns the configuration
// with its metadata replaced by the result.
func Introspect(ctx context.Context, cfg RawConfiguration) (RawConfiguration, error) {
	dbCfg, err := cfg.DatabaseConfig()
	if err != nil {
		return cfg, err
	}

	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return cfg, err
	}
	defer db.Close()

	snap, err := readSnapshot(ctx, db)
	if err != nil {
		return cfg, err
	}

	cfg.Metadata = introspection.Introspect(snap, cfg.IntrospectionOptions)
	return cfg, nil
}

// readSnapshot runs the catalog reader inside the snapshot transaction
// that gives it the atomic view it requires, bounded by the configured
// query timeout.
func readSnapshot(ctx context.Context, db *database.DB) (*catalog.Snapshot, error) {
	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	tx, err := db.BeginSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	return catalog.Read(ctx, tx)
}
