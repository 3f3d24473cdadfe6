// Command ndc-postgres manages and serves a PostgreSQL connector
// configuration.
//
//	ndc-postgres initialize [--with-metadata]   # create an empty configuration
//	ndc-postgres update [--store]               # introspect the database, rewrite the configuration
//	ndc-postgres serve [--port]                 # serve the schema over HTTP
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/configuration"
	"github.com/jkarni/ndc-postgres/internal/database"
	"github.com/jkarni/ndc-postgres/internal/filestore"
	"github.com/jkarni/ndc-postgres/internal/filestore/minio"
	"github.com/jkarni/ndc-postgres/internal/introspection"
	"github.com/jkarni/ndc-postgres/internal/logger"
	"github.com/jkarni/ndc-postgres/internal/metadata"
	"github.com/jkarni/ndc-postgres/internal/server"
)

var version = "dev"

func main() {
	var (
		contextPath string
		logLevel    string
		logFormat   string
	)

	rootCmd := &cobra.Command{
		Use:   "ndc-postgres",
		Short: "PostgreSQL connector configuration and schema server",
		Long: `ndc-postgres introspects a PostgreSQL database and derives the
queryable connector schema: tables, columns, constraints, aggregate
functions, and comparison operators.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&contextPath, "context", ".", "connector context directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, console)")

	newLogger := func() *logger.Logger {
		return logger.New(&logger.Config{Level: logLevel, Format: logFormat, Output: os.Stderr})
	}

	var withMetadata bool
	initializeCmd := &cobra.Command{
		Use:   "initialize",
		Short: "Initialize a configuration in the current (empty) directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initialize(contextPath, withMetadata)
		},
	}
	initializeCmd.Flags().BoolVar(&withMetadata, "with-metadata", false, "also write the connector metadata definition")

	var store bool
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update the configuration by introspecting the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return update(cmd.Context(), newLogger(), contextPath, store)
		},
	}
	updateCmd.Flags().BoolVar(&store, "store", false, "also upload the configuration snapshot to object storage")

	var port int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the introspected schema over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), newLogger(), contextPath, port)
		},
	}
	serveCmd.Flags().IntVar(&port, "port", 8100, "port to listen on")

	rootCmd.AddCommand(initializeCmd, updateCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize writes an empty configuration into an empty directory. An
// empty configuration contains default settings and options and is
// expected to be filled with the connection string by the user, and later
// with metadata via introspection.
func initialize(contextPath string, withMetadata bool) error {
	if err := os.MkdirAll(contextPath, 0o755); err != nil {
		return err
	}

	// refuse to initialize the directory unless it is empty
	entries, err := os.ReadDir(contextPath)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("directory is not empty")
	}

	if err := configuration.Write(contextPath, configuration.Empty()); err != nil {
		return err
	}

	if withMetadata {
		meta := configuration.DefaultConnectorMetadata(version)
		if err := configuration.WriteConnectorMetadata(contextPath, meta); err != nil {
			return err
		}
	}
	return nil
}

// update re-introspects the configured database and rewrites the
// configuration file with the fresh metadata.
func update(ctx context.Context, log *logger.Logger, contextPath string, store bool) error {
	cfg, err := configuration.Parse(contextPath)
	if err != nil {
		return err
	}

	cfg, err = configuration.Introspect(ctx, cfg)
	if err != nil {
		return err
	}

	if err := configuration.Write(contextPath, cfg); err != nil {
		return err
	}
	log.InfoWith("configuration updated", map[string]interface{}{
		"tables": len(cfg.Metadata.Tables),
	})

	if store {
		if err := uploadSnapshot(ctx, log, contextPath); err != nil {
			return err
		}
	}
	return nil
}

// uploadSnapshot pushes the configuration file to the configured object
// storage bucket. Connection settings come from the environment, matching
// the local-dev MinIO defaults.
func uploadSnapshot(ctx context.Context, log *logger.Logger, contextPath string) error {
	storeCfg := filestore.DefaultConfig(
		envOr("SNAPSHOT_STORE_ENDPOINT", "localhost:9000"),
		envOr("SNAPSHOT_STORE_ACCESS_KEY", "minioadmin"),
		envOr("SNAPSHOT_STORE_SECRET_KEY", "minioadmin"),
	)
	if bucket := os.Getenv("SNAPSHOT_STORE_BUCKET"); bucket != "" {
		storeCfg.Bucket = bucket
	}

	st, err := minio.New(ctx, storeCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := os.ReadFile(contextPath + "/" + configuration.Filename)
	if err != nil {
		return err
	}
	if err := st.PutSnapshot(ctx, storeCfg.Bucket, configuration.Filename, data); err != nil {
		return err
	}
	log.InfoWith("snapshot uploaded", map[string]interface{}{
		"bucket": storeCfg.Bucket,
		"key":    configuration.Filename,
	})
	return nil
}

// serve loads the configuration and serves its schema over HTTP. Reloads
// re-introspect the live database.
func serve(ctx context.Context, log *logger.Logger, contextPath string, port int) error {
	cfg, err := configuration.Parse(contextPath)
	if err != nil {
		return err
	}

	dbCfg, err := cfg.DatabaseConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	refresh := func(ctx context.Context) (metadata.Metadata, error) {
		ctx, cancel := db.WithQueryTimeout(ctx)
		defer cancel()

		tx, err := db.BeginSnapshot(ctx)
		if err != nil {
			return metadata.Metadata{}, err
		}
		defer tx.Rollback(ctx)

		snap, err := catalog.Read(ctx, tx)
		if err != nil {
			return metadata.Metadata{}, err
		}
		return introspection.Introspect(snap, cfg.IntrospectionOptions), nil
	}

	srv := server.New(log, cfg.Metadata, refresh)
	addr := fmt.Sprintf(":%d", port)
	log.InfoWith("listening", map[string]interface{}{"addr": addr})
	return http.ListenAndServe(addr, srv.Router())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
