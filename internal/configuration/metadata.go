package configuration

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/jkarni/ndc-postgres/internal/errs"
)

// MetadataDir is the directory the connector metadata definition lives in.
const MetadataDir = ".hasura-connector"

// MetadataFilename is the name of the connector metadata definition file.
const MetadataFilename = "connector-metadata.yaml"

// ConnectorMetadata describes the connector package to tooling that works
// with this CLI as a plugin.
type ConnectorMetadata struct {
	PackagingDefinition           PackagingDefinition             `yaml:"packagingDefinition"`
	SupportedEnvironmentVariables []EnvironmentVariableDefinition `yaml:"supportedEnvironmentVariables"`
	Commands                      Commands                        `yaml:"commands"`
	CLIPlugin                     *CLIPluginDefinition            `yaml:"cliPlugin,omitempty"`
}

// PackagingDefinition names the prebuilt image the connector ships as.
type PackagingDefinition struct {
	Type        string `yaml:"type"`
	DockerImage string `yaml:"dockerImage"`
}

// EnvironmentVariableDefinition documents one environment variable the
// connector reads.
type EnvironmentVariableDefinition struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	DefaultValue string `yaml:"defaultValue,omitempty"`
}

// Commands maps tooling hooks to CLI subcommands.
type Commands struct {
	Update string `yaml:"update,omitempty"`
	Watch  string `yaml:"watch,omitempty"`
}

// CLIPluginDefinition identifies this binary as a CLI plugin.
type CLIPluginDefinition struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// DefaultConnectorMetadata returns the metadata definition for a release.
func DefaultConnectorMetadata(version string) ConnectorMetadata {
	if version == "" {
		version = "latest"
	}
	return ConnectorMetadata{
		PackagingDefinition: PackagingDefinition{
			Type:        "PrebuiltDockerImage",
			DockerImage: "ghcr.io/jkarni/ndc-postgres:" + version,
		},
		SupportedEnvironmentVariables: []EnvironmentVariableDefinition{
			{
				Name:        ConnectionURIVariable,
				Description: "The PostgreSQL connection URI",
			},
		},
		Commands: Commands{Update: "update"},
		CLIPlugin: &CLIPluginDefinition{
			Name:    "ndc-postgres",
			Version: version,
		},
	}
}

// WriteConnectorMetadata creates the metadata directory and writes the
// connector metadata definition into it.
func WriteConnectorMetadata(contextPath string, meta ConnectorMetadata) error {
	dir := filepath.Join(contextPath, MetadataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "cannot create connector metadata directory", err)
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidConfig, "cannot serialize connector metadata", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFilename), data, 0o644); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "cannot write connector metadata", err)
	}
	return nil
}
