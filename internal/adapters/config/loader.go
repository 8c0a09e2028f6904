// Package config provides the configuration loader for fin.
package config

import (
	"os"

	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Finfile represents the structure of the fin.yaml configuration file.
type Finfile struct {
	Version        string   `yaml:"version"`
	Label          string   `yaml:"label"`
	Fragments      []string `yaml:"fragments"`
	LibDir         string   `yaml:"libDir"`
	LibSearchPaths []string `yaml:"libSearchPaths"`
	Output         string   `yaml:"output"`
	BuildIDFile    string   `yaml:"buildIDFile"`
}

// Load reads a configuration file from the given path and returns a validated
// domain.Plan.
func (l *Loader) Load(path string) (*domain.Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var finfile Finfile
	if err := yaml.Unmarshal(data, &finfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	plan := &domain.Plan{
		Label:          finfile.Label,
		Fragments:      finfile.Fragments,
		LibDir:         finfile.LibDir,
		LibSearchPaths: finfile.LibSearchPaths,
		Output:         finfile.Output,
		BuildIDFile:    finfile.BuildIDFile,
	}
	if err := plan.Validate(); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return plan, nil
}
