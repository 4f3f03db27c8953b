// Package params loads the named parameter files of a tracker run and
// exposes them as read-only records.
package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dixieflatline76/Pano/util/log"
)

// Record names, one per parameter file.
const (
	HyperName       = "hp"
	EvaluationName  = "evaluation"
	RunName         = "run"
	EnvironmentName = "env"
	DesignName      = "design"
)

// Locations names the parameter files. Relative file names are resolved
// against Dir.
type Locations struct {
	Dir         string `env:"PANO_PARAMS_DIR" envDefault:"parameters"`
	Hyperparams string `env:"PANO_HYPERPARAMS_FILE" envDefault:"hyperparams.json"`
	Evaluation  string `env:"PANO_EVALUATION_FILE" envDefault:"evaluation.json"`
	Run         string `env:"PANO_RUN_FILE" envDefault:"run.json"`
	Environment string `env:"PANO_ENVIRONMENT_FILE" envDefault:"environment.json"`
	Design      string `env:"PANO_DESIGN_FILE" envDefault:"design.json"`
}

// DefaultLocations returns the standard file names inside dir.
func DefaultLocations(dir string) Locations {
	return Locations{
		Dir:         dir,
		Hyperparams: "hyperparams.json",
		Evaluation:  "evaluation.json",
		Run:         "run.json",
		Environment: "environment.json",
		Design:      "design.json",
	}
}

// LocationsFromEnv reads Locations from PANO_PARAMS_DIR and the
// PANO_*_FILE variables, falling back to DefaultLocations("parameters").
func LocationsFromEnv() (Locations, error) {
	var loc Locations
	if err := env.Parse(&loc); err != nil {
		return Locations{}, fmt.Errorf("parse env: %w", err)
	}
	return loc, nil
}

// Resolve returns the path of file, joined to Dir when relative.
func (l Locations) Resolve(file string) string {
	if l.Dir == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.Dir, file)
}

// Set is the full group of parameter records.
type Set struct {
	Hyper      *Record
	Evaluation *Record
	Run        *Record
	Env        *Record
	Design     *Record
}

// Load reads every file named by loc, merges ov into the hyperparameter,
// evaluation and run records, and returns the records. Override keys
// replace values from the files and may add keys the files lack.
func Load(loc Locations, ov Overrides) (*Set, error) {
	files := []struct {
		name     string
		file     string
		override map[string]any
	}{
		{HyperName, loc.Hyperparams, ov.Hyper},
		{EvaluationName, loc.Evaluation, ov.Evaluation},
		{RunName, loc.Run, ov.Run},
		{EnvironmentName, loc.Environment, nil},
		{DesignName, loc.Design, nil},
	}

	records := make(map[string]*Record, len(files))
	for _, f := range files {
		path := loc.Resolve(f.file)
		values, err := readMapping(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s parameters: %w", f.name, err)
		}
		for k, v := range f.override {
			values[k] = v
		}
		records[f.name] = NewRecord(f.name, values)
		log.Debugf("params: loaded %s from %s (%d keys, %d overridden)", f.name, path, len(values), len(f.override))
	}

	return &Set{
		Hyper:      records[HyperName],
		Evaluation: records[EvaluationName],
		Run:        records[RunName],
		Env:        records[EnvironmentName],
		Design:     records[DesignName],
	}, nil
}

// readMapping decodes a file whose top level is a mapping. The format
// follows the extension: .yaml/.yml, .toml, anything else is JSON.
func readMapping(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &values)
	case ".toml":
		err = toml.Unmarshal(data, &values)
	default:
		err = json.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}
