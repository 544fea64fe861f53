// Copyright 2010-2025 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the settings of the topicmatch binaries. Values come
// from, in increasing precedence: defaults, a YAML config file, TOPICMATCH_
// environment variables and command line flags.
package config

import (
	"fmt"
	"strings"

	log "github.com/golang/glog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/topicmatch/topicmatch/topicmatch/formulation"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "TOPICMATCH"

// Config holds all settings.
type Config struct {
	ListenAddress string       `mapstructure:"listen_address"`
	Solver        SolverConfig `mapstructure:"solver"`
	Debug         DebugConfig  `mapstructure:"debug"`
}

// SolverConfig selects and tunes the solver backend.
type SolverConfig struct {
	Backend   string `mapstructure:"backend"`
	NodeLimit int    `mapstructure:"node_limit"`
}

// DebugConfig controls the model dump logged before each solve.
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Format  string `mapstructure:"format"`
}

// Default returns the default settings.
func Default() *Config {
	p := milpsolver.DefaultParameters()
	return &Config{
		ListenAddress: ":8080",
		Solver:        SolverConfig{Backend: string(p.Backend), NodeLimit: p.NodeLimit},
		Debug:         DebugConfig{Enabled: false, Format: string(formulation.DebugLP)},
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"listen-address": "listen_address",
	"solver-backend": "solver.backend",
	"node-limit":     "solver.node_limit",
	"debug":          "debug.enabled",
	"debug-format":   "debug.format",
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "Path to a YAML config file.")
	fs.String("listen-address", d.ListenAddress, "Address the HTTP server listens on.")
	fs.String("solver-backend", d.Solver.Backend, "Solver backend: pb (pseudo-boolean) or lp (branch and bound).")
	fs.Int("node-limit", d.Solver.NodeLimit, "Maximum number of branch-and-bound nodes, 0 for no limit.")
	fs.Bool("debug", d.Debug.Enabled, "Log the built model before solving.")
	fs.String("debug-format", d.Debug.Format, "Format of the model dump: lp or json.")
}

// Load returns the settings from defaults, the config file named by the
// --config flag, the environment and the flags registered on fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("listen_address", d.ListenAddress)
	v.SetDefault("solver.backend", d.Solver.Backend)
	v.SetDefault("solver.node_limit", d.Solver.NodeLimit)
	v.SetDefault("debug.enabled", d.Debug.Enabled)
	v.SetDefault("debug.format", d.Debug.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var path string
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		log.V(1).Infof("loaded config file %q", path)
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns an error if a setting is out of range.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address must not be empty")
	}
	if _, err := c.SolverParameters(); err != nil {
		return err
	}
	if _, err := formulation.ParseDebugFormat(c.Debug.Format); err != nil {
		return fmt.Errorf("debug.format: %w", err)
	}
	return nil
}

// SolverParameters returns the solver settings as milpsolver.Parameters.
func (c *Config) SolverParameters() (milpsolver.Parameters, error) {
	b, err := milpsolver.ParseBackend(c.Solver.Backend)
	if err != nil {
		return milpsolver.Parameters{}, fmt.Errorf("solver.backend: %w", err)
	}
	if c.Solver.NodeLimit < 0 {
		return milpsolver.Parameters{}, fmt.Errorf("solver.node_limit must not be negative, got %d", c.Solver.NodeLimit)
	}
	return milpsolver.Parameters{Backend: b, NodeLimit: c.Solver.NodeLimit}, nil
}

// FormulationOptions returns the formulation options implied by the settings.
func (c *Config) FormulationOptions() []formulation.Option {
	if !c.Debug.Enabled {
		return nil
	}
	format, err := formulation.ParseDebugFormat(c.Debug.Format)
	if err != nil {
		log.Warningf("ignoring debug dump: %v", err)
		return nil
	}
	return []formulation.Option{formulation.WithDebugDump(format)}
}
