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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/topicmatch/topicmatch/topicmatch/formulation"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) returned unexpected error %v", args, err)
	}
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topicmatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() returned unexpected error %v", err)
	}
	return path
}

const testConfig = `
listen_address: ":9090"
solver:
  backend: lp
  node_limit: 500
debug:
  enabled: true
  format: json
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, testConfig)

	testCases := []struct {
		name string
		args []string
		env  map[string]string
		want *Config
	}{
		{
			name: "Defaults",
			want: Default(),
		},
		{
			name: "ConfigFile",
			args: []string{"--config", path},
			want: &Config{
				ListenAddress: ":9090",
				Solver:        SolverConfig{Backend: "lp", NodeLimit: 500},
				Debug:         DebugConfig{Enabled: true, Format: "json"},
			},
		},
		{
			name: "EnvironmentOverridesFile",
			args: []string{"--config", path},
			env:  map[string]string{"TOPICMATCH_SOLVER_BACKEND": "pb", "TOPICMATCH_DEBUG_ENABLED": "false"},
			want: &Config{
				ListenAddress: ":9090",
				Solver:        SolverConfig{Backend: "pb", NodeLimit: 500},
				Debug:         DebugConfig{Enabled: false, Format: "json"},
			},
		},
		{
			name: "FlagsOverrideEnvironment",
			args: []string{"--config", path, "--node-limit", "7", "--listen-address", "localhost:1234"},
			env:  map[string]string{"TOPICMATCH_SOLVER_NODE_LIMIT": "9"},
			want: &Config{
				ListenAddress: "localhost:1234",
				Solver:        SolverConfig{Backend: "lp", NodeLimit: 7},
				Debug:         DebugConfig{Enabled: true, Format: "json"},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			got, err := Load(newFlagSet(t, test.args...))
			if err != nil {
				t.Fatalf("Load() returned unexpected error %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Load() returned with unexpected diff (-want+got):\n%v", diff)
			}
		})
	}
}

func TestLoad_NilFlagSet(t *testing.T) {
	got, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) returned unexpected error %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("Load(nil) returned with unexpected diff (-want+got):\n%v", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "UnknownBackend",
			args:    []string{"--solver-backend", "highs"},
			wantErr: milpsolver.ErrUnknownBackend,
		},
		{
			name:    "UnknownDebugFormat",
			args:    []string{"--debug-format", "mps"},
			wantErr: formulation.ErrUnknownDebugFormat,
		},
		{
			name: "NegativeNodeLimit",
			args: []string{"--node-limit=-1"},
		},
		{
			name: "MissingConfigFile",
			args: []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")},
		},
		{
			name: "EmptyListenAddress",
			args: []string{"--listen-address", ""},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(newFlagSet(t, test.args...))
			if err == nil {
				t.Fatalf("Load() returned nil error, want error")
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("Load() returned error %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestConfig_SolverParameters(t *testing.T) {
	c := &Config{Solver: SolverConfig{Backend: "LP", NodeLimit: 10}}
	got, err := c.SolverParameters()
	if err != nil {
		t.Fatalf("SolverParameters() returned unexpected error %v", err)
	}
	want := milpsolver.Parameters{Backend: milpsolver.BranchAndBound, NodeLimit: 10}
	if got != want {
		t.Errorf("SolverParameters() = %+v, want %+v", got, want)
	}
}

func TestConfig_FormulationOptions(t *testing.T) {
	c := Default()
	if got := len(c.FormulationOptions()); got != 0 {
		t.Errorf("len(FormulationOptions()) = %v, want 0", got)
	}
	c.Debug.Enabled = true
	if got := len(c.FormulationOptions()); got != 1 {
		t.Errorf("len(FormulationOptions()) with debug = %v, want 1", got)
	}
}
