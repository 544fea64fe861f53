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

// The topicmatch command solves one assignment request and prints the
// matching as JSON.
//
//	topicmatch --input=request.json
//	topicmatch --roster=roster.yaml --export-lp=model.lp
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	log "github.com/golang/glog"
	"github.com/spf13/pflag"
	"github.com/topicmatch/topicmatch/topicmatch/api"
	"github.com/topicmatch/topicmatch/topicmatch/config"
	"github.com/topicmatch/topicmatch/topicmatch/formulation"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
	"github.com/topicmatch/topicmatch/topicmatch/roster"
)

var (
	inputPath  = pflag.String("input", "", "Request file, JSON or YAML by extension. - reads JSON from stdin.")
	rosterPath = pflag.String("roster", "", "Roster YAML file; grades are computed from course completions.")
	exportLP   = pflag.String("export-lp", "", "If set, write the built model in LP format to this file.")
)

func readRequest() (*api.Request, error) {
	switch {
	case *inputPath != "" && *rosterPath != "":
		return nil, fmt.Errorf("--input and --roster are mutually exclusive")
	case *inputPath == "-":
		return api.Decode(os.Stdin)
	case *inputPath != "":
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(*inputPath))
		return api.DecodeBytes(data, ext == ".yaml" || ext == ".yml")
	case *rosterPath != "":
		f, err := os.Open(*rosterPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r, err := roster.Load(f)
		if err != nil {
			return nil, err
		}
		return r.Request()
	default:
		return nil, fmt.Errorf("one of --input or --roster is required")
	}
}

func writeResponse(w io.Writer, resp *api.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func main() {
	config.RegisterFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	defer log.Flush()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		log.Exitf("Loading config: %v", err)
	}
	req, err := readRequest()
	if err != nil {
		log.Exitf("Reading request: %v", err)
	}
	params, err := cfg.SolverParameters()
	if err != nil {
		log.Exitf("Solver parameters: %v", err)
	}
	solver, err := milpsolver.New(params)
	if err != nil {
		log.Exitf("Creating solver: %v", err)
	}

	f, err := formulation.Formulate(req.Input(), cfg.FormulationOptions()...)
	if err != nil {
		log.Exitf("Building model: %v", err)
	}
	if *exportLP != "" {
		lp, err := f.Export(formulation.DebugLP)
		if err != nil {
			log.Exitf("Exporting model: %v", err)
		}
		if err := os.WriteFile(*exportLP, lp, 0o644); err != nil {
			log.Exitf("Writing %s: %v", *exportLP, err)
		}
		log.Infof("wrote model to %s", *exportLP)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := f.Solve(ctx, solver)
	if err != nil {
		log.Exitf("Solving: %v", err)
	}
	log.V(1).Infof("status %v, objective %v, %d matchings", res.Status, res.Objective, len(res.Matchings))
	if err := writeResponse(os.Stdout, api.FromResult(res)); err != nil {
		log.Exitf("Writing response: %v", err)
	}
}
