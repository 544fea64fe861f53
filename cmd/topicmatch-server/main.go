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

// The topicmatch-server command serves solve requests over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/golang/glog"
	"github.com/spf13/pflag"
	"github.com/topicmatch/topicmatch/topicmatch/config"
	"github.com/topicmatch/topicmatch/topicmatch/server"
)

func main() {
	config.RegisterFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	defer log.Flush()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		log.Exitf("Loading config: %v", err)
	}
	if !cfg.Debug.Enabled {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := server.NewFromConfig(cfg)
	if err != nil {
		log.Exitf("Creating server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx, cfg.ListenAddress); err != nil {
		log.Exitf("Serving: %v", err)
	}
	log.Info("server stopped")
}
