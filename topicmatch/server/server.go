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

// Package server exposes the solver over HTTP.
//
//	POST /solve    solve a JSON request, answer with the matching
//	GET  /healthz  liveness
//	GET  /metrics  Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/topicmatch/topicmatch/topicmatch/api"
	"github.com/topicmatch/topicmatch/topicmatch/config"
	"github.com/topicmatch/topicmatch/topicmatch/formulation"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

// maxRequestBytes caps the size of a solve request body.
const maxRequestBytes = 8 << 20

// Server answers solve requests with a fixed solver and formulation options.
type Server struct {
	solver   milpsolver.Solver
	opts     []formulation.Option
	registry *prometheus.Registry
	metrics  *metrics
	router   *gin.Engine
}

// New returns a Server that solves with s.
func New(s milpsolver.Solver, opts ...formulation.Option) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := &Server{
		solver:   s,
		opts:     opts,
		registry: reg,
		metrics:  newMetrics(reg),
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())
	router.POST("/solve", srv.solve)
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	srv.router = router
	return srv
}

// NewFromConfig returns a Server configured by c.
func NewFromConfig(c *config.Config) (*Server, error) {
	p, err := c.SolverParameters()
	if err != nil {
		return nil, err
	}
	s, err := milpsolver.New(p)
	if err != nil {
		return nil, err
	}
	return New(s, c.FormulationOptions()...), nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) reject(c *gin.Context, code int, reason string, err error) {
	s.metrics.requestErrors.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(code, api.ErrorResponse{Error: err.Error()})
}

func (s *Server) solve(c *gin.Context) {
	req, err := api.Decode(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes))
	if err != nil {
		s.reject(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	start := time.Now()
	res, err := formulation.Solve(c.Request.Context(), req.Input(), s.solver, s.opts...)
	s.metrics.solveDuration.Observe(time.Since(start).Seconds())
	var dupErr *formulation.DuplicateApplicationError
	var missingErr *formulation.MissingEntityError
	switch {
	case errors.As(err, &dupErr):
		s.reject(c, http.StatusUnprocessableEntity, "duplicate_application", err)
		return
	case errors.As(err, &missingErr):
		s.reject(c, http.StatusUnprocessableEntity, "missing_entity", err)
		return
	case err != nil:
		log.Errorf("request %s: %v", c.GetString(requestIDKey), err)
		s.reject(c, http.StatusInternalServerError, "solver", err)
		return
	}

	s.metrics.solves.WithLabelValues(res.Status.String()).Inc()
	c.JSON(http.StatusOK, api.FromResult(res))
}
