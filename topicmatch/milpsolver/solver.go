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

// Package milpsolver solves 0-1 integer linear programs built with lpmodel.
//
// Two backends are available: an exact pseudo-boolean optimizer and a
// branch-and-bound search over LP relaxations. Both report a Status using the
// conventional MILP solver codes, and a non-optimal Status is returned as data,
// not as an error.
package milpsolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/golang/glog"
	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
)

// ErrUnknownBackend is returned when Parameters name a backend that does not exist.
var ErrUnknownBackend = errors.New("unknown solver backend")

// Status is the outcome of a solve.
type Status int

// The numeric values match the codes used by common MILP solver front ends.
const (
	NotSolved  Status = 0
	Optimal    Status = 1
	Infeasible Status = -1
	Unbounded  Status = -2
	Undefined  Status = -3
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "NOT_SOLVED"
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	case Undefined:
		return "UNDEFINED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Response holds the result of a solve. Values is indexed by lpmodel.VarIndex
// and is only meaningful when Status is Optimal.
type Response struct {
	Status         Status
	ObjectiveValue float64
	Values         []float64
}

// Solver solves a built model.
type Solver interface {
	Solve(ctx context.Context, m *lpmodel.Model) (*Response, error)
}

// Backend names a solver implementation.
type Backend string

const (
	// PseudoBoolean is the exact pseudo-boolean optimizer.
	PseudoBoolean Backend = "pb"
	// BranchAndBound searches over LP relaxations solved with the simplex method.
	BranchAndBound Backend = "lp"
)

// ParseBackend returns the Backend named by s.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case PseudoBoolean, BranchAndBound:
		return b, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownBackend)
	}
}

// Parameters groups the solver options.
type Parameters struct {
	Backend Backend
	// NodeLimit caps the number of branch-and-bound nodes. Zero means no limit.
	// Ignored by the pseudo-boolean backend.
	NodeLimit int
}

// DefaultParameters returns the parameters used by SolveModel.
func DefaultParameters() Parameters {
	return Parameters{Backend: PseudoBoolean, NodeLimit: 100000}
}

// New returns the Solver selected by p.
func New(p Parameters) (Solver, error) {
	switch p.Backend {
	case PseudoBoolean, "":
		return pseudoBooleanSolver{}, nil
	case BranchAndBound:
		if p.NodeLimit < 0 {
			return nil, fmt.Errorf("node limit must not be negative, got %d", p.NodeLimit)
		}
		return &branchAndBoundSolver{nodeLimit: p.NodeLimit}, nil
	default:
		return nil, fmt.Errorf("%q: %w", p.Backend, ErrUnknownBackend)
	}
}

// SolveModel solves m with the default parameters.
func SolveModel(ctx context.Context, m *lpmodel.Model) (*Response, error) {
	return SolveModelWithParameters(ctx, m, DefaultParameters())
}

// SolveModelWithParameters solves m with the backend selected by p.
func SolveModelWithParameters(ctx context.Context, m *lpmodel.Model, p Parameters) (*Response, error) {
	s, err := New(p)
	if err != nil {
		return nil, err
	}
	res, err := s.Solve(ctx, m)
	if err != nil {
		return nil, err
	}
	log.V(1).Infof("model %q solved by %q backend: status %v, objective %v", m.Name, p.Backend, res.Status, res.ObjectiveValue)
	return res, nil
}

// SolutionBooleanValue returns the value of BoolVar `bv` in the response.
func SolutionBooleanValue(r *Response, bv lpmodel.BoolVar) bool {
	return lpmodel.Evaluate(bv, r.Values) > 0.5
}

// SolutionValue returns the value of LinearArgument `la` in the response.
func SolutionValue(r *Response, la lpmodel.LinearArgument) float64 {
	return lpmodel.Evaluate(la, r.Values)
}
