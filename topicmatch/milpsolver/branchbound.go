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

package milpsolver

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// integralityTolerance is how far from 0 or 1 a relaxed value may be and
	// still count as integral.
	integralityTolerance = 1e-6
	simplexTolerance     = 1e-10
)

// branchAndBoundSolver runs a depth-first branch-and-bound search over LP
// relaxations solved with the gonum simplex implementation.
type branchAndBoundSolver struct {
	nodeLimit int
}

// fixing holds the branching decisions of a node: -1 free, otherwise the value.
type fixing []int8

func (f fixing) with(j int, v int8) fixing {
	g := make(fixing, len(f))
	copy(g, f)
	g[j] = v
	return g
}

// relaxation is the LP relaxation of a model in the standard form expected by
// lp.Simplex: minimize c·x subject to A·x = b, x >= 0, one slack per row.
type relaxation struct {
	rows []geRow
	cost []float64
	n    int
}

// solve returns the optimal value and the structural variables of the
// relaxation restricted by f.
func (r *relaxation) solve(f fixing) (float64, []float64, error) {
	type stdRow struct {
		coeffs map[int]float64
		slack  float64
		rhs    float64
	}
	var rows []stdRow
	for _, gr := range r.rows {
		coeffs := make(map[int]float64, len(gr.terms))
		for _, t := range gr.terms {
			coeffs[int(t.Var)] += float64(t.Coeff)
		}
		rows = append(rows, stdRow{coeffs: coeffs, slack: -1, rhs: float64(gr.rhs)})
	}
	for j := 0; j < r.n; j++ {
		upper := 1.0
		if f[j] == 0 {
			upper = 0
		}
		rows = append(rows, stdRow{coeffs: map[int]float64{j: 1}, slack: 1, rhs: upper})
		if f[j] == 1 {
			rows = append(rows, stdRow{coeffs: map[int]float64{j: 1}, slack: -1, rhs: 1})
		}
	}

	m := len(rows)
	cols := r.n + m
	a := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	for i, row := range rows {
		sign := 1.0
		if row.rhs < 0 {
			sign = -1
		}
		for j, c := range row.coeffs {
			a.Set(i, j, sign*c)
		}
		a.Set(i, r.n+i, sign*row.slack)
		b[i] = sign * row.rhs
	}
	c := make([]float64, cols)
	copy(c, r.cost)

	opt, x, err := lp.Simplex(c, a, b, simplexTolerance, nil)
	if err != nil {
		return 0, nil, err
	}
	return opt, x[:r.n], nil
}

// mostFractional returns the index of the value farthest from 0 and 1, or -1 if
// all values are integral.
func mostFractional(x []float64) int {
	best, bestDist := -1, integralityTolerance
	for j, v := range x {
		if d := math.Min(v, 1-v); d > bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// Solve implements Solver.
func (s *branchAndBoundSolver) Solve(ctx context.Context, m *lpmodel.Model) (*Response, error) {
	if err := checkModel(m); err != nil {
		return nil, err
	}
	rows, ok := greaterOrEqualRows(m)
	if !ok {
		return &Response{Status: Infeasible}, nil
	}
	n := len(m.Variables)
	if n == 0 {
		return &Response{Status: Optimal, ObjectiveValue: m.ObjectiveValue(nil), Values: []float64{}}, nil
	}
	r := &relaxation{rows: rows, cost: make([]float64, n), n: n}
	for _, t := range m.Objective.Terms {
		r.cost[t.Var] += float64(t.Coeff)
	}

	root := make(fixing, n)
	for j := range root {
		root[j] = -1
	}
	stack := []fixing{root}
	bestCost := math.Inf(1)
	var incumbent []float64
	nodes := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("branch and bound interrupted after %d nodes: %w", nodes, err)
		}
		if s.nodeLimit > 0 && nodes >= s.nodeLimit {
			log.Warningf("branch and bound stopped at the node limit %d", s.nodeLimit)
			return &Response{Status: NotSolved, Values: incumbent}, nil
		}
		nodes++
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bound, x, err := r.solve(f)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			return &Response{Status: Unbounded}, nil
		case err != nil:
			return nil, fmt.Errorf("solving LP relaxation at node %d: %w", nodes, err)
		}
		// Objective coefficients are integers, so the best integral cost below a
		// node is at least the bound rounded up.
		if math.Ceil(bound-integralityTolerance) >= bestCost {
			continue
		}
		j := mostFractional(x)
		if j < 0 {
			values := make([]float64, n)
			cost := 0.0
			for i, v := range x {
				values[i] = math.Round(v)
				cost += r.cost[i] * values[i]
			}
			bestCost, incumbent = cost, values
			log.V(2).Infof("branch and bound found cost %v at node %d", cost, nodes)
			continue
		}
		// The child closest to the relaxed value is explored first.
		if x[j] >= 0.5 {
			stack = append(stack, f.with(j, 0), f.with(j, 1))
		} else {
			stack = append(stack, f.with(j, 1), f.with(j, 0))
		}
	}
	log.V(1).Infof("branch and bound explored %d nodes", nodes)

	if incumbent == nil {
		return &Response{Status: Infeasible}, nil
	}
	return &Response{
		Status:         Optimal,
		ObjectiveValue: m.ObjectiveValue(incumbent),
		Values:         incumbent,
	}, nil
}
