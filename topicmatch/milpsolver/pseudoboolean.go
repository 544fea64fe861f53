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

	"github.com/crillab/gophersat/solver"
	log "github.com/golang/glog"
	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
)

// pseudoBooleanSolver optimizes the model exactly with gophersat. Each `>=` row
// becomes a pseudo-boolean constraint over literals with positive weights.
type pseudoBooleanSolver struct{}

// literal is a possibly negated model variable.
type literal struct {
	v   lpmodel.VarIndex
	neg bool
}

// normalize rewrites `Σ c·x >= rhs` so that every weight is positive, using
// c·x = c + |c|·¬x for negative c.
func normalize(r geRow) ([]literal, []int, int64) {
	lits := make([]literal, 0, len(r.terms))
	weights := make([]int, 0, len(r.terms))
	rhs := r.rhs
	for _, t := range r.terms {
		switch {
		case t.Coeff > 0:
			lits = append(lits, literal{v: t.Var})
			weights = append(weights, int(t.Coeff))
		case t.Coeff < 0:
			lits = append(lits, literal{v: t.Var, neg: true})
			weights = append(weights, int(-t.Coeff))
			rhs -= t.Coeff
		}
	}
	return lits, weights, rhs
}

// Solve implements Solver. The search itself cannot be interrupted, so ctx is
// only checked before it starts.
func (pseudoBooleanSolver) Solve(ctx context.Context, m *lpmodel.Model) (*Response, error) {
	if err := checkModel(m); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, ok := greaterOrEqualRows(m)
	if !ok {
		return &Response{Status: Infeasible}, nil
	}

	// Variables get dense gophersat ids 1..k in order of first use.
	ids := make(map[lpmodel.VarIndex]int)
	toInt := func(l literal) int {
		id, ok := ids[l.v]
		if !ok {
			id = len(ids) + 1
			ids[l.v] = id
		}
		if l.neg {
			return -id
		}
		return id
	}
	var constrs []solver.PBConstr
	for _, r := range rows {
		lits, weights, rhs := normalize(r)
		if rhs <= 0 {
			continue
		}
		var total int64
		for _, w := range weights {
			total += int64(w)
		}
		if rhs > total {
			log.V(2).Infof("row %v >= %d can never hold", r.terms, r.rhs)
			return &Response{Status: Infeasible}, nil
		}
		ints := make([]int, len(lits))
		for i, l := range lits {
			ints[i] = toInt(l)
		}
		constrs = append(constrs, solver.GtEq(ints, weights, int(rhs)))
	}

	values := make([]float64, len(m.Variables))
	var costLits []solver.Lit
	var costWeights []int
	for _, t := range m.Objective.Terms {
		id, constrained := ids[t.Var]
		if !constrained {
			// A variable that appears in no constraint takes its cheapest value.
			if t.Coeff < 0 {
				values[t.Var] = 1
			}
			continue
		}
		if t.Coeff > 0 {
			costLits = append(costLits, solver.IntToLit(int32(id)))
			costWeights = append(costWeights, int(t.Coeff))
		} else if t.Coeff < 0 {
			costLits = append(costLits, solver.IntToLit(int32(-id)))
			costWeights = append(costWeights, int(-t.Coeff))
		}
	}

	if len(constrs) > 0 {
		pb := solver.ParsePBConstrs(constrs)
		var s *solver.Solver
		if len(costLits) > 0 {
			pb.SetCostFunc(costLits, costWeights)
			s = solver.New(pb)
			if cost := s.Minimize(); cost < 0 {
				return &Response{Status: Infeasible}, nil
			}
		} else {
			s = solver.New(pb)
			if s.Solve() != solver.Sat {
				return &Response{Status: Infeasible}, nil
			}
		}
		model := s.Model()
		for v, id := range ids {
			if id-1 < len(model) && model[id-1] {
				values[v] = 1
			}
		}
	}

	return &Response{
		Status:         Optimal,
		ObjectiveValue: m.ObjectiveValue(values),
		Values:         values,
	}, nil
}
