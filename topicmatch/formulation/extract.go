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

package formulation

import (
	"math"

	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

// admissionTolerance is how far from 1 an admission value may be and still
// count as admitted.
const admissionTolerance = 1e-6

// Extract turns a solver response into a Result. Only admission variables are
// considered; matchings follow the application order. A response that is not
// optimal gives an empty list of matchings.
func (f *Formulation) Extract(resp *milpsolver.Response) *Result {
	res := &Result{Status: resp.Status, Matchings: []Matching{}}
	if resp.Status != milpsolver.Optimal {
		return res
	}
	res.Objective = resp.ObjectiveValue
	for v, value := range resp.Values {
		i, ok := f.admissions[lpmodel.VarIndex(v)]
		if !ok || math.Abs(value-1) >= admissionTolerance {
			continue
		}
		a := f.apps[i].Application
		res.Matchings = append(res.Matchings, Matching{StudentID: a.StudentID, TopicID: a.TopicID})
	}
	return res
}

// CutoffValue is the solved value of a single cutoff.
type CutoffValue struct {
	Grade     float64
	Qualified bool
}

// CutoffValues holds the solved cutoff chains, sorted by grade, keyed by topic
// and instructor ID.
type CutoffValues struct {
	Topics      map[int64][]CutoffValue
	Instructors map[int64][]CutoffValue
}

func chainValues(resp *milpsolver.Response, chains map[int64]CutoffChain) map[int64][]CutoffValue {
	values := make(map[int64][]CutoffValue, len(chains))
	for id, chain := range chains {
		for _, c := range chain {
			values[id] = append(values[id], CutoffValue{
				Grade:     c.Grade,
				Qualified: milpsolver.SolutionBooleanValue(resp, c.Qualified),
			})
		}
	}
	return values
}

// Cutoffs returns the solved cutoff chains. The maps are empty when the
// encoding has no cutoffs or the response is not optimal.
func (f *Formulation) Cutoffs(resp *milpsolver.Response) *CutoffValues {
	if resp.Status != milpsolver.Optimal {
		return &CutoffValues{Topics: map[int64][]CutoffValue{}, Instructors: map[int64][]CutoffValue{}}
	}
	return &CutoffValues{
		Topics:      chainValues(resp, f.topicCutoffs),
		Instructors: chainValues(resp, f.instructorCutoffs),
	}
}
