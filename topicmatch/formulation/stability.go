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
	"fmt"
	"sort"

	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
)

// StabilityEncoding selects the constraints that rule out blocking pairs.
type StabilityEncoding interface {
	fmt.Stringer
	needsCutoffs() bool
	addStability(f *Formulation)
}

var (
	// CutoffStability links admissions to per topic and per instructor grade
	// cutoffs. It also enforces non-wastefulness at both levels.
	CutoffStability StabilityEncoding = cutoffStability{}
	// RankOnlyStability is the reduced encoding without cutoff variables: an
	// application is either matched at this or a better rank, or its topic is
	// filled with applicants of at least the same grade.
	RankOnlyStability StabilityEncoding = rankOnlyStability{}
)

type cutoffStability struct{}

func (cutoffStability) String() string     { return "cutoff" }
func (cutoffStability) needsCutoffs() bool { return true }

func (cutoffStability) addStability(f *Formulation) {
	// Cutoff ordering.
	for _, t := range f.input.Topics {
		addCutoffOrdering(f.builder, fmt.Sprintf("topic[%d]", t.ID), f.topicCutoffs[t.ID])
	}
	for _, in := range f.input.Instructors {
		addCutoffOrdering(f.builder, fmt.Sprintf("instructor[%d]", in.ID), f.instructorCutoffs[in.ID])
	}

	// Non-wastefulness.
	for _, t := range f.input.Topics {
		addNonWastefulness(f, fmt.Sprintf("topic[%d]", t.ID), f.topicCutoffs[t.ID], f.byTopic[t.ID], t.Capacity)
	}
	for _, in := range f.input.Instructors {
		addNonWastefulness(f, fmt.Sprintf("instructor[%d]", in.ID), f.instructorCutoffs[in.ID], f.byInstructor[in.ID], f.instructorCapacity(in.ID))
	}

	// Linkage of every application to the cutoffs at its grade.
	for _, id := range f.studentOrder {
		ranked := f.byStudentRank(id)
		for k, i := range ranked {
			a := f.apps[i]
			key := a.Application.Key()
			instructorCur, instructorNext := f.instructorCutoffs[a.Application.InstructorID].at(a.Application.Grade)
			topicCur, topicNext := f.topicCutoffs[a.Application.TopicID].at(a.Application.Grade)

			top := f.sumAdmissions(ranked[:k+1])
			top.AddTerm(instructorCur, -1).AddTerm(topicCur, -1)
			f.builder.AddGreaterOrEqual(top, lpmodel.NewConstant(-1)).
				WithName(fmt.Sprintf("application[%d,%d].stability", key.StudentID, key.TopicID))
			f.builder.AddImplication(a.Admitted, instructorNext).
				WithName(fmt.Sprintf("application[%d,%d].instructor_cutoff", key.StudentID, key.TopicID))
			f.builder.AddImplication(a.Admitted, topicNext).
				WithName(fmt.Sprintf("application[%d,%d].topic_cutoff", key.StudentID, key.TopicID))
		}
	}
}

// addCutoffOrdering makes the cutoffs of a chain non-decreasing in grade order.
func addCutoffOrdering(b *lpmodel.Builder, owner string, chain CutoffChain) {
	for i := 1; i < len(chain); i++ {
		b.AddLessOrEqual(chain[i-1].Qualified, chain[i].Qualified).
			WithName(fmt.Sprintf("%s.cutoff_order[%d]", owner, i))
	}
}

// addNonWastefulness forces all `capacity` seats to be filled when the lowest
// grade of the chain does not qualify.
func addNonWastefulness(f *Formulation, owner string, chain CutoffChain, positions []int, capacity int64) {
	if len(chain) == 0 {
		return
	}
	expr := f.sumAdmissions(positions).AddTerm(chain[0].Qualified, capacity)
	f.builder.AddGreaterOrEqual(expr, lpmodel.NewConstant(capacity)).
		WithName(fmt.Sprintf("%s.non_wasteful", owner))
}

type rankOnlyStability struct{}

func (rankOnlyStability) String() string     { return "rank-only" }
func (rankOnlyStability) needsCutoffs() bool { return false }

func (rankOnlyStability) addStability(f *Formulation) {
	for _, am := range f.apps {
		a := am.Application
		expr := lpmodel.NewLinearExpr()
		for _, i := range f.byStudent[a.StudentID] {
			if f.apps[i].Application.Rank <= a.Rank {
				expr.AddTerm(f.apps[i].Admitted, a.TopicCapacity)
			}
		}
		for _, i := range f.byTopic[a.TopicID] {
			if f.apps[i].Application.Grade >= a.Grade {
				expr.Add(f.apps[i].Admitted)
			}
		}
		f.builder.AddGreaterOrEqual(expr, lpmodel.NewConstant(a.TopicCapacity)).
			WithName(fmt.Sprintf("application[%d,%d].stability", a.StudentID, a.TopicID))
	}
}

// byStudentRank returns the positions of the student's applications sorted by
// rank, ties in input order.
func (f *Formulation) byStudentRank(id int64) []int {
	if ranked, ok := f.ranked[id]; ok {
		return ranked
	}
	ranked := append([]int(nil), f.byStudent[id]...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return f.apps[ranked[i]].Application.Rank < f.apps[ranked[j]].Application.Rank
	})
	f.ranked[id] = ranked
	return ranked
}
