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

	log "github.com/golang/glog"
	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
)

// ApplicationModel pairs an application with its admission variable.
type ApplicationModel struct {
	Application Application
	Admitted    lpmodel.BoolVar
}

// Cutoff is the indicator "applicants with this grade qualify".
type Cutoff struct {
	Grade     float64
	Qualified lpmodel.BoolVar
}

// CutoffChain holds the cutoffs of a topic or an instructor sorted by grade.
type CutoffChain []Cutoff

// at returns the cutoff of `grade` and the one a grade step above it. The top
// of the chain is its own successor.
func (c CutoffChain) at(grade float64) (cur, next lpmodel.BoolVar) {
	i := sort.Search(len(c), func(i int) bool { return c[i].Grade >= grade })
	if i == len(c) || c[i].Grade != grade {
		log.Fatalf("no cutoff for grade %v in chain of %d grades", grade, len(c))
	}
	j := i + 1
	if j == len(c) {
		j = i
	}
	return c[i].Qualified, c[j].Qualified
}

// allocateAdmissions creates one admission variable per application, in input
// order, and indexes the applications by key, student, topic and instructor.
func (f *Formulation) allocateAdmissions() error {
	for i, a := range f.input.Applications {
		key := a.Key()
		if j, ok := f.byKey[key]; ok {
			return &DuplicateApplicationError{Key: key, First: j, Second: i}
		}
		f.byKey[key] = i

		bv := f.builder.NewBoolVar().WithName(fmt.Sprintf("admit[%d,%d]", key.StudentID, key.TopicID))
		f.apps = append(f.apps, ApplicationModel{Application: a, Admitted: bv})
		f.admissions[bv.Index()] = i
		f.byStudent[a.StudentID] = append(f.byStudent[a.StudentID], i)
		f.byTopic[a.TopicID] = append(f.byTopic[a.TopicID], i)
		f.byInstructor[a.InstructorID] = append(f.byInstructor[a.InstructorID], i)
	}
	return nil
}

// sortedByTopicAndGrade returns application positions sorted by topic
// ascending, then grade descending, ties in input order.
func (f *Formulation) sortedByTopicAndGrade() []int {
	order := make([]int, len(f.apps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := f.apps[order[i]].Application, f.apps[order[j]].Application
		if a.TopicID != b.TopicID {
			return a.TopicID < b.TopicID
		}
		return a.Grade > b.Grade
	})
	return order
}

// allocateCutoffs creates a cutoff chain for every topic and every instructor
// that receives applications, over the distinct grades of those applications.
func (f *Formulation) allocateCutoffs() {
	var topicOrder, instructorOrder []int64
	topicGrades := make(map[int64][]float64)
	instructorGrades := make(map[int64][]float64)
	for _, i := range f.sortedByTopicAndGrade() {
		a := f.apps[i].Application
		if _, ok := topicGrades[a.TopicID]; !ok {
			topicOrder = append(topicOrder, a.TopicID)
		}
		topicGrades[a.TopicID] = append(topicGrades[a.TopicID], a.Grade)
		if _, ok := instructorGrades[a.InstructorID]; !ok {
			instructorOrder = append(instructorOrder, a.InstructorID)
		}
		instructorGrades[a.InstructorID] = append(instructorGrades[a.InstructorID], a.Grade)
	}

	for _, id := range topicOrder {
		f.topicCutoffs[id] = f.newCutoffChain("topic", id, topicGrades[id])
	}
	for _, id := range instructorOrder {
		f.instructorCutoffs[id] = f.newCutoffChain("instructor", id, instructorGrades[id])
	}
}

func (f *Formulation) newCutoffChain(owner string, id int64, grades []float64) CutoffChain {
	sort.Float64s(grades)
	var chain CutoffChain
	for i, g := range grades {
		if i > 0 && g == grades[i-1] {
			continue
		}
		bv := f.builder.NewBoolVar().WithName(fmt.Sprintf("%s_cutoff[%d,%g]", owner, id, g))
		chain = append(chain, Cutoff{Grade: g, Qualified: bv})
	}
	return chain
}
