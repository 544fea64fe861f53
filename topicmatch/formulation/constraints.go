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

	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
)

// checkReferences returns a *MissingEntityError for the first application that
// references an unknown topic or instructor.
func (f *Formulation) checkReferences() error {
	for _, am := range f.apps {
		a := am.Application
		if _, ok := f.topics[a.TopicID]; !ok {
			return &MissingEntityError{Kind: TopicEntity, ID: a.TopicID, Application: a.Key()}
		}
		if _, ok := f.instructors[a.InstructorID]; !ok {
			return &MissingEntityError{Kind: InstructorEntity, ID: a.InstructorID, Application: a.Key()}
		}
	}
	return nil
}

// sumAdmissions returns the sum of the admission variables of the applications
// at the given positions.
func (f *Formulation) sumAdmissions(positions []int) *lpmodel.LinearExpr {
	sum := lpmodel.NewLinearExpr()
	for _, i := range positions {
		sum.Add(f.apps[i].Admitted)
	}
	return sum
}

// buildConstraints adds, in order: student quotas, topic capacities, the
// constraints of the stability encoding and instructor quotas.
func (f *Formulation) buildConstraints() error {
	if err := f.checkReferences(); err != nil {
		return err
	}
	f.addStudentQuotas()
	f.addTopicCapacities()
	f.encoding.addStability(f)
	f.addInstructorQuotas()
	return nil
}

func (f *Formulation) addStudentQuotas() {
	for _, id := range f.studentOrder {
		f.builder.AddLessOrEqual(f.sumAdmissions(f.byStudent[id]), lpmodel.NewConstant(1)).
			WithName(fmt.Sprintf("student[%d].quota", id))
	}
}

func (f *Formulation) addTopicCapacities() {
	for _, t := range f.input.Topics {
		f.builder.AddLessOrEqual(f.sumAdmissions(f.byTopic[t.ID]), lpmodel.NewConstant(t.Capacity)).
			WithName(fmt.Sprintf("topic[%d].capacity", t.ID))
	}
}

func (f *Formulation) addInstructorQuotas() {
	for _, in := range f.input.Instructors {
		f.builder.AddLinearConstraint(f.sumAdmissions(f.byInstructor[in.ID]), in.Min, in.Max).
			WithName(fmt.Sprintf("instructor[%d].quota", in.ID))
	}
}

// instructorCapacity is the sum of the capacities of the distinct topics
// routed to the instructor by applications.
func (f *Formulation) instructorCapacity(id int64) int64 {
	seen := make(map[int64]bool)
	var total int64
	for _, i := range f.byInstructor[id] {
		tid := f.apps[i].Application.TopicID
		if seen[tid] {
			continue
		}
		seen[tid] = true
		total += f.topics[tid].Capacity
	}
	return total
}
