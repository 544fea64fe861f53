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

import "fmt"

// DuplicateApplicationError is returned when two applications share a student
// and a topic.
type DuplicateApplicationError struct {
	Key ApplicationKey
	// First and Second are the positions of the colliding applications.
	First, Second int
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("applications %d and %d both pair student %d with topic %d",
		e.First, e.Second, e.Key.StudentID, e.Key.TopicID)
}

// EntityKind names the collection a MissingEntityError refers to.
type EntityKind string

// Entity kinds referenced by applications.
const (
	TopicEntity      EntityKind = "topic"
	InstructorEntity EntityKind = "instructor"
)

// MissingEntityError is returned when an application references a topic or an
// instructor that is not part of the input.
type MissingEntityError struct {
	Kind        EntityKind
	ID          int64
	Application ApplicationKey
}

func (e *MissingEntityError) Error() string {
	return fmt.Sprintf("application of student %d to topic %d references unknown %s %d",
		e.Application.StudentID, e.Application.TopicID, e.Kind, e.ID)
}
