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

// Package formulation encodes stable many-to-one matching of students to topics
// as a 0-1 integer linear program.
//
// Every application gets a binary admission variable. Topics and instructors
// get a chain of binary cutoff variables, one per distinct applicant grade,
// which rise monotonically with the grade. Linear constraints tie admissions to
// cutoffs so that every optimal solution is a stable, non-wasteful matching that
// respects student, topic and instructor quotas. The objective minimizes the sum
// of the ranks of the admitted applications.
package formulation

import "github.com/topicmatch/topicmatch/topicmatch/milpsolver"

// Student is a participant that applies to topics.
type Student struct {
	ID int64
}

// Topic offers Capacity seats.
type Topic struct {
	ID       int64
	Capacity int64
}

// Instructor owns topics and must admit between Min and Max students across
// all of them.
type Instructor struct {
	ID  int64
	Min int64
	Max int64
}

// Application is a student's ranked preference for a topic. Rank 1 is the
// most preferred. TopicCapacity must equal the Capacity of the topic.
type Application struct {
	StudentID     int64
	TopicID       int64
	InstructorID  int64
	Rank          int64
	Grade         float64
	TopicCapacity int64
}

// Key returns the natural key of the application.
func (a Application) Key() ApplicationKey {
	return ApplicationKey{StudentID: a.StudentID, TopicID: a.TopicID}
}

// ApplicationKey identifies an application and its admission variable.
type ApplicationKey struct {
	StudentID int64
	TopicID   int64
}

// Input holds the collections of a single solve. Collection order determines
// the order of the generated constraints.
type Input struct {
	Students     []Student
	Topics       []Topic
	Instructors  []Instructor
	Applications []Application
}

// Matching is an admitted application.
type Matching struct {
	StudentID int64
	TopicID   int64
}

// Result is the outcome of a solve. Matchings is empty unless Status is
// milpsolver.Optimal.
type Result struct {
	Status    milpsolver.Status
	Objective float64
	Matchings []Matching
}
