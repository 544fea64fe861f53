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

// Package api defines the wire format of solve requests and responses.
package api

import (
	"github.com/topicmatch/topicmatch/topicmatch/formulation"
)

// Request is the payload of a solve. All fields are required; pointers tell a
// missing value apart from a zero one.
type Request struct {
	Students     []Student     `json:"students" yaml:"students" validate:"required,dive"`
	Topics       []Topic       `json:"topics" yaml:"topics" validate:"required,dive"`
	Instructors  []Instructor  `json:"instructors" yaml:"instructors" validate:"required,dive"`
	Applications []Application `json:"applications" yaml:"applications" validate:"required,dive"`
}

// Student is the wire form of formulation.Student.
type Student struct {
	ID *int64 `json:"id" yaml:"id" validate:"required"`
}

// Topic is the wire form of formulation.Topic.
type Topic struct {
	ID       *int64 `json:"id" yaml:"id" validate:"required"`
	Capacity *int64 `json:"capacity" yaml:"capacity" validate:"required,gt=0"`
}

// Instructor is the wire form of formulation.Instructor.
type Instructor struct {
	ID  *int64 `json:"id" yaml:"id" validate:"required"`
	Min *int64 `json:"min" yaml:"min" validate:"required,gte=0"`
	Max *int64 `json:"max" yaml:"max" validate:"required,gte=0"`
}

// Application is the wire form of formulation.Application.
type Application struct {
	StudentID     *int64   `json:"student_id" yaml:"student_id" validate:"required"`
	Rank          *int64   `json:"rank" yaml:"rank" validate:"required,gt=0"`
	TopicID       *int64   `json:"topic_id" yaml:"topic_id" validate:"required"`
	InstructorID  *int64   `json:"instructor_id" yaml:"instructor_id" validate:"required"`
	Grade         *float64 `json:"grade" yaml:"grade" validate:"required,gte=0,lte=5"`
	TopicCapacity *int64   `json:"topic_capacity" yaml:"topic_capacity" validate:"required,gte=0"`
}

// Matching is the wire form of formulation.Matching.
type Matching struct {
	StudentID int64 `json:"student_id" yaml:"student_id"`
	TopicID   int64 `json:"topic_id" yaml:"topic_id"`
}

// Response is the result of a solve. Status holds the numeric solver status.
type Response struct {
	Status    int        `json:"status" yaml:"status"`
	Matchings []Matching `json:"matchings" yaml:"matchings"`
}

// ErrorResponse is returned by the HTTP boundary for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Input converts a validated request to the core entities, preserving
// collection order.
func (r *Request) Input() *formulation.Input {
	in := &formulation.Input{
		Students:     make([]formulation.Student, 0, len(r.Students)),
		Topics:       make([]formulation.Topic, 0, len(r.Topics)),
		Instructors:  make([]formulation.Instructor, 0, len(r.Instructors)),
		Applications: make([]formulation.Application, 0, len(r.Applications)),
	}
	for _, s := range r.Students {
		in.Students = append(in.Students, formulation.Student{ID: *s.ID})
	}
	for _, t := range r.Topics {
		in.Topics = append(in.Topics, formulation.Topic{ID: *t.ID, Capacity: *t.Capacity})
	}
	for _, i := range r.Instructors {
		in.Instructors = append(in.Instructors, formulation.Instructor{ID: *i.ID, Min: *i.Min, Max: *i.Max})
	}
	for _, a := range r.Applications {
		in.Applications = append(in.Applications, formulation.Application{
			StudentID:     *a.StudentID,
			TopicID:       *a.TopicID,
			InstructorID:  *a.InstructorID,
			Rank:          *a.Rank,
			Grade:         *a.Grade,
			TopicCapacity: *a.TopicCapacity,
		})
	}
	return in
}

// FromResult converts a solve result to its wire form. Matchings is never nil.
func FromResult(res *formulation.Result) *Response {
	resp := &Response{Status: int(res.Status), Matchings: make([]Matching, 0, len(res.Matchings))}
	for _, m := range res.Matchings {
		resp.Matchings = append(resp.Matchings, Matching{StudentID: m.StudentID, TopicID: m.TopicID})
	}
	return resp
}
