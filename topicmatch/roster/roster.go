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

// Package roster builds solve requests from course records. A student's grade
// for a topic is the weighted average of their course grades, with weights set
// by the topic.
package roster

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	log "github.com/golang/glog"
	"github.com/topicmatch/topicmatch/topicmatch/api"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownTopic is returned when a student prefers a topic that is not in
	// the roster.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrInvalidRoster wraps every decoding and validation failure.
	ErrInvalidRoster = errors.New("invalid roster")
)

var validate = validator.New()

// Roster lists the participants of a matching round.
type Roster struct {
	Students    []Student    `yaml:"students" validate:"required,dive"`
	Topics      []Topic      `yaml:"topics" validate:"required,dive"`
	Instructors []Instructor `yaml:"instructors" validate:"required,dive"`
}

// Student holds the topic preferences and course completions of a student.
type Student struct {
	ID          int64        `yaml:"id"`
	Preferences []Preference `yaml:"preferences" validate:"dive"`
	Completions []Completion `yaml:"completions" validate:"dive"`
}

// Preference ranks a topic. Rank 1 is the most preferred.
type Preference struct {
	TopicID int64 `yaml:"topic_id"`
	Rank    int64 `yaml:"rank" validate:"gt=0"`
}

// Completion is the grade a student got in a course.
type Completion struct {
	CourseID int64   `yaml:"course_id"`
	Grade    float64 `yaml:"grade" validate:"gte=0,lte=5"`
}

// Topic is offered by an instructor. CourseWeights weigh the courses relevant
// to the topic; courses without a weight count once.
type Topic struct {
	ID            int64          `yaml:"id"`
	Capacity      int64          `yaml:"capacity" validate:"gt=0"`
	InstructorID  int64          `yaml:"instructor_id"`
	CourseWeights []CourseWeight `yaml:"course_weights" validate:"dive"`
}

// CourseWeight is the weight of a course for a topic.
type CourseWeight struct {
	CourseID int64   `yaml:"course_id"`
	Weight   float64 `yaml:"weight" validate:"gte=0"`
}

// Instructor must admit between Min and Max students across its topics.
type Instructor struct {
	ID  int64 `yaml:"id"`
	Min int64 `yaml:"min" validate:"gte=0"`
	Max int64 `yaml:"max" validate:"gte=0"`
}

// WeightedGrade returns the average of the completion grades weighted by
// `weights`. Courses without a weight count with weight 1. It returns 0 when
// the total weight is 0.
func WeightedGrade(completions []Completion, weights []CourseWeight) float64 {
	byCourse := make(map[int64]float64, len(weights))
	for _, w := range weights {
		if _, ok := byCourse[w.CourseID]; !ok {
			byCourse[w.CourseID] = w.Weight
		}
	}
	var sum, total float64
	for _, c := range completions {
		weight, ok := byCourse[c.CourseID]
		if !ok {
			weight = 1
		}
		sum += c.Grade * weight
		total += weight
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Load reads a YAML roster from r and validates it. Unknown fields are rejected.
func Load(r io.Reader) (*Roster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	ros := &Roster{}
	if err := dec.Decode(ros); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	if err := validate.Struct(ros); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	return ros, nil
}

// Request builds the solve request of the roster: one application per student
// preference, routed to the topic's instructor with the topic's capacity.
func (r *Roster) Request() (*api.Request, error) {
	topics := make(map[int64]*Topic, len(r.Topics))
	for i := range r.Topics {
		topics[r.Topics[i].ID] = &r.Topics[i]
	}

	req := &api.Request{
		Students:     make([]api.Student, 0, len(r.Students)),
		Topics:       make([]api.Topic, 0, len(r.Topics)),
		Instructors:  make([]api.Instructor, 0, len(r.Instructors)),
		Applications: []api.Application{},
	}
	for _, s := range r.Students {
		req.Students = append(req.Students, api.Student{ID: ptr(s.ID)})
		for _, p := range s.Preferences {
			t, ok := topics[p.TopicID]
			if !ok {
				return nil, fmt.Errorf("student %d prefers topic %d: %w", s.ID, p.TopicID, ErrUnknownTopic)
			}
			req.Applications = append(req.Applications, api.Application{
				StudentID:     ptr(s.ID),
				Rank:          ptr(p.Rank),
				TopicID:       ptr(t.ID),
				InstructorID:  ptr(t.InstructorID),
				Grade:         ptr(WeightedGrade(s.Completions, t.CourseWeights)),
				TopicCapacity: ptr(t.Capacity),
			})
		}
	}
	for _, t := range r.Topics {
		req.Topics = append(req.Topics, api.Topic{ID: ptr(t.ID), Capacity: ptr(t.Capacity)})
	}
	for _, i := range r.Instructors {
		req.Instructors = append(req.Instructors, api.Instructor{ID: ptr(i.ID), Min: ptr(i.Min), Max: ptr(i.Max)})
	}
	log.V(1).Infof("roster gives %d applications from %d students", len(req.Applications), len(req.Students))
	return req, nil
}

func ptr[T any](v T) *T {
	return &v
}
