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

package api

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/topicmatch/topicmatch/topicmatch/formulation"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

const validRequest = `{
  "students": [{"id": 1}, {"id": 2}],
  "topics": [{"id": 10, "capacity": 1}],
  "instructors": [{"id": 100, "min": 0, "max": 5}],
  "applications": [
    {"student_id": 1, "rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 4.0, "topic_capacity": 1},
    {"student_id": 2, "rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 3, "topic_capacity": 1}
  ]
}`

const validYAMLRequest = `
students:
  - id: 1
  - id: 2
topics:
  - {id: 10, capacity: 1}
instructors:
  - {id: 100, min: 0, max: 5}
applications:
  - {student_id: 1, rank: 1, topic_id: 10, instructor_id: 100, grade: 4.0, topic_capacity: 1}
  - {student_id: 2, rank: 1, topic_id: 10, instructor_id: 100, grade: 3, topic_capacity: 1}
`

func wantInput() *formulation.Input {
	return &formulation.Input{
		Students:    []formulation.Student{{ID: 1}, {ID: 2}},
		Topics:      []formulation.Topic{{ID: 10, Capacity: 1}},
		Instructors: []formulation.Instructor{{ID: 100, Min: 0, Max: 5}},
		Applications: []formulation.Application{
			{StudentID: 1, TopicID: 10, InstructorID: 100, Rank: 1, Grade: 4, TopicCapacity: 1},
			{StudentID: 2, TopicID: 10, InstructorID: 100, Rank: 1, Grade: 3, TopicCapacity: 1},
		},
	}
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name   string
		decode func(string) (*Request, error)
		in     string
	}{
		{"JSON", func(s string) (*Request, error) { return Decode(strings.NewReader(s)) }, validRequest},
		{"YAML", func(s string) (*Request, error) { return DecodeYAML(strings.NewReader(s)) }, validYAMLRequest},
		{"BytesYAML", func(s string) (*Request, error) { return DecodeBytes([]byte(s), true) }, validYAMLRequest},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			req, err := test.decode(test.in)
			if err != nil {
				t.Fatalf("decode returned unexpected error %v", err)
			}
			if diff := cmp.Diff(wantInput(), req.Input()); diff != "" {
				t.Errorf("Input() returned with unexpected diff (-want+got):\n%v", diff)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{
			name:    "Malformed",
			in:      `{"students": [`,
			wantMsg: "failed to parse JSON",
		},
		{
			name:    "TrailingData",
			in:      validRequest + `{}`,
			wantMsg: "trailing data",
		},
		{
			name:    "UnknownField",
			in:      strings.Replace(validRequest, `"students"`, `"pupils"`, 1),
			wantMsg: "unknown field",
		},
		{
			name:    "MissingCollection",
			in:      `{"students": [], "topics": [], "instructors": []}`,
			wantMsg: "applications is required",
		},
		{
			name:    "MissingID",
			in:      strings.Replace(validRequest, `{"id": 2}`, `{}`, 1),
			wantMsg: "students[1].id is required",
		},
		{
			name:    "ZeroRank",
			in:      strings.Replace(validRequest, `"rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 3`, `"rank": 0, "topic_id": 10, "instructor_id": 100, "grade": 3`, 1),
			wantMsg: "applications[1].rank must satisfy gt=0",
		},
		{
			name:    "GradeAboveFive",
			in:      strings.Replace(validRequest, `"grade": 4.0`, `"grade": 5.5`, 1),
			wantMsg: "applications[0].grade must satisfy lte=5",
		},
		{
			name:    "ZeroCapacity",
			in:      strings.Replace(validRequest, `"capacity": 1`, `"capacity": 0`, 1),
			wantMsg: "topics[0].capacity must satisfy gt=0",
		},
		{
			name:    "NegativeMin",
			in:      strings.Replace(validRequest, `"min": 0`, `"min": -1`, 1),
			wantMsg: "instructors[0].min must satisfy gte=0",
		},
		{
			name:    "FractionalRank",
			in:      strings.Replace(validRequest, `"rank": 1`, `"rank": 1.5`, 1),
			wantMsg: "failed to parse JSON",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(test.in))
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("Decode() returned error %v, want %v", err, ErrInvalidRequest)
			}
			if !strings.Contains(err.Error(), test.wantMsg) {
				t.Errorf("Decode() returned error %q, want it to contain %q", err, test.wantMsg)
			}
		})
	}
}

func TestDecodeYAML_UnknownField(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader(validYAMLRequest + "pupils: []\n"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("DecodeYAML() returned error %v, want %v", err, ErrInvalidRequest)
	}
}

func TestFromResult(t *testing.T) {
	testCases := []struct {
		name string
		res  *formulation.Result
		want string
	}{
		{
			name: "Optimal",
			res: &formulation.Result{
				Status:    milpsolver.Optimal,
				Objective: 1,
				Matchings: []formulation.Matching{{StudentID: 1, TopicID: 10}},
			},
			want: `{"status":1,"matchings":[{"student_id":1,"topic_id":10}]}`,
		},
		{
			name: "Infeasible",
			res:  &formulation.Result{Status: milpsolver.Infeasible},
			want: `{"status":-1,"matchings":[]}`,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			got, err := json.Marshal(FromResult(test.res))
			if err != nil {
				t.Fatalf("json.Marshal() returned unexpected error %v", err)
			}
			if diff := cmp.Diff(test.want, string(got)); diff != "" {
				t.Errorf("FromResult() returned with unexpected diff (-want+got):\n%v", diff)
			}
		})
	}
}
