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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/topicmatch/topicmatch/topicmatch/api"
	"github.com/topicmatch/topicmatch/topicmatch/config"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

const solvableRequest = `{
  "students": [{"id": 1}, {"id": 2}],
  "topics": [{"id": 10, "capacity": 1}],
  "instructors": [{"id": 100, "min": 0, "max": 5}],
  "applications": [
    {"student_id": 1, "rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 4.0, "topic_capacity": 1},
    {"student_id": 2, "rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 3, "topic_capacity": 1}
  ]
}`

const infeasibleRequest = `{
  "students": [{"id": 1}],
  "topics": [{"id": 10, "capacity": 1}],
  "instructors": [{"id": 100, "min": 2, "max": 5}],
  "applications": [
    {"student_id": 1, "rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 4, "topic_capacity": 1}
  ]
}`

const duplicateRequest = `{
  "students": [{"id": 1}],
  "topics": [{"id": 10, "capacity": 1}],
  "instructors": [{"id": 100, "min": 0, "max": 5}],
  "applications": [
    {"student_id": 1, "rank": 1, "topic_id": 10, "instructor_id": 100, "grade": 4, "topic_capacity": 1},
    {"student_id": 1, "rank": 2, "topic_id": 10, "instructor_id": 100, "grade": 4, "topic_capacity": 1}
  ]
}`

const missingTopicRequest = `{
  "students": [{"id": 1}],
  "topics": [{"id": 10, "capacity": 1}],
  "instructors": [{"id": 100, "min": 0, "max": 5}],
  "applications": [
    {"student_id": 1, "rank": 1, "topic_id": 11, "instructor_id": 100, "grade": 4, "topic_capacity": 1}
  ]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := NewFromConfig(config.Default())
	if err != nil {
		t.Fatalf("NewFromConfig() returned unexpected error %v", err)
	}
	return s
}

func post(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestSolve(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want *api.Response
	}{
		{
			name: "Optimal",
			body: solvableRequest,
			want: &api.Response{Status: int(milpsolver.Optimal), Matchings: []api.Matching{{StudentID: 1, TopicID: 10}}},
		},
		{
			name: "Infeasible",
			body: infeasibleRequest,
			want: &api.Response{Status: int(milpsolver.Infeasible), Matchings: []api.Matching{}},
		},
	}

	s := newTestServer(t)
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			w := post(s, test.body)
			if w.Code != http.StatusOK {
				t.Fatalf("POST /solve = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
			}
			got := &api.Response{}
			if err := json.Unmarshal(w.Body.Bytes(), got); err != nil {
				t.Fatalf("json.Unmarshal() returned unexpected error %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("POST /solve returned with unexpected diff (-want+got):\n%v", diff)
			}
		})
	}
}

func TestSolveErrors(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{"MalformedJSON", `{"students": [`, http.StatusBadRequest, "invalid request"},
		{"UnknownField", `{"students": [], "topics": [], "instructors": [], "applications": [], "extra": 1}`, http.StatusBadRequest, "extra"},
		{"MissingCollection", `{"students": [], "topics": [], "instructors": []}`, http.StatusBadRequest, "applications"},
		{"Duplicate", duplicateRequest, http.StatusUnprocessableEntity, "both pair student 1 with topic 10"},
		{"MissingTopic", missingTopicRequest, http.StatusUnprocessableEntity, "11"},
	}

	s := newTestServer(t)
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			w := post(s, test.body)
			if w.Code != test.wantCode {
				t.Fatalf("POST /solve = %d, want %d (body %s)", w.Code, test.wantCode, w.Body.String())
			}
			got := &api.ErrorResponse{}
			if err := json.Unmarshal(w.Body.Bytes(), got); err != nil {
				t.Fatalf("json.Unmarshal() returned unexpected error %v", err)
			}
			if !strings.Contains(got.Error, test.wantError) {
				t.Errorf("POST /solve error = %q, want it to contain %q", got.Error, test.wantError)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("%s = %q, want %q", requestIDHeader, got, "abc-123")
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Errorf("%s = %q, want a generated UUID", requestIDHeader, got)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q, want %d %q", w.Code, w.Body.String(), http.StatusOK, "ok")
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	post(s, solvableRequest)
	post(s, infeasibleRequest)
	post(s, `not json`)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, want := range []string{
		`topicmatch_solves_total{status="OPTIMAL"} 1`,
		`topicmatch_solves_total{status="INFEASIBLE"} 1`,
		`topicmatch_request_errors_total{reason="invalid_request"} 1`,
		`topicmatch_solve_duration_seconds_count 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /metrics does not contain %q", want)
		}
	}
}
