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
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/golang/glog"
	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
	"github.com/topicmatch/topicmatch/topicmatch/milpsolver"
)

// ErrUnknownDebugFormat is returned for a debug dump format other than lp or json.
var ErrUnknownDebugFormat = errors.New("unknown debug format")

// DebugFormat is the text format of a model dump.
type DebugFormat string

const (
	// DebugLP dumps the model in CPLEX LP format.
	DebugLP DebugFormat = "lp"
	// DebugJSON dumps the model as JSON.
	DebugJSON DebugFormat = "json"
)

// ParseDebugFormat returns the DebugFormat named by s.
func ParseDebugFormat(s string) (DebugFormat, error) {
	switch d := DebugFormat(strings.ToLower(strings.TrimSpace(s))); d {
	case DebugLP, DebugJSON:
		return d, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownDebugFormat)
	}
}

type options struct {
	encoding StabilityEncoding
	debug    DebugFormat
}

// Option configures Formulate.
type Option func(*options)

// WithStability selects the stability encoding. The default is CutoffStability.
func WithStability(e StabilityEncoding) Option {
	return func(o *options) {
		o.encoding = e
	}
}

// WithDebugDump logs the built model in the given format before it is solved.
func WithDebugDump(format DebugFormat) Option {
	return func(o *options) {
		o.debug = format
	}
}

// Formulation is the 0-1 program of a single Input together with the tables
// needed to read a solution back.
type Formulation struct {
	input    *Input
	encoding StabilityEncoding
	debug    DebugFormat
	builder  *lpmodel.Builder
	model    *lpmodel.Model

	topics       map[int64]Topic
	instructors  map[int64]Instructor
	studentOrder []int64

	apps []ApplicationModel
	// admissions maps admission variables to application positions. Cutoff
	// variables are absent.
	admissions   map[lpmodel.VarIndex]int
	byKey        map[ApplicationKey]int
	byStudent    map[int64][]int
	byTopic      map[int64][]int
	byInstructor map[int64][]int
	ranked       map[int64][]int

	topicCutoffs      map[int64]CutoffChain
	instructorCutoffs map[int64]CutoffChain
}

// Formulate builds the program for `in`. It returns a *DuplicateApplicationError
// or a *MissingEntityError when the input is inconsistent.
func Formulate(in *Input, opts ...Option) (*Formulation, error) {
	o := options{encoding: CutoffStability}
	for _, opt := range opts {
		opt(&o)
	}
	if o.encoding == nil {
		o.encoding = CutoffStability
	}
	if o.debug != "" {
		if _, err := ParseDebugFormat(string(o.debug)); err != nil {
			return nil, err
		}
	}

	f := &Formulation{
		input:             in,
		encoding:          o.encoding,
		debug:             o.debug,
		builder:           lpmodel.NewBuilder("student-topic-assignment"),
		topics:            make(map[int64]Topic, len(in.Topics)),
		instructors:       make(map[int64]Instructor, len(in.Instructors)),
		admissions:        make(map[lpmodel.VarIndex]int, len(in.Applications)),
		byKey:             make(map[ApplicationKey]int, len(in.Applications)),
		byStudent:         make(map[int64][]int),
		byTopic:           make(map[int64][]int),
		byInstructor:      make(map[int64][]int),
		ranked:            make(map[int64][]int),
		topicCutoffs:      make(map[int64]CutoffChain),
		instructorCutoffs: make(map[int64]CutoffChain),
	}
	for _, t := range in.Topics {
		if _, ok := f.topics[t.ID]; !ok {
			f.topics[t.ID] = t
		}
	}
	for _, i := range in.Instructors {
		if _, ok := f.instructors[i.ID]; !ok {
			f.instructors[i.ID] = i
		}
	}

	if err := f.allocateAdmissions(); err != nil {
		return nil, err
	}
	f.orderStudents()
	if f.encoding.needsCutoffs() {
		f.allocateCutoffs()
	}
	if err := f.buildConstraints(); err != nil {
		return nil, err
	}
	f.buildObjective()

	m, err := f.builder.Model()
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	f.model = m
	log.V(1).Infof("formulated %d applications with %v stability: %d variables, %d constraints",
		len(f.apps), f.encoding, len(m.Variables), len(m.Constraints))
	return f, nil
}

// orderStudents lists the students in collection order, followed by students
// that only appear in applications.
func (f *Formulation) orderStudents() {
	seen := make(map[int64]bool)
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			f.studentOrder = append(f.studentOrder, id)
		}
	}
	for _, s := range f.input.Students {
		add(s.ID)
	}
	for _, am := range f.apps {
		add(am.Application.StudentID)
	}
}

// Model returns the built program.
func (f *Formulation) Model() *lpmodel.Model {
	return f.model
}

// Encoding returns the stability encoding of the program.
func (f *Formulation) Encoding() StabilityEncoding {
	return f.encoding
}

// Applications returns the applications paired with their admission variables,
// in input order.
func (f *Formulation) Applications() []ApplicationModel {
	return append([]ApplicationModel(nil), f.apps...)
}

// Lookup returns the application whose admission variable is v.
func (f *Formulation) Lookup(v lpmodel.VarIndex) (Application, bool) {
	i, ok := f.admissions[v]
	if !ok {
		return Application{}, false
	}
	return f.apps[i].Application, true
}

// Export returns the program in the given text format.
func (f *Formulation) Export(format DebugFormat) ([]byte, error) {
	switch format {
	case DebugLP:
		lp, err := lpmodel.ExportModelAsLpFormat(f.model, lpmodel.ExportOptions{})
		return []byte(lp), err
	case DebugJSON:
		return lpmodel.ExportModelAsJSON(f.model)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownDebugFormat)
	}
}

// Solve solves the program with s and extracts the matching. A status other
// than milpsolver.Optimal is reported in the Result, not as an error.
func (f *Formulation) Solve(ctx context.Context, s milpsolver.Solver) (*Result, error) {
	if f.debug != "" {
		dump, err := f.Export(f.debug)
		if err != nil {
			return nil, fmt.Errorf("dumping model: %w", err)
		}
		log.Infof("model %q:\n%s", f.model.Name, dump)
	}
	resp, err := s.Solve(ctx, f.model)
	if err != nil {
		return nil, fmt.Errorf("solving model: %w", err)
	}
	res := f.Extract(resp)
	if res.Status != milpsolver.Optimal {
		log.Warningf("no matching: solver status %v", res.Status)
	}
	return res, nil
}

// Solve formulates `in` and solves it with s.
func Solve(ctx context.Context, in *Input, s milpsolver.Solver, opts ...Option) (*Result, error) {
	f, err := Formulate(in, opts...)
	if err != nil {
		return nil, err
	}
	return f.Solve(ctx, s)
}
