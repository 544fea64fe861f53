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

// Package lpmodel offers a small API to build 0-1 integer linear programs.
//
// The `Builder` struct owns a `Model` and provides helper methods for adding
// variables, constraints and the objective to it.
// The `BoolVar` and `Constraint` structs are references to specific elements of
// the model and provide helpful methods for naming them.
// The `LinearExpr` struct provides helper methods for creating constraints and the
// objective from expressions with many variables and coefficients.
//
// All coefficients and bounds are integers, so a built Model can be handed to
// exact pseudo-boolean solvers as well as to LP based ones.
package lpmodel

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/golang/glog"
)

var (
	// ErrMixedModels holds the error when elements added to a model are different.
	ErrMixedModels = errors.New("elements are not part of the same model")
	// ErrDuplicateName holds the error when two variables are given the same name.
	ErrDuplicateName = errors.New("name already exists")
)

type (
	// VarIndex is the index of a variable in the Model, if positive. If this value is
	// negative, it represents the negation of a Boolean variable in the position (-1*VarIndex-1).
	VarIndex int32
	// ConstrIndex is the index of a constraint in the Model.
	ConstrIndex int32
)

func (v VarIndex) positiveIndex() VarIndex {
	if v >= 0 {
		return v
	}
	return -1*v - 1
}

// LinearArgument provides an interface for BoolVar and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c int64)
}

// Term is a single `coeff * var` product of a linear expression.
type Term struct {
	Var   VarIndex
	Coeff int64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    int64
	// owner is the Builder of the first variable added; mixed is set once a
	// variable of another Builder shows up.
	owner *Builder
	mixed bool
}

type varCoeff struct {
	ind   VarIndex
	coeff int64
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c int64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	l.AddTerm(la, 1)
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c int64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff int64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the LinearExpr
// and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []int64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() int64 {
	return l.offset
}

// Terms returns the terms of the expression with repeated variables merged,
// zero coefficients dropped, and sorted by variable index.
func (l *LinearExpr) Terms() []Term {
	merged := make(map[VarIndex]int64, len(l.varCoeffs))
	for _, vc := range l.varCoeffs {
		merged[vc.ind] += vc.coeff
	}
	terms := make([]Term, 0, len(merged))
	for ind, coeff := range merged {
		if coeff != 0 {
			terms = append(terms, Term{Var: ind, Coeff: coeff})
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Var < terms[j].Var })
	return terms
}

func (l *LinearExpr) adopt(b *Builder) {
	switch {
	case b == nil:
	case l.owner == nil:
		l.owner = b
	case l.owner != b:
		l.mixed = true
	}
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c int64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c})
	}
	e.offset += l.offset * c
	e.adopt(l.owner)
	if l.mixed {
		e.mixed = true
	}
}

// BoolVar is a reference to a Boolean variable or the negation of a Boolean variable in the
// model.
type BoolVar struct {
	ind VarIndex
	cpb *Builder
}

// Not returns the logical Not of the Boolean variable
func (b BoolVar) Not() BoolVar {
	return BoolVar{ind: -1*b.ind - 1, cpb: b.cpb}
}

// Name returns the name of the variable.
func (b BoolVar) Name() string {
	return b.cpb.m.Variables[b.ind.positiveIndex()].Name
}

// Index returns the index of the variable. If the variable is a negation of another variable v,
// its index is `-1*v.index-1`.
func (b BoolVar) Index() VarIndex {
	return b.ind
}

// WithName sets the name of the variable. Non-empty names must be unique within
// the model; a clash is reported by Builder.Model.
func (b BoolVar) WithName(s string) BoolVar {
	b.cpb.setVarName(b.ind.positiveIndex(), s)
	return b
}

func (b BoolVar) addToLinearExpr(e *LinearExpr, c int64) {
	if b.ind < 0 {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind.positiveIndex(), coeff: -c})
		e.offset += c
	} else {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind, coeff: c})
	}
	e.adopt(b.cpb)
}

// Constraint is a reference to a constraint in the model.
type Constraint struct {
	ind ConstrIndex
	cpb *Builder
}

// WithName sets the label of the constraint. Labels are diagnostic only and need
// not be unique.
func (c Constraint) WithName(s string) Constraint {
	c.cpb.m.Constraints[c.ind].Name = s
	return c
}

// Name returns the label of the constraint.
func (c Constraint) Name() string {
	return c.cpb.m.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// Bounds returns the interval the constraint's terms must lie in.
func (c Constraint) Bounds() ClosedInterval {
	return c.cpb.m.Constraints[c.ind].Bounds
}

// Variable is a 0-1 variable of the Model.
type Variable struct {
	Name  string
	Lower int64
	Upper int64
}

// LinearConstraint enforces `Bounds.Start <= Σ Terms <= Bounds.End`.
type LinearConstraint struct {
	Name   string
	Terms  []Term
	Bounds ClosedInterval
}

// Objective is always stored as a minimization. A maximization objective is
// stored negated with ScalingFactor -1, so the user facing value is
// ScalingFactor * (Σ Terms + Offset).
type Objective struct {
	Terms         []Term
	Offset        int64
	ScalingFactor int64
}

// Model is a built 0-1 linear program.
type Model struct {
	Name        string
	Variables   []Variable
	Constraints []LinearConstraint
	Objective   Objective
}

// Builder provides a wrapper for building a Model.
type Builder struct {
	m     *Model
	names map[string]VarIndex
	// The first and only the first error is reported in Model.
	err error
}

// NewBuilder creates and returns a new model Builder.
func NewBuilder(name string) *Builder {
	return &Builder{
		m:     &Model{Name: name, Objective: Objective{ScalingFactor: 1}},
		names: make(map[string]VarIndex),
	}
}

// checkSameModelAndSetErrorf returns true if `cp` and `cp2` point to the same Builder.
// If false, an error with the error message `format` is set on `cp` if `cp.err`
// is nil.
func (cp *Builder) checkSameModelAndSetErrorf(cp2 *Builder, format string, a ...any) bool {
	if cp2 == nil || cp == cp2 {
		return true
	}
	cp.setErrorf(ErrMixedModels, format, a...)
	return false
}

func (cp *Builder) setErrorf(sentinel error, format string, a ...any) {
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = sentinel
	err := fmt.Errorf(format+": %w", args...)
	log.Errorf("%v", err)
	if cp.err == nil {
		cp.err = err
	}
}

func (cp *Builder) setVarName(ind VarIndex, s string) {
	old := cp.m.Variables[ind].Name
	if old == s {
		return
	}
	if s != "" {
		if other, ok := cp.names[s]; ok && other != ind {
			cp.setErrorf(ErrDuplicateName, "variable %d named %q", ind, s)
			return
		}
		cp.names[s] = ind
	}
	if old != "" {
		delete(cp.names, old)
	}
	cp.m.Variables[ind].Name = s
}

// NewBoolVar creates a new BoolVar in the model.
func (cp *Builder) NewBoolVar() BoolVar {
	boolVar := BoolVar{cpb: cp, ind: VarIndex(len(cp.m.Variables))}
	cp.m.Variables = append(cp.m.Variables, Variable{Lower: 0, Upper: 1})

	return boolVar
}

// NumVariables returns the number of variables created so far.
func (cp *Builder) NumVariables() int {
	return len(cp.m.Variables)
}

// NumConstraints returns the number of constraints added so far.
func (cp *Builder) NumConstraints() int {
	return len(cp.m.Constraints)
}

// addLinearConstraint adds a linear constraint that enforces the value of `le` to be in
// `interval`. The constant offset of `le` is subtracted from the interval.
func (cp *Builder) addLinearConstraint(le *LinearExpr, interval ClosedInterval) Constraint {
	if le.mixed {
		cp.setErrorf(ErrMixedModels, "linear expression added to constraint %v", len(cp.m.Constraints))
	} else {
		cp.checkSameModelAndSetErrorf(le.owner, "linear expression added to constraint %v", len(cp.m.Constraints))
	}

	ind := ConstrIndex(len(cp.m.Constraints))
	cp.m.Constraints = append(cp.m.Constraints, LinearConstraint{
		Terms:  le.Terms(),
		Bounds: interval.Offset(-le.offset),
	})

	return Constraint{cpb: cp, ind: ind}
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`. Use NegInf or
// PosInf for an open side.
func (cp *Builder) AddLinearConstraint(expr LinearArgument, lb, ub int64) Constraint {
	linExpr := NewLinearExpr().Add(expr)
	return cp.addLinearConstraint(linExpr, ClosedInterval{lb, ub})
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (cp *Builder) AddEquality(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return cp.addLinearConstraint(diff, ClosedInterval{0, 0})
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (cp *Builder) AddLessOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return cp.addLinearConstraint(diff, ClosedInterval{NegInf, 0})
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (cp *Builder) AddGreaterOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return cp.addLinearConstraint(diff, ClosedInterval{0, PosInf})
}

// AddAtMostOne adds the constraint that at most one of the literals must be true.
func (cp *Builder) AddAtMostOne(bvs ...BoolVar) Constraint {
	sum := NewLinearExpr()
	for _, bv := range bvs {
		sum.Add(bv)
	}
	return cp.addLinearConstraint(sum, ClosedInterval{NegInf, 1})
}

// AddImplication adds the constraint a => b.
func (cp *Builder) AddImplication(a, b BoolVar) Constraint {
	return cp.AddLessOrEqual(a, b)
}

// Minimize adds a linear minimization objective.
func (cp *Builder) Minimize(obj LinearArgument) {
	o := NewLinearExpr().Add(obj)
	cp.checkSameModelAndSetErrorf(o.owner, "objective")

	cp.m.Objective = Objective{Terms: o.Terms(), Offset: o.offset, ScalingFactor: 1}
}

// Maximize adds a linear maximization objective.
func (cp *Builder) Maximize(obj LinearArgument) {
	o := NewLinearExpr().AddTerm(obj, -1)
	cp.checkSameModelAndSetErrorf(o.owner, "objective")

	cp.m.Objective = Objective{Terms: o.Terms(), Offset: o.offset, ScalingFactor: -1}
}

// Model returns the built Model. The Model returned is a pointer to the Model in
// Builder, and if modified, future calls to the Builder API can result in an
// inconsistent model.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders).
func (cp *Builder) Model() (*Model, error) {
	if cp.err != nil {
		return nil, cp.err
	}
	return cp.m, nil
}

// Evaluate returns the value of `la` under the variable assignment `values`,
// indexed by VarIndex. Missing values count as 0.
func Evaluate(la LinearArgument, values []float64) float64 {
	e := NewLinearExpr().Add(la)
	result := float64(e.offset)
	for _, vc := range e.varCoeffs {
		if int(vc.ind) < len(values) {
			result += float64(vc.coeff) * values[vc.ind]
		}
	}
	return result
}

// ObjectiveValue returns the user facing objective value of m under `values`.
func (m *Model) ObjectiveValue(values []float64) float64 {
	sum := float64(m.Objective.Offset)
	for _, t := range m.Objective.Terms {
		if int(t.Var) < len(values) {
			sum += float64(t.Coeff) * values[t.Var]
		}
	}
	if m.Objective.ScalingFactor == 0 {
		return sum
	}
	return float64(m.Objective.ScalingFactor) * sum
}
