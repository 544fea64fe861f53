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

package lpmodel

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ExportOptions groups all options for exporting models to text formats.
type ExportOptions struct {
	// Obfuscate replaces variable and constraint names by x<index> and c<index>.
	Obfuscate bool
}

// Validate returns an error if a constraint or the objective references a
// variable that is not part of m.
func (m *Model) Validate() error {
	n := VarIndex(len(m.Variables))
	for i, ct := range m.Constraints {
		for _, t := range ct.Terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("constraint %d references unknown variable %d", i, t.Var)
			}
		}
	}
	for _, t := range m.Objective.Terms {
		if t.Var < 0 || t.Var >= n {
			return fmt.Errorf("objective references unknown variable %d", t.Var)
		}
	}
	return nil
}

// lpNamer hands out LP format identifiers, keeping them unique.
type lpNamer struct {
	prefix    string
	obfuscate bool
	seen      map[string]bool
}

func (n *lpNamer) name(i int, s string) string {
	fallback := fmt.Sprintf("%s%d", n.prefix, i)
	if n.obfuscate || s == "" {
		n.seen[fallback] = true
		return fallback
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	id := sb.String()
	// Names may not start with a digit or a period.
	if c := id[0]; (c >= '0' && c <= '9') || c == '.' {
		id = n.prefix + "_" + id
	}
	if n.seen[id] {
		id = fmt.Sprintf("%s_%d", id, i)
	}
	n.seen[id] = true
	return id
}

func writeTerms(sb *strings.Builder, terms []Term, names []string) {
	for i, t := range terms {
		coeff := t.Coeff
		switch {
		case i == 0 && coeff < 0:
			sb.WriteString("- ")
			coeff = -coeff
		case i == 0:
		case coeff < 0:
			sb.WriteString(" - ")
			coeff = -coeff
		default:
			sb.WriteString(" + ")
		}
		if coeff != 1 {
			fmt.Fprintf(sb, "%d ", coeff)
		}
		sb.WriteString(names[t.Var])
	}
}

// ExportModelAsLpFormat outputs the model as a string in CPLEX LP format.
// Ranged constraints are written as two rows suffixed _lb and _ub. Constraints
// without terms are written as comments.
func ExportModelAsLpFormat(m *Model, options ExportOptions) (string, error) {
	if m == nil {
		return "", errors.New("cannot export a nil model as LP format")
	}
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("cannot export an invalid model as LP format: %w", err)
	}

	varNamer := &lpNamer{prefix: "x", obfuscate: options.Obfuscate, seen: make(map[string]bool)}
	varNames := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		varNames[i] = varNamer.name(i, v.Name)
	}
	ctNamer := &lpNamer{prefix: "c", obfuscate: options.Obfuscate, seen: make(map[string]bool)}

	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "\\ Model: %s\n", m.Name)
	}
	if m.Objective.ScalingFactor < 0 {
		sb.WriteString("Maximize\n obj: ")
		negated := make([]Term, len(m.Objective.Terms))
		for i, t := range m.Objective.Terms {
			negated[i] = Term{Var: t.Var, Coeff: -t.Coeff}
		}
		writeTerms(&sb, negated, varNames)
	} else {
		sb.WriteString("Minimize\n obj: ")
		writeTerms(&sb, m.Objective.Terms, varNames)
	}
	sb.WriteString("\nSubject To\n")
	for i, ct := range m.Constraints {
		name := ctNamer.name(i, ct.Name)
		b := ct.Bounds
		if len(ct.Terms) == 0 {
			fmt.Fprintf(&sb, "\\ %s: 0 in %v\n", name, b)
			continue
		}
		row := func(suffix, op string, rhs int64) {
			fmt.Fprintf(&sb, " %s%s: ", name, suffix)
			writeTerms(&sb, ct.Terms, varNames)
			fmt.Fprintf(&sb, " %s %d\n", op, rhs)
		}
		switch {
		case b.HasLower() && b.HasUpper() && b.Start == b.End:
			row("", "=", b.Start)
		case b.HasLower() && b.HasUpper():
			row("_lb", ">=", b.Start)
			row("_ub", "<=", b.End)
		case b.HasLower():
			row("", ">=", b.Start)
		case b.HasUpper():
			row("", "<=", b.End)
		default:
			fmt.Fprintf(&sb, "\\ %s: free row\n", name)
		}
	}
	if len(varNames) > 0 {
		sb.WriteString("Binaries\n")
		for _, n := range varNames {
			fmt.Fprintf(&sb, " %s\n", n)
		}
	}
	sb.WriteString("End\n")
	return sb.String(), nil
}

func termsAsList(terms []Term) []any {
	list := make([]any, 0, len(terms))
	for _, t := range terms {
		list = append(list, map[string]any{"var": int64(t.Var), "coeff": t.Coeff})
	}
	return list
}

func boundAsValue(v int64, bounded bool) any {
	if !bounded {
		return nil
	}
	return v
}

// ExportModelAsStruct returns the model as a protobuf Struct.
func ExportModelAsStruct(m *Model) (*structpb.Struct, error) {
	if m == nil {
		return nil, errors.New("cannot export a nil model")
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("cannot export an invalid model: %w", err)
	}
	vars := make([]any, 0, len(m.Variables))
	for _, v := range m.Variables {
		vars = append(vars, map[string]any{"name": v.Name, "lower": v.Lower, "upper": v.Upper})
	}
	cts := make([]any, 0, len(m.Constraints))
	for _, ct := range m.Constraints {
		cts = append(cts, map[string]any{
			"name":  ct.Name,
			"terms": termsAsList(ct.Terms),
			"lower": boundAsValue(ct.Bounds.Start, ct.Bounds.HasLower()),
			"upper": boundAsValue(ct.Bounds.End, ct.Bounds.HasUpper()),
		})
	}
	return structpb.NewStruct(map[string]any{
		"name":        m.Name,
		"variables":   vars,
		"constraints": cts,
		"objective": map[string]any{
			"terms":         termsAsList(m.Objective.Terms),
			"offset":        m.Objective.Offset,
			"scalingFactor": m.Objective.ScalingFactor,
		},
	})
}

// ExportModelAsJSON outputs the model as indented JSON.
func ExportModelAsJSON(m *Model) ([]byte, error) {
	s, err := ExportModelAsStruct(m)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}
