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

package milpsolver

import (
	"errors"
	"fmt"

	"github.com/topicmatch/topicmatch/topicmatch/lpmodel"
)

// geRow is the constraint `Σ terms >= rhs`.
type geRow struct {
	terms []lpmodel.Term
	rhs   int64
}

func negateTerms(terms []lpmodel.Term) []lpmodel.Term {
	neg := make([]lpmodel.Term, len(terms))
	for i, t := range terms {
		neg[i] = lpmodel.Term{Var: t.Var, Coeff: -t.Coeff}
	}
	return neg
}

// greaterOrEqualRows rewrites the constraints of m as `>=` rows. A ranged
// constraint gives two rows and a free one none. It returns false if a
// constraint without terms or with an empty interval can never hold.
func greaterOrEqualRows(m *lpmodel.Model) ([]geRow, bool) {
	var rows []geRow
	for _, ct := range m.Constraints {
		b := ct.Bounds
		if b.IsEmpty() {
			return nil, false
		}
		if len(ct.Terms) == 0 {
			if !b.Contains(0) {
				return nil, false
			}
			continue
		}
		if b.HasLower() {
			rows = append(rows, geRow{terms: ct.Terms, rhs: b.Start})
		}
		if b.HasUpper() {
			rows = append(rows, geRow{terms: negateTerms(ct.Terms), rhs: -b.End})
		}
	}
	return rows, true
}

func checkModel(m *lpmodel.Model) error {
	if m == nil {
		return errors.New("cannot solve a nil model")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("cannot solve an invalid model: %w", err)
	}
	return nil
}
