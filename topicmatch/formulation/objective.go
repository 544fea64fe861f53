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

import "github.com/topicmatch/topicmatch/topicmatch/lpmodel"

// buildObjective minimizes the sum of the ranks of admitted applications.
func (f *Formulation) buildObjective() {
	obj := lpmodel.NewLinearExpr()
	for _, am := range f.apps {
		obj.AddTerm(am.Admitted, am.Application.Rank)
	}
	f.builder.Minimize(obj)
}
