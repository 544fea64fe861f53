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
	"math"
	"testing"
)

func TestClosedInterval_Offset(t *testing.T) {
	testCases := []struct {
		interval ClosedInterval
		delta    int64
		want     ClosedInterval
	}{
		{
			interval: ClosedInterval{1, 2},
			delta:    -2,
			want:     ClosedInterval{-1, 0},
		},
		{
			interval: ClosedInterval{NegInf, 2},
			delta:    -2,
			want:     ClosedInterval{NegInf, 0},
		},
		{
			interval: ClosedInterval{1, PosInf},
			delta:    2,
			want:     ClosedInterval{3, PosInf},
		},
		{
			interval: ClosedInterval{-1, 5},
			delta:    math.MaxInt64,
			want:     ClosedInterval{math.MaxInt64 - 1, math.MaxInt64},
		},
		{
			interval: ClosedInterval{-1, 5},
			delta:    math.MinInt64,
			want:     ClosedInterval{math.MinInt64, math.MinInt64 + 5},
		},
	}

	for _, test := range testCases {
		if got := test.interval.Offset(test.delta); got != test.want {
			t.Errorf("%#v.Offset(%v) return %#v, want %#v", test.interval, test.delta, got, test.want)
		}
	}
}

func TestClosedInterval_Predicates(t *testing.T) {
	testCases := []struct {
		interval  ClosedInterval
		value     int64
		contains  bool
		empty     bool
		hasLower  bool
		hasUpper  bool
		formatted string
	}{
		{ClosedInterval{0, 1}, 1, true, false, true, true, "[0,1]"},
		{ClosedInterval{NegInf, 1}, -100, true, false, false, true, "[-inf,1]"},
		{ClosedInterval{2, PosInf}, 1, false, false, true, false, "[2,+inf]"},
		{ClosedInterval{3, 2}, 2, false, true, true, true, "[3,2]"},
	}

	for _, test := range testCases {
		if got := test.interval.Contains(test.value); got != test.contains {
			t.Errorf("%v.Contains(%v) = %v, want %v", test.interval, test.value, got, test.contains)
		}
		if got := test.interval.IsEmpty(); got != test.empty {
			t.Errorf("%v.IsEmpty() = %v, want %v", test.interval, got, test.empty)
		}
		if got := test.interval.HasLower(); got != test.hasLower {
			t.Errorf("%v.HasLower() = %v, want %v", test.interval, got, test.hasLower)
		}
		if got := test.interval.HasUpper(); got != test.hasUpper {
			t.Errorf("%v.HasUpper() = %v, want %v", test.interval, got, test.hasUpper)
		}
		if got := test.interval.String(); got != test.formatted {
			t.Errorf("String() = %q, want %q", got, test.formatted)
		}
	}
}
