// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package functional_test

import (
	"reflect"
	"testing"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/functional"
)

func TestExists(t *testing.T) {
	if !functional.Exists([]int{1, 2, 3}, func(x int) bool { return x == 2 }) {
		t.Errorf("expected Exists to find 2 in [1 2 3]")
	}
	if functional.Exists([]int{1, 2, 3}, func(x int) bool { return x == 4 }) {
		t.Errorf("expected Exists to not find 4 in [1 2 3]")
	}
	if functional.Exists(nil, func(int) bool { return true }) {
		t.Errorf("expected Exists over an empty slice to be false")
	}
}

func TestSetToOrderedSlice(t *testing.T) {
	set := map[uint32]bool{3: true, 1: true, 2: true, 4: false}
	got := functional.SetToOrderedSlice(set)
	want := []uint32{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOptionalSome(t *testing.T) {
	o := functional.Some(42)
	if !o.IsSome() || o.IsNone() {
		t.Fatalf("expected Some to report IsSome")
	}
	if o.Value() != 42 {
		t.Errorf("expected Value 42, got %d", o.Value())
	}
	if o.ValueOr(0) != 42 {
		t.Errorf("expected ValueOr to return the present value")
	}
}

func TestOptionalNone(t *testing.T) {
	o := functional.None[int]()
	if o.IsSome() || !o.IsNone() {
		t.Fatalf("expected None to report IsNone")
	}
	if o.ValueOr(7) != 7 {
		t.Errorf("expected ValueOr to return the default for None")
	}
}

func TestOptionalNoneValuePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected Value on None to panic")
		}
	}()
	functional.None[int]().Value()
}

func TestMapOption(t *testing.T) {
	doubled := functional.MapOption(functional.Some(21), func(x int) int { return x * 2 })
	if doubled.Value() != 42 {
		t.Errorf("expected MapOption over Some(21) to yield 42, got %d", doubled.Value())
	}
	if functional.MapOption(functional.None[int](), func(x int) int { return x * 2 }).IsSome() {
		t.Errorf("expected MapOption over None to remain None")
	}
}
