// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package bit

import (
	"math/rand"
	"testing"
)

func Test_BitSet_01(t *testing.T) {
	var set Set
	//
	set.Insert(0)
	set.Insert(63)
	set.Insert(64)
	set.Insert(1000)
	//
	for _, v := range []uint{0, 63, 64, 1000} {
		if !set.Contains(v) {
			t.Errorf("set should contain %d", v)
		}
	}
	//
	for _, v := range []uint{1, 62, 65, 999, 1001} {
		if set.Contains(v) {
			t.Errorf("set should not contain %d", v)
		}
	}
	//
	if set.Count() != 4 {
		t.Errorf("expected count 4, got %d", set.Count())
	}
}

func Test_BitSet_02(t *testing.T) {
	var lhs, rhs Set
	//
	lhs.Insert(1)
	rhs.Insert(1)
	rhs.Insert(128)
	// First union changes lhs
	if !lhs.Union(rhs) {
		t.Errorf("union should have changed lhs")
	}
	// Second union is idempotent
	if lhs.Union(rhs) {
		t.Errorf("union should not have changed lhs")
	}
	//
	if !lhs.Contains(128) || lhs.Count() != 2 {
		t.Errorf("unexpected union result")
	}
}

func Test_BitSet_03(t *testing.T) {
	var set Set
	//
	original := set.Clone()
	set.Insert(42)
	// Clone must not alias
	if original.Contains(42) {
		t.Errorf("clone aliases original")
	}
}

func Test_BitSet_04(t *testing.T) {
	// Really hammer it against a reference implementation.
	for i := 0; i < 1000; i++ {
		var (
			set      Set
			expected = make(map[uint]bool)
		)
		//
		for j := 0; j < 100; j++ {
			v := uint(rand.Intn(512))
			set.Insert(v)
			expected[v] = true
		}
		//
		if set.Count() != uint(len(expected)) {
			t.Fatalf("expected count %d, got %d", len(expected), set.Count())
		}
		//
		for v := uint(0); v < 512; v++ {
			if set.Contains(v) != expected[v] {
				t.Fatalf("mismatch at %d", v)
			}
		}
	}
}
