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
package ordering

import (
	"testing"

	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DependencyOrdering(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p0 := computation.AddParameter("p0", hlo.NewShape(hlo.F32, 4))
	add := computation.AddInstruction("add", hlo.OpcodeAdd, hlo.NewShape(hlo.F32, 4), p0, p0)
	negate := computation.AddInstruction("negate", hlo.OpcodeNegate, hlo.NewShape(hlo.F32, 4), add)
	unrelated := computation.AddConstant("unrelated", hlo.NewShape(hlo.F32))
	//
	ordering := NewDependencyOrdering(module)
	// Direct and transitive dependencies order.
	assert.True(t, ordering.ExecutesBefore(p0, add))
	assert.True(t, ordering.ExecutesBefore(add, negate))
	assert.True(t, ordering.ExecutesBefore(p0, negate))
	// Irreflexive and antisymmetric.
	assert.False(t, ordering.ExecutesBefore(add, add))
	assert.False(t, ordering.ExecutesBefore(negate, p0))
	// Independent instructions are unordered either way.
	assert.False(t, ordering.ExecutesBefore(unrelated, negate))
	assert.False(t, ordering.ExecutesBefore(negate, unrelated))
}

func Test_DependencyOrdering_ControlEdges(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	a := computation.AddConstant("a", hlo.NewShape(hlo.F32))
	b := computation.AddConstant("b", hlo.NewShape(hlo.F32))
	require.NoError(t, a.AddControlDependencyTo(b))
	//
	ordering := NewDependencyOrdering(module)
	// Control edges order just like data edges.
	assert.True(t, ordering.ExecutesBefore(a, b))
	assert.False(t, ordering.ExecutesBefore(b, a))
}

func Test_DependencyOrdering_CrossComputation(t *testing.T) {
	module := hlo.NewModule("test")
	entry := module.NewEntryComputation("entry")
	other := module.NewComputation("other")
	//
	a := entry.AddParameter("a", hlo.NewShape(hlo.F32))
	b := other.AddParameter("b", hlo.NewShape(hlo.F32))
	//
	ordering := NewDependencyOrdering(module)
	assert.False(t, ordering.ExecutesBefore(a, b))
	assert.False(t, ordering.ExecutesBefore(b, a))
}

func Test_SequentialOrdering(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p0 := computation.AddParameter("p0", hlo.NewShape(hlo.F32))
	c := computation.AddConstant("c", hlo.NewShape(hlo.F32))
	add := computation.AddInstruction("add", hlo.OpcodeAdd, hlo.NewShape(hlo.F32), p0, c)
	//
	schedule := hlo.NewSchedule(module)
	schedule.SetSequence(computation, []*hlo.Instruction{c, p0, add})
	require.NoError(t, schedule.Validate())
	//
	ordering := NewSequentialOrdering(schedule)
	// The schedule is a total order; even independent instructions are
	// ordered by their positions.
	assert.True(t, ordering.ExecutesBefore(c, p0))
	assert.False(t, ordering.ExecutesBefore(p0, c))
	assert.True(t, ordering.ExecutesBefore(p0, add))
	assert.False(t, ordering.ExecutesBefore(add, add))
	//
	assert.Equal(t, []*hlo.Instruction{c, p0, add}, ordering.SequentialOrder(computation))
}

func Test_SequentialOrdering_MissingInstruction(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p0 := computation.AddParameter("p0", hlo.NewShape(hlo.F32))
	//
	schedule := hlo.NewSchedule(module)
	schedule.SetSequence(computation, []*hlo.Instruction{p0})
	ordering := NewSequentialOrdering(schedule)
	// An instruction added after the schedule was computed is unordered with
	// respect to everything.
	late := computation.AddInstruction("late", hlo.OpcodeNegate, hlo.NewShape(hlo.F32), p0)
	//
	assert.False(t, ordering.ExecutesBefore(p0, late))
	assert.False(t, ordering.ExecutesBefore(late, p0))
}
