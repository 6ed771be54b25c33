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
package pointsto

import (
	"testing"

	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PointsTo_Elementwise(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p0 := computation.AddParameter("p0", hlo.NewShape(hlo.F32, 4))
	negate := computation.AddInstruction("negate", hlo.OpcodeNegate, hlo.NewShape(hlo.F32, 4), p0)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	// One buffer each, distinct.
	defsP0, err := analysis.BuffersDefinedBy(p0)
	require.NoError(t, err)
	defsNegate, err := analysis.BuffersDefinedBy(negate)
	require.NoError(t, err)
	//
	require.Len(t, defsP0, 1)
	require.Len(t, defsNegate, 1)
	assert.NotEqual(t, defsP0[0], defsNegate[0])
	// Each points only at its own buffer.
	points, err := analysis.PointsTo(negate)
	require.NoError(t, err)
	assert.Equal(t, defsNegate, points)
}

func Test_PointsTo_Tuple(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	a := computation.AddParameter("a", hlo.NewShape(hlo.F32))
	b := computation.AddParameter("b", hlo.NewShape(hlo.S32))
	tuple := computation.AddInstruction("t", hlo.OpcodeTuple,
		hlo.NewTupleShape(hlo.NewShape(hlo.F32), hlo.NewShape(hlo.S32)), a, b)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	// The tuple defines its own index-table buffer...
	defs, err := analysis.BuffersDefinedBy(tuple)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	// ...and points at that buffer plus those of its operands.
	points, err := analysis.PointsTo(tuple)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, defs[0], points[0])
	assert.Equal(t, a, points[1].Instruction())
	assert.Equal(t, b, points[2].Instruction())
}

func Test_PointsTo_TupleDedup(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	a := computation.AddParameter("a", hlo.NewShape(hlo.F32))
	tuple := computation.AddInstruction("t", hlo.OpcodeTuple,
		hlo.NewTupleShape(hlo.NewShape(hlo.F32), hlo.NewShape(hlo.F32)), a, a)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	// Repeated operands contribute their buffer once.
	points, err := analysis.PointsTo(tuple)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func Test_PointsTo_GetTupleElement(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	a := computation.AddParameter("a", hlo.NewShape(hlo.F32))
	b := computation.AddParameter("b", hlo.NewShape(hlo.S32))
	tuple := computation.AddInstruction("t", hlo.OpcodeTuple,
		hlo.NewTupleShape(hlo.NewShape(hlo.F32), hlo.NewShape(hlo.S32)), a, b)
	gte := computation.AddGetTupleElement("g", hlo.NewShape(hlo.S32), tuple, 1)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	// A projection defines nothing and forwards the selected element.
	defs, err := analysis.BuffersDefinedBy(gte)
	require.NoError(t, err)
	assert.Empty(t, defs)
	//
	points, err := analysis.PointsTo(gte)
	require.NoError(t, err)
	expected, err := analysis.PointsTo(b)
	require.NoError(t, err)
	assert.Equal(t, expected, points)
}

func Test_PointsTo_GetTupleElement_Parameter(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p := computation.AddParameter("p",
		hlo.NewTupleShape(hlo.NewShape(hlo.F32), hlo.NewShape(hlo.S32)))
	gte := computation.AddGetTupleElement("g", hlo.NewShape(hlo.F32), p, 0)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	// Tuple-shaped parameters have no element buffers, so the projection is
	// approximated by the parameter itself.
	points, err := analysis.PointsTo(gte)
	require.NoError(t, err)
	expected, err := analysis.PointsTo(p)
	require.NoError(t, err)
	assert.Equal(t, expected, points)
}

func Test_PointsTo_LiveOut(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	a := computation.AddParameter("a", hlo.NewShape(hlo.F32))
	negate := computation.AddInstruction("negate", hlo.OpcodeNegate, hlo.NewShape(hlo.F32), a)
	computation.AddInstruction("t", hlo.OpcodeTuple,
		hlo.NewTupleShape(hlo.NewShape(hlo.F32), hlo.NewShape(hlo.F32)), a, negate)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	// Everything the root tuple aliases is live out of the computation.
	liveOut, err := analysis.LiveOut(computation)
	require.NoError(t, err)
	assert.Len(t, liveOut, 3)
}

func Test_PointsTo_Ignorable(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p := computation.AddParameter("p", hlo.NewShape(hlo.F32))
	c := computation.AddConstant("c", hlo.NewShape(hlo.F32))
	add := computation.AddInstruction("add", hlo.OpcodeAdd, hlo.NewShape(hlo.F32), p, c)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	//
	for _, buffer := range analysis.Buffers() {
		switch buffer.Instruction() {
		case p, c:
			assert.True(t, buffer.Ignorable())
		case add:
			assert.False(t, buffer.Ignorable())
		}
	}
}

func Test_PointsTo_DefaultSize(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	a := computation.AddParameter("a", hlo.NewShape(hlo.F32, 4))
	b := computation.AddParameter("b", hlo.NewShape(hlo.S64))
	tuple := computation.AddInstruction("t", hlo.OpcodeTuple,
		hlo.NewTupleShape(hlo.NewShape(hlo.F32, 4), hlo.NewShape(hlo.S64)), a, b)
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	//
	for _, buffer := range analysis.Buffers() {
		switch buffer.Instruction() {
		case a:
			assert.Equal(t, int64(16), DefaultSize(buffer))
		case b:
			assert.Equal(t, int64(8), DefaultSize(buffer))
		case tuple:
			// Index table only: eight bytes per element.
			assert.Equal(t, int64(16), DefaultSize(buffer))
		}
	}
}

func Test_PointsTo_UnknownInstruction(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	computation.AddParameter("a", hlo.NewShape(hlo.F32))
	//
	other := hlo.NewModule("other")
	foreign := other.NewEntryComputation("entry").AddParameter("b", hlo.NewShape(hlo.F32))
	//
	analysis, err := Run(module)
	require.NoError(t, err)
	//
	_, err = analysis.PointsTo(foreign)
	assert.Error(t, err)
	_, err = analysis.BuffersDefinedBy(foreign)
	assert.Error(t, err)
}
