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
package scheduling

import (
	"testing"

	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/consensys/go-hlo/pkg/pointsto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DFSScheduler_Chain(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p0 := computation.AddParameter("p0", hlo.NewShape(hlo.F32, 4))
	add := computation.AddInstruction("add", hlo.OpcodeAdd, hlo.NewShape(hlo.F32, 4), p0, p0)
	negate := computation.AddInstruction("negate", hlo.OpcodeNegate, hlo.NewShape(hlo.F32, 4), add)
	//
	analysis, err := pointsto.Run(module)
	require.NoError(t, err)
	//
	sequence, err := DFSSchedule(computation, analysis, pointsto.DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, []*hlo.Instruction{p0, add, negate}, sequence)
}

func Test_DFSScheduler_SizeWeighted(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	p0 := computation.AddParameter("p0", hlo.NewShape(hlo.F32, 8))
	x := computation.AddInstruction("x", hlo.OpcodeNegate, hlo.NewShape(hlo.F32, 8), p0)
	p1 := computation.AddParameter("p1", hlo.NewShape(hlo.F32, 4))
	y := computation.AddInstruction("y", hlo.OpcodeNegate, hlo.NewShape(hlo.F32, 4), p1)
	add := computation.AddInstruction("add", hlo.OpcodeAdd, hlo.NewShape(hlo.F32, 4), x, y)
	//
	analysis, err := pointsto.Run(module)
	require.NoError(t, err)
	// Both operand subtrees have identical fan-out, so the heavier (x, 64
	// cumulative bytes against y's 32) goes first.
	sequence, err := DFSSchedule(computation, analysis, pointsto.DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, []*hlo.Instruction{p0, x, p1, y, add}, sequence)
}

func Test_DFSScheduler_FanOutWeighted(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	// A small shared subtree (b has two users) against a large private one.
	b := computation.AddParameter("b", hlo.NewShape(hlo.F32))
	y := computation.AddInstruction("y", hlo.OpcodeNegate, hlo.NewShape(hlo.F32), b)
	w := computation.AddInstruction("w", hlo.OpcodeExp, hlo.NewShape(hlo.F32), b)
	a := computation.AddParameter("a", hlo.NewShape(hlo.F32, 8))
	x := computation.AddInstruction("x", hlo.OpcodeNegate, hlo.NewShape(hlo.F32, 8), a)
	root := computation.AddInstruction("root", hlo.OpcodeTuple,
		hlo.NewTupleShape(hlo.NewShape(hlo.F32, 8), hlo.NewShape(hlo.F32), hlo.NewShape(hlo.F32)),
		x, y, w)
	//
	analysis, err := pointsto.Run(module)
	require.NoError(t, err)
	// Fan-out dominates size: y and w (cumulative fan-out 1 via b) precede x
	// (fan-out 0, 64 cumulative bytes), and w precedes y by name when their
	// weights tie exactly.
	sequence, err := DFSSchedule(computation, analysis, pointsto.DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, []*hlo.Instruction{b, w, y, a, x, root}, sequence)
}

func Test_DFSScheduler_NameTieBreak(t *testing.T) {
	module := hlo.NewModule("test")
	computation := module.NewEntryComputation("entry")
	//
	// Created in reverse name order, so creation order alone cannot explain
	// the result.
	n := computation.AddParameter("n", hlo.NewShape(hlo.F32))
	m := computation.AddParameter("m", hlo.NewShape(hlo.F32))
	add := computation.AddInstruction("add", hlo.OpcodeAdd, hlo.NewShape(hlo.F32), n, m)
	//
	analysis, err := pointsto.Run(module)
	require.NoError(t, err)
	//
	sequence, err := DFSSchedule(computation, analysis, pointsto.DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, []*hlo.Instruction{m, n, add}, sequence)
}
