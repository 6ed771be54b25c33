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
package hlo

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parser_Simple(t *testing.T) {
	module, err := ParseModule(`
		(module simple
		  (computation entry :entry
		    (p0 parameter (f32 4))
		    (add add (f32 4) p0 p0)
		    (negate negate (f32 4) add)))`)
	//
	require.NoError(t, err)
	assert.Equal(t, "simple", module.Name())
	require.Len(t, module.Computations(), 1)
	//
	entry := module.Entry()
	require.NotNil(t, entry)
	require.Equal(t, uint(3), entry.Size())
	//
	negate := entry.Root()
	assert.Equal(t, "negate", negate.Name())
	assert.Equal(t, OpcodeNegate, negate.Opcode())
	assert.Equal(t, "add", negate.Operand(0).Name())
}

func Test_Parser_Calls(t *testing.T) {
	module, err := ParseModule(`
		(module calls
		  (computation entry :entry
		    (p0 parameter (f32 8))
		    (c call f32 p0 :calls sum)
		    (r reduce f32 p0 :calls sum)
		    (w while (f32 8) p0 :calls cond body)
		    (root tuple (tuple f32 f32 (f32 8)) c r w))
		  (computation sum
		    (x parameter f32)
		    (y parameter f32)
		    (s add f32 x y))
		  (computation cond
		    (p parameter (f32 8))
		    (t constant pred))
		  (computation body
		    (p parameter (f32 8))
		    (n negate (f32 8) p)))`)
	//
	require.NoError(t, err)
	require.Len(t, module.Computations(), 4)
	//
	entry := module.Entry()
	sum, _ := module.ComputationByName("sum")
	cond, _ := module.ComputationByName("cond")
	body, _ := module.ComputationByName("body")
	//
	instructions := entry.Instructions()
	assert.Equal(t, sum, instructions[1].ToApply())
	assert.Equal(t, sum, instructions[2].ToApply())
	assert.Equal(t, cond, instructions[3].WhileCondition())
	assert.Equal(t, body, instructions[3].WhileBody())
}

func Test_Parser_ControlEdges(t *testing.T) {
	module, err := ParseModule(`
		(module ctrl
		  (computation entry :entry
		    (a parameter f32)
		    (b constant f32 :after a)))`)
	//
	require.NoError(t, err)
	//
	instructions := module.Entry().Instructions()
	assert.Equal(t, []*Instruction{instructions[0]}, instructions[1].ControlPredecessors())
}

func Test_Parser_GetTupleElement(t *testing.T) {
	module, err := ParseModule(`
		(module gte
		  (computation entry :entry
		    (a parameter f32)
		    (b parameter s32)
		    (t tuple (tuple f32 s32) a b)
		    (g get-tuple-element s32 t :index 1)))`)
	//
	require.NoError(t, err)
	//
	g := module.Entry().Root()
	assert.Equal(t, uint(1), g.TupleIndex())
	assert.Equal(t, "t", g.Operand(0).Name())
}

func Test_Parser_File(t *testing.T) {
	bytes, err := os.ReadFile("testdata/mlp.hlo")
	require.NoError(t, err)
	//
	module, err := ParseModule(string(bytes))
	require.NoError(t, err)
	//
	relu, ok := module.ComputationByName("relu")
	require.True(t, ok)
	//
	entry := module.Entry()
	require.NotNil(t, entry)
	assert.Equal(t, "out", entry.Root().Name())
	// The activation map invokes relu.
	instructions := entry.Instructions()
	assert.Equal(t, OpcodeMap, instructions[4].Opcode())
	assert.Equal(t, relu, instructions[4].ToApply())
}

func Test_Parser_Errors(t *testing.T) {
	inputs := []string{
		// not a module
		`(computation entry :entry (a parameter f32))`,
		// no entry computation
		`(module m (computation c (a parameter f32)))`,
		// duplicate computation
		`(module m (computation c :entry (a parameter f32)) (computation c (b parameter f32)))`,
		// duplicate instruction
		`(module m (computation c :entry (a parameter f32) (a parameter f32)))`,
		// unknown opcode
		`(module m (computation c :entry (a frobnicate f32)))`,
		// unknown operand
		`(module m (computation c :entry (a negate f32 b)))`,
		// unknown element type
		`(module m (computation c :entry (a parameter q17)))`,
		// while expects two called computations
		`(module m (computation c :entry (a parameter f32) (w while f32 a :calls c)))`,
		// ordinary instruction cannot call
		`(module m (computation c :entry (a parameter f32) (n negate f32 a :calls c)))`,
		// get-tuple-element requires an index
		`(module m (computation c :entry (a parameter (tuple f32)) (g get-tuple-element f32 a)))`,
	}
	//
	for _, input := range inputs {
		if _, err := ParseModule(input); err == nil {
			t.Errorf("parsing %q should have failed", input)
		}
	}
}
