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

// Package pointsto determines which buffers each instruction defines and
// which buffers its value may refer to.  Scheduling consults this analysis
// rather than raw operand lists, since a tuple-valued operand stands for
// several buffers and a get-tuple-element stands for a buffer it did not
// define.  The analysis is computed once per module and is read-only
// thereafter.
package pointsto

import (
	"fmt"

	"github.com/consensys/go-hlo/pkg/hlo"
)

// Analysis maps every instruction of a module to the buffers it defines and
// the buffers its value may point to.
type Analysis struct {
	// Module this analysis was computed over.
	module *hlo.Module
	// All buffers, indexed by id.
	buffers []*Buffer
	// Buffers defined by each instruction.
	defs map[*hlo.Instruction][]*Buffer
	// Flattened points-to set of each instruction.
	points map[*hlo.Instruction][]*Buffer
}

// Run computes the points-to analysis for a given module.  Every instruction
// except get-tuple-element defines exactly one buffer; tuple instructions
// additionally alias the buffers of their operands; get-tuple-element defines
// nothing and forwards the buffers of the selected element.
func Run(module *hlo.Module) (*Analysis, error) {
	analysis := &Analysis{
		module: module,
		defs:   make(map[*hlo.Instruction][]*Buffer),
		points: make(map[*hlo.Instruction][]*Buffer),
	}
	//
	for _, computation := range module.Computations() {
		for _, inst := range computation.Instructions() {
			if err := analysis.analyse(inst); err != nil {
				return nil, err
			}
		}
	}
	//
	return analysis, nil
}

// Module returns the module this analysis was computed over.
func (p *Analysis) Module() *hlo.Module { return p.module }

// Buffers returns all buffers of the module, indexed by id.
func (p *Analysis) Buffers() []*Buffer { return p.buffers }

// BuffersDefinedBy returns the buffers defined by a given instruction.  This
// is empty for get-tuple-element instructions.
func (p *Analysis) BuffersDefinedBy(inst *hlo.Instruction) ([]*Buffer, error) {
	defs, ok := p.defs[inst]
	if !ok {
		return nil, fmt.Errorf("instruction %s not covered by points-to analysis", inst.Name())
	}
	//
	return defs, nil
}

// PointsTo returns the flattened set of buffers the value of a given
// instruction may refer to.
func (p *Analysis) PointsTo(inst *hlo.Instruction) ([]*Buffer, error) {
	points, ok := p.points[inst]
	if !ok {
		return nil, fmt.Errorf("instruction %s not covered by points-to analysis", inst.Name())
	}
	//
	return points, nil
}

// LiveOut returns the buffers which are externally visible from a given
// computation, namely those its root value may refer to.
func (p *Analysis) LiveOut(computation *hlo.Computation) ([]*Buffer, error) {
	if computation.Root() == nil {
		return nil, fmt.Errorf("computation %s has no root instruction", computation.Name())
	}
	//
	return p.PointsTo(computation.Root())
}

// Determine the buffers defined by, and pointed to by, a single instruction.
// Operands are always analysed before their users since instructions are
// visited in creation order.
func (p *Analysis) analyse(inst *hlo.Instruction) error {
	switch inst.Opcode() {
	case hlo.OpcodeGetTupleElement:
		operand := inst.Operand(0)
		index := inst.TupleIndex()
		// A literal tuple operand permits an exact projection; anything else
		// (e.g. a tuple-shaped parameter) is approximated by the whole
		// operand.
		if operand.Opcode() == hlo.OpcodeTuple {
			if index >= operand.OperandCount() {
				return fmt.Errorf("instruction %s projects element %d of %d-tuple %s",
					inst.Name(), index, operand.OperandCount(), operand.Name())
			}
			//
			p.defs[inst] = nil
			p.points[inst] = p.points[operand.Operand(index)]
		} else {
			p.defs[inst] = nil
			p.points[inst] = p.points[operand]
		}
	case hlo.OpcodeTuple:
		buffer := p.newBuffer(inst)
		p.defs[inst] = []*Buffer{buffer}
		// The tuple aliases its operands' buffers rather than copying them.
		points := []*Buffer{buffer}
		for _, operand := range inst.Operands() {
			points = appendUnique(points, p.points[operand])
		}
		//
		p.points[inst] = points
	default:
		buffer := p.newBuffer(inst)
		p.defs[inst] = []*Buffer{buffer}
		p.points[inst] = []*Buffer{buffer}
	}
	//
	return nil
}

func (p *Analysis) newBuffer(inst *hlo.Instruction) *Buffer {
	buffer := &Buffer{id: uint(len(p.buffers)), instruction: inst}
	p.buffers = append(p.buffers, buffer)
	//
	return buffer
}

// Append all buffers from rhs not already present in lhs, preserving order.
func appendUnique(lhs []*Buffer, rhs []*Buffer) []*Buffer {
	for _, buffer := range rhs {
		present := false
		//
		for _, existing := range lhs {
			if existing == buffer {
				present = true
				break
			}
		}
		//
		if !present {
			lhs = append(lhs, buffer)
		}
	}
	//
	return lhs
}
