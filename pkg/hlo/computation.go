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
	"sort"
)

// Computation is an ordered collection of instructions forming a directed
// graph, with exactly one distinguished root instruction defining the value
// the computation produces.  Unless overridden via SetRoot, the most recently
// added instruction is the root.
type Computation struct {
	// Unique (within the module) name of this computation.
	name string
	// Module which owns this computation.
	parent *Module
	// Instructions in creation order.  An instruction's id is its index in
	// this array.
	instructions []*Instruction
	// Instruction defining the output value of this computation.
	root *Instruction
}

// Name returns the name of this computation.
func (p *Computation) Name() string { return p.name }

// Parent returns the module which owns this computation.
func (p *Computation) Parent() *Module { return p.parent }

// Root returns the instruction defining the output value of this computation.
func (p *Computation) Root() *Instruction { return p.root }

// SetRoot overrides which instruction defines the output value of this
// computation.
func (p *Computation) SetRoot(root *Instruction) {
	if root.parent != p {
		panic("root instruction owned by another computation")
	}
	//
	p.root = root
}

// Instructions returns the instructions of this computation in creation
// order.
func (p *Computation) Instructions() []*Instruction { return p.instructions }

// Size returns the number of instructions in this computation.
func (p *Computation) Size() uint { return uint(len(p.instructions)) }

// AddInstruction appends a new instruction which invokes no sub-computations.
func (p *Computation) AddInstruction(name string, opcode Opcode, shape Shape,
	operands ...*Instruction) *Instruction {
	return p.add(name, opcode, shape, nil, operands)
}

// AddParameter appends a new parameter instruction.
func (p *Computation) AddParameter(name string, shape Shape) *Instruction {
	return p.add(name, OpcodeParameter, shape, nil, nil)
}

// AddConstant appends a new constant instruction.
func (p *Computation) AddConstant(name string, shape Shape) *Instruction {
	return p.add(name, OpcodeConstant, shape, nil, nil)
}

// AddCall appends an instruction which invokes toApply once on the given
// operands.
func (p *Computation) AddCall(name string, shape Shape, toApply *Computation,
	operands ...*Instruction) *Instruction {
	return p.add(name, OpcodeCall, shape, []*Computation{toApply}, operands)
}

// AddMap appends an instruction which applies toApply elementwise across the
// given operands.
func (p *Computation) AddMap(name string, shape Shape, toApply *Computation,
	operands ...*Instruction) *Instruction {
	return p.add(name, OpcodeMap, shape, []*Computation{toApply}, operands)
}

// AddReduce appends an instruction which folds toApply across the given
// operands.
func (p *Computation) AddReduce(name string, shape Shape, toApply *Computation,
	operands ...*Instruction) *Instruction {
	return p.add(name, OpcodeReduce, shape, []*Computation{toApply}, operands)
}

// AddReduceWindow appends an instruction which folds toApply across moving
// windows of its operand.
func (p *Computation) AddReduceWindow(name string, shape Shape, toApply *Computation,
	operands ...*Instruction) *Instruction {
	return p.add(name, OpcodeReduceWindow, shape, []*Computation{toApply}, operands)
}

// AddWhile appends an instruction which repeatedly applies body whilst
// condition holds, starting from the given initial value.
func (p *Computation) AddWhile(name string, shape Shape, condition *Computation,
	body *Computation, init *Instruction) *Instruction {
	return p.add(name, OpcodeWhile, shape, []*Computation{condition, body}, []*Instruction{init})
}

// AddSelectAndScatter appends an instruction which selects elements via one
// computation and scatters source values via another.
func (p *Computation) AddSelectAndScatter(name string, shape Shape, selector *Computation,
	scatter *Computation, operands ...*Instruction) *Instruction {
	return p.add(name, OpcodeSelectAndScatter, shape, []*Computation{selector, scatter}, operands)
}

// AddFusion appends a fusion instruction wrapping the given nested
// instructions (see NewFusedInstruction).
func (p *Computation) AddFusion(name string, shape Shape, fused []*Instruction,
	operands ...*Instruction) *Instruction {
	inst := p.add(name, OpcodeFusion, shape, nil, operands)
	inst.fused = fused
	//
	return inst
}

// AddGetTupleElement appends an instruction projecting the given element out
// of a tuple-shaped operand.
func (p *Computation) AddGetTupleElement(name string, shape Shape, operand *Instruction,
	index uint) *Instruction {
	inst := p.add(name, OpcodeGetTupleElement, shape, nil, []*Instruction{operand})
	inst.tupleIndex = index
	//
	return inst
}

// NewFusedInstruction constructs an instruction for use inside a fusion body.
// Nested instructions are owned by their fusion instruction, are not listed
// in any computation and never appear in a schedule; their only observable
// role at this level is to carry call sites (e.g. a reduce nested inside a
// fusion).  Operands of nested instructions do not acquire users.
func NewFusedInstruction(name string, opcode Opcode, shape Shape, called []*Computation,
	operands ...*Instruction) *Instruction {
	return &Instruction{
		name:     name,
		opcode:   opcode,
		shape:    shape,
		operands: operands,
		userSet:  make(map[*Instruction]bool),
		called:   called,
	}
}

// PostOrder returns all instructions of this computation in a deterministic
// post order: every instruction appears after its operands and control
// predecessors.
func (p *Computation) PostOrder() []*Instruction {
	visited := make([]bool, len(p.instructions))
	order := make([]*Instruction, 0, len(p.instructions))
	//
	var visit func(*Instruction)
	//
	visit = func(inst *Instruction) {
		if visited[inst.id] {
			return
		}
		//
		visited[inst.id] = true
		//
		for _, operand := range inst.operands {
			visit(operand)
		}

		for _, pred := range inst.controlPredecessors {
			visit(pred)
		}
		//
		order = append(order, inst)
	}
	// Visit from every instruction so dead instructions are covered too.
	for _, inst := range p.instructions {
		visit(inst)
	}
	//
	return order
}

// AcceptWithOperandOrder performs a depth-first post-order traversal of this
// computation, calling visitor exactly once per instruction.  At each
// instruction the (unique) operands are visited in the order induced by the
// given comparator; control predecessors are visited after operands, in
// declaration order.  Traversal starts from every instruction without users
// or control successors, so the visitor sees every instruction.
func (p *Computation) AcceptWithOperandOrder(less func(a, b *Instruction) bool,
	visitor func(*Instruction) error) error {
	//
	visited := make([]bool, len(p.instructions))
	//
	var visit func(*Instruction) error
	//
	visit = func(inst *Instruction) error {
		if visited[inst.id] {
			return nil
		}
		//
		visited[inst.id] = true
		// Determine unique operands
		seen := make(map[*Instruction]bool, len(inst.operands))
		operands := make([]*Instruction, 0, len(inst.operands))
		//
		for _, operand := range inst.operands {
			if !seen[operand] {
				seen[operand] = true
				operands = append(operands, operand)
			}
		}
		// Order operands by the given comparator
		sort.SliceStable(operands, func(i, j int) bool {
			return less(operands[i], operands[j])
		})
		//
		for _, operand := range operands {
			if err := visit(operand); err != nil {
				return err
			}
		}

		for _, pred := range inst.controlPredecessors {
			if err := visit(pred); err != nil {
				return err
			}
		}
		//
		return visitor(inst)
	}
	//
	for _, inst := range p.instructions {
		if len(inst.users) == 0 && len(inst.controlSuccessors) == 0 {
			if err := visit(inst); err != nil {
				return err
			}
		}
	}
	//
	return nil
}

// Append a new instruction to this computation, updating the user lists of
// its operands and making it the root.
func (p *Computation) add(name string, opcode Opcode, shape Shape, called []*Computation,
	operands []*Instruction) *Instruction {
	//
	inst := &Instruction{
		id:       uint(len(p.instructions)),
		name:     name,
		opcode:   opcode,
		shape:    shape,
		operands: operands,
		userSet:  make(map[*Instruction]bool),
		called:   called,
		parent:   p,
	}
	//
	for _, operand := range operands {
		if operand.parent != p {
			panic("operand owned by another computation")
		}

		operand.addUser(inst)
	}
	//
	p.instructions = append(p.instructions, inst)
	p.root = inst
	//
	return inst
}
