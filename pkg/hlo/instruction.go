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
	"fmt"
	"strings"
)

// Instruction represents a single operation within a computation.  An
// instruction is identified by its pointer and is never copied across
// computations; its id gives a stable, dense index within the owning
// computation which analyses use as an arena handle.  All cross-references
// held here (operands, users, control edges, called computations) are
// non-owning: the computation owns its instructions, and the module owns its
// computations.
type Instruction struct {
	// Dense index of this instruction within its computation.
	id uint
	// Unique (within the computation) name of this instruction.
	name string
	// Operation this instruction performs.
	opcode Opcode
	// Shape of the value this instruction produces.
	shape Shape
	// Instructions whose values this instruction consumes.
	operands []*Instruction
	// Instructions consuming the value of this instruction (deduplicated,
	// insertion ordered).
	users   []*Instruction
	userSet map[*Instruction]bool
	// Explicit control edges.  A control predecessor must be scheduled
	// before this instruction even though no data flows between them.
	controlPredecessors []*Instruction
	controlSuccessors   []*Instruction
	// Computations invoked by this instruction, in role order (see the
	// accessors below for which roles a given opcode carries).
	called []*Computation
	// Nested instructions, for fusion instructions only.  These are owned by
	// the fusion instruction and do not appear in the parent computation.
	fused []*Instruction
	// Element index, for get-tuple-element instructions only.
	tupleIndex uint
	// Computation which owns this instruction.
	parent *Computation
}

// Id returns the dense index of this instruction within its computation.
func (p *Instruction) Id() uint { return p.id }

// Name returns the name of this instruction.
func (p *Instruction) Name() string { return p.name }

// Opcode returns the operation this instruction performs.
func (p *Instruction) Opcode() Opcode { return p.opcode }

// Shape returns the shape of the value this instruction produces.
func (p *Instruction) Shape() Shape { return p.shape }

// Parent returns the computation which owns this instruction.
func (p *Instruction) Parent() *Computation { return p.parent }

// Operands returns the instructions whose values this instruction consumes.
func (p *Instruction) Operands() []*Instruction { return p.operands }

// Operand returns the ith operand of this instruction.
func (p *Instruction) Operand(i uint) *Instruction { return p.operands[i] }

// OperandCount returns the number of operands this instruction has.
func (p *Instruction) OperandCount() uint { return uint(len(p.operands)) }

// Users returns the instructions consuming the value of this instruction, in
// the order they were constructed and without duplicates.
func (p *Instruction) Users() []*Instruction { return p.users }

// UserCount returns the number of distinct users of this instruction.
func (p *Instruction) UserCount() uint { return uint(len(p.users)) }

// ControlPredecessors returns the instructions which must execute before this
// instruction due to explicit control edges.
func (p *Instruction) ControlPredecessors() []*Instruction { return p.controlPredecessors }

// ControlSuccessors returns the instructions which must execute after this
// instruction due to explicit control edges.
func (p *Instruction) ControlSuccessors() []*Instruction { return p.controlSuccessors }

// AddControlDependencyTo adds a control edge forcing this instruction to
// execute before the given successor.  Both instructions must be owned by the
// same computation.
func (p *Instruction) AddControlDependencyTo(successor *Instruction) error {
	if p.parent != successor.parent {
		return fmt.Errorf("control edge %s->%s crosses computations (%s vs %s)",
			p.name, successor.name, p.parent.Name(), successor.parent.Name())
	}
	//
	p.controlSuccessors = append(p.controlSuccessors, successor)
	successor.controlPredecessors = append(successor.controlPredecessors, p)
	//
	return nil
}

// CalledComputations returns all computations this instruction invokes, in
// role order.  This is empty for instructions which do not invoke
// sub-computations, and also for fusion instructions (whose call sites live
// on their nested instructions).
func (p *Instruction) CalledComputations() []*Computation { return p.called }

// ToApply returns the computation applied by a call, map, reduce or
// reduce-window instruction.
func (p *Instruction) ToApply() *Computation {
	switch p.opcode {
	case OpcodeCall, OpcodeMap, OpcodeReduce, OpcodeReduceWindow:
		return p.called[0]
	}
	//
	panic(fmt.Sprintf("%s instruction %s has no apply computation", p.opcode, p.name))
}

// WhileCondition returns the condition computation of a while instruction.
func (p *Instruction) WhileCondition() *Computation {
	if p.opcode != OpcodeWhile {
		panic(fmt.Sprintf("%s instruction %s has no while condition", p.opcode, p.name))
	}
	//
	return p.called[0]
}

// WhileBody returns the body computation of a while instruction.
func (p *Instruction) WhileBody() *Computation {
	if p.opcode != OpcodeWhile {
		panic(fmt.Sprintf("%s instruction %s has no while body", p.opcode, p.name))
	}
	//
	return p.called[1]
}

// SelectComputation returns the select computation of a select-and-scatter
// instruction.
func (p *Instruction) SelectComputation() *Computation {
	if p.opcode != OpcodeSelectAndScatter {
		panic(fmt.Sprintf("%s instruction %s has no select computation", p.opcode, p.name))
	}
	//
	return p.called[0]
}

// ScatterComputation returns the scatter computation of a select-and-scatter
// instruction.
func (p *Instruction) ScatterComputation() *Computation {
	if p.opcode != OpcodeSelectAndScatter {
		panic(fmt.Sprintf("%s instruction %s has no scatter computation", p.opcode, p.name))
	}
	//
	return p.called[1]
}

// FusedInstructions returns the nested instructions of a fusion instruction.
func (p *Instruction) FusedInstructions() []*Instruction {
	if p.opcode != OpcodeFusion {
		panic(fmt.Sprintf("%s instruction %s has no fused instructions", p.opcode, p.name))
	}
	//
	return p.fused
}

// TupleIndex returns the element index of a get-tuple-element instruction.
func (p *Instruction) TupleIndex() uint {
	if p.opcode != OpcodeGetTupleElement {
		panic(fmt.Sprintf("%s instruction %s has no tuple index", p.opcode, p.name))
	}
	//
	return p.tupleIndex
}

func (p *Instruction) String() string {
	var builder strings.Builder
	//
	fmt.Fprintf(&builder, "%s = %s %s", p.name, p.opcode, p.shape)
	//
	for i, operand := range p.operands {
		if i == 0 {
			builder.WriteString(" ")
		} else {
			builder.WriteString(", ")
		}

		builder.WriteString(operand.Name())
	}
	//
	for i, callee := range p.called {
		if i == 0 {
			builder.WriteString(" calls ")
		} else {
			builder.WriteString(", ")
		}

		builder.WriteString(callee.Name())
	}
	//
	return builder.String()
}

// Register a user of this instruction, ignoring duplicates.
func (p *Instruction) addUser(user *Instruction) {
	if !p.userSet[user] {
		p.userSet[user] = true
		p.users = append(p.users, user)
	}
}
