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
	"fmt"

	"github.com/consensys/go-hlo/pkg/hlo"
)

// Buffer is an abstract storage location produced by exactly one instruction
// (its defining point) and potentially read by many.  Buffers carry no size
// themselves; sizes are assigned by an externally supplied SizeFunction.
type Buffer struct {
	// Unique (within the analysis) identifier of this buffer.
	id uint
	// Instruction which defines this buffer.
	instruction *hlo.Instruction
}

// Id returns the unique identifier of this buffer.
func (p *Buffer) Id() uint { return p.id }

// Instruction returns the instruction which defines this buffer.
func (p *Buffer) Instruction() *hlo.Instruction { return p.instruction }

// Ignorable checks whether this buffer is exempt from memory accounting.
// Buffers defined by parameters and constants are presumed to pre-exist the
// computation: the scheduler neither allocates nor frees them.
func (p *Buffer) Ignorable() bool {
	opcode := p.instruction.Opcode()
	return opcode == hlo.OpcodeParameter || opcode == hlo.OpcodeConstant
}

func (p *Buffer) String() string {
	return fmt.Sprintf("%s{%d}", p.instruction.Name(), p.id)
}

// SizeFunction assigns a byte size to every buffer.  Callers inject a size
// function appropriate for their target; DefaultSize is a reasonable choice
// when nothing target-specific is known.
type SizeFunction func(*Buffer) int64

// DefaultSize sizes a buffer from the shape of its defining instruction.  A
// tuple instruction's own buffer is just the index table referencing its
// element buffers, hence eight bytes per element.
func DefaultSize(buffer *Buffer) int64 {
	inst := buffer.Instruction()
	if inst.Opcode() == hlo.OpcodeTuple {
		return int64(inst.OperandCount()) * 8
	}
	//
	return inst.Shape().ByteSize()
}
