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

import "fmt"

// Opcode identifies the operation performed by an instruction.
type Opcode uint

const (
	// OpcodeParameter reads one of the inputs of the enclosing computation.
	OpcodeParameter Opcode = iota
	// OpcodeConstant produces a compile-time constant value.
	OpcodeConstant
	// OpcodeAdd performs elementwise addition.
	OpcodeAdd
	// OpcodeSubtract performs elementwise subtraction.
	OpcodeSubtract
	// OpcodeMultiply performs elementwise multiplication.
	OpcodeMultiply
	// OpcodeDivide performs elementwise division.
	OpcodeDivide
	// OpcodeMaximum performs elementwise maximum.
	OpcodeMaximum
	// OpcodeNegate performs elementwise negation.
	OpcodeNegate
	// OpcodeExp performs elementwise exponentiation.
	OpcodeExp
	// OpcodeBroadcast replicates its operand across new dimensions.
	OpcodeBroadcast
	// OpcodeTuple packages its operands into a tuple value.
	OpcodeTuple
	// OpcodeGetTupleElement projects one element out of a tuple value.
	OpcodeGetTupleElement
	// OpcodeCall invokes another computation once on its operands.
	OpcodeCall
	// OpcodeMap applies a computation elementwise across its operands.
	OpcodeMap
	// OpcodeReduce folds a computation across one or more dimensions.
	OpcodeReduce
	// OpcodeReduceWindow folds a computation across moving windows.
	OpcodeReduceWindow
	// OpcodeSelectAndScatter selects elements via one computation and
	// scatters source values via another.
	OpcodeSelectAndScatter
	// OpcodeWhile repeatedly applies a body computation whilst a condition
	// computation holds.
	OpcodeWhile
	// OpcodeFusion wraps a nested group of instructions which are emitted as
	// a single kernel.
	OpcodeFusion
)

var opcodeNames = map[Opcode]string{
	OpcodeParameter:        "parameter",
	OpcodeConstant:         "constant",
	OpcodeAdd:              "add",
	OpcodeSubtract:         "subtract",
	OpcodeMultiply:         "multiply",
	OpcodeDivide:           "divide",
	OpcodeMaximum:          "maximum",
	OpcodeNegate:           "negate",
	OpcodeExp:              "exp",
	OpcodeBroadcast:        "broadcast",
	OpcodeTuple:            "tuple",
	OpcodeGetTupleElement:  "get-tuple-element",
	OpcodeCall:             "call",
	OpcodeMap:              "map",
	OpcodeReduce:           "reduce",
	OpcodeReduceWindow:     "reduce-window",
	OpcodeSelectAndScatter: "select-and-scatter",
	OpcodeWhile:            "while",
	OpcodeFusion:           "fusion",
}

func (op Opcode) String() string {
	name, ok := opcodeNames[op]
	if !ok {
		panic(fmt.Sprintf("unknown opcode %d", op))
	}
	//
	return name
}

// ParseOpcode parses the string form of an opcode (e.g. "get-tuple-element").
func ParseOpcode(name string) (Opcode, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return op, true
		}
	}
	//
	return OpcodeParameter, false
}
