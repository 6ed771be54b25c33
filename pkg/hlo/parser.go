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
	"strconv"
	"strings"

	"github.com/consensys/go-hlo/pkg/sexp"
)

// ParseModule parses the textual (s-expression) form of a module:
//
//	(module <name>
//	  (computation <name> [:entry]
//	    (<name> <opcode> <shape> <operand>* [:calls <computation>+]
//	                                        [:after <instruction>+]
//	                                        [:index <n>])
//	    ...))
//
// Shapes are written as "f32" (scalar), "(f32 2 3)" (array) or
// "(tuple (f32 4) s32)".  Operands must name instructions defined earlier in
// the same computation, whilst :calls may forward-reference computations
// defined later in the module.  The final instruction of a computation is its
// root.  Fusion instructions have no textual form; they are only constructed
// programmatically.
func ParseModule(text string) (*Module, error) {
	term, err := sexp.Parse(text)
	if err != nil {
		return nil, err
	}
	//
	list, ok := term.(*sexp.List)
	if !ok || !list.MatchSymbols(2, "module") || list.Len() < 2 {
		return nil, fmt.Errorf("expected (module <name> ...), found %s", term)
	}
	//
	name, err := symbolOf(list.Elements[1])
	if err != nil {
		return nil, err
	}
	//
	module := NewModule(name)
	// First pass: register all computations so call sites can forward
	// reference them.
	for _, element := range list.Elements[2:] {
		if err := registerComputation(module, element); err != nil {
			return nil, err
		}
	}
	//
	if module.Entry() == nil {
		return nil, fmt.Errorf("module %s has no :entry computation", name)
	}
	// Second pass: populate computation bodies.
	for i, element := range list.Elements[2:] {
		body := element.(*sexp.List)
		computation := module.Computations()[i]
		//
		for _, instr := range instructionTerms(body) {
			if err := parseInstruction(computation, instr); err != nil {
				return nil, err
			}
		}
	}
	//
	return module, nil
}

// Validate a computation header and register an (empty) computation for it.
func registerComputation(module *Module, term sexp.SExp) error {
	list, ok := term.(*sexp.List)
	if !ok || !list.MatchSymbols(2, "computation") {
		return fmt.Errorf("expected (computation <name> ...), found %s", term)
	}
	//
	name, err := symbolOf(list.Elements[1])
	if err != nil {
		return err
	}
	//
	if _, exists := module.ComputationByName(name); exists {
		return fmt.Errorf("duplicate computation %s", name)
	}
	// Check for the :entry marker
	entry := len(list.Elements) > 2 && isKeyword(list.Elements[2], ":entry")
	//
	if entry && module.Entry() != nil {
		return fmt.Errorf("module %s has more than one :entry computation", module.Name())
	} else if entry {
		module.NewEntryComputation(name)
	} else {
		module.NewComputation(name)
	}
	//
	return nil
}

// Extract the instruction terms of a computation body, skipping the header
// and any :entry marker.
func instructionTerms(body *sexp.List) []sexp.SExp {
	terms := body.Elements[2:]
	if len(terms) > 0 && isKeyword(terms[0], ":entry") {
		terms = terms[1:]
	}
	//
	return terms
}

func parseInstruction(computation *Computation, term sexp.SExp) error {
	list, ok := term.(*sexp.List)
	if !ok || list.Len() < 3 {
		return fmt.Errorf("expected (<name> <opcode> <shape> ...), found %s", term)
	}
	//
	name, err := symbolOf(list.Elements[0])
	if err != nil {
		return err
	}
	//
	if instructionByName(computation, name) != nil {
		return fmt.Errorf("duplicate instruction %s in computation %s", name, computation.Name())
	}
	//
	opcodeName, err := symbolOf(list.Elements[1])
	if err != nil {
		return err
	}
	//
	opcode, ok := ParseOpcode(opcodeName)
	if !ok {
		return fmt.Errorf("unknown opcode %s in instruction %s", opcodeName, name)
	} else if opcode == OpcodeFusion {
		return fmt.Errorf("fusion instruction %s has no textual form", name)
	}
	//
	shape, err := parseShape(list.Elements[2])
	if err != nil {
		return fmt.Errorf("instruction %s: %w", name, err)
	}
	// Split remaining terms into operands and keyword sections.
	operands, calls, after, index, err := parseInstructionTail(computation, name, list.Elements[3:])
	if err != nil {
		return err
	}
	//
	inst, err := buildInstruction(computation, name, opcode, shape, operands, calls, index)
	if err != nil {
		return err
	}
	// Attach control edges.
	for _, pred := range after {
		if err := pred.AddControlDependencyTo(inst); err != nil {
			return err
		}
	}
	//
	return nil
}

// Resolve the operand and keyword sections of an instruction term.
func parseInstructionTail(computation *Computation, name string, terms []sexp.SExp) (
	operands []*Instruction, calls []*Computation, after []*Instruction, index *uint, err error) {
	//
	section := ""
	//
	for _, term := range terms {
		symbol, serr := symbolOf(term)
		if serr != nil {
			return nil, nil, nil, nil, fmt.Errorf("instruction %s: unexpected %s", name, term)
		}
		// Keywords switch sections; anything else extends the current one.
		if strings.HasPrefix(symbol, ":") {
			switch symbol {
			case ":calls", ":after", ":index":
				section = symbol
			default:
				return nil, nil, nil, nil, fmt.Errorf("instruction %s: unknown keyword %s", name, symbol)
			}
			//
			continue
		}
		//
		switch section {
		case "":
			operand := instructionByName(computation, symbol)
			if operand == nil {
				return nil, nil, nil, nil, fmt.Errorf("instruction %s: unknown operand %s", name, symbol)
			}
			//
			operands = append(operands, operand)
		case ":calls":
			callee, ok := computation.Parent().ComputationByName(symbol)
			if !ok {
				return nil, nil, nil, nil, fmt.Errorf("instruction %s: unknown computation %s", name, symbol)
			}
			//
			calls = append(calls, callee)
		case ":after":
			pred := instructionByName(computation, symbol)
			if pred == nil {
				return nil, nil, nil, nil, fmt.Errorf("instruction %s: unknown control predecessor %s", name, symbol)
			}
			//
			after = append(after, pred)
		case ":index":
			n, perr := strconv.ParseUint(symbol, 10, 32)
			if perr != nil {
				return nil, nil, nil, nil, fmt.Errorf("instruction %s: invalid tuple index %s", name, symbol)
			}
			//
			v := uint(n)
			index = &v
		}
	}
	//
	return operands, calls, after, index, nil
}

// Construct the instruction, checking the callee count expected for its
// opcode.
func buildInstruction(computation *Computation, name string, opcode Opcode, shape Shape,
	operands []*Instruction, calls []*Computation, index *uint) (*Instruction, error) {
	//
	switch opcode {
	case OpcodeCall, OpcodeMap, OpcodeReduce, OpcodeReduceWindow:
		if len(calls) != 1 {
			return nil, fmt.Errorf("%s instruction %s expects 1 called computation, found %d",
				opcode, name, len(calls))
		}
	case OpcodeWhile, OpcodeSelectAndScatter:
		if len(calls) != 2 {
			return nil, fmt.Errorf("%s instruction %s expects 2 called computations, found %d",
				opcode, name, len(calls))
		}
	default:
		if len(calls) != 0 {
			return nil, fmt.Errorf("%s instruction %s cannot call computations", opcode, name)
		}
	}
	//
	switch opcode {
	case OpcodeCall:
		return computation.AddCall(name, shape, calls[0], operands...), nil
	case OpcodeMap:
		return computation.AddMap(name, shape, calls[0], operands...), nil
	case OpcodeReduce:
		return computation.AddReduce(name, shape, calls[0], operands...), nil
	case OpcodeReduceWindow:
		return computation.AddReduceWindow(name, shape, calls[0], operands...), nil
	case OpcodeWhile:
		if len(operands) != 1 {
			return nil, fmt.Errorf("while instruction %s expects 1 operand, found %d", name, len(operands))
		}
		//
		return computation.AddWhile(name, shape, calls[0], calls[1], operands[0]), nil
	case OpcodeSelectAndScatter:
		return computation.AddSelectAndScatter(name, shape, calls[0], calls[1], operands...), nil
	case OpcodeGetTupleElement:
		if len(operands) != 1 || index == nil {
			return nil, fmt.Errorf("get-tuple-element instruction %s expects 1 operand and :index", name)
		}
		//
		return computation.AddGetTupleElement(name, shape, operands[0], *index), nil
	default:
		if index != nil {
			return nil, fmt.Errorf("%s instruction %s cannot have :index", opcode, name)
		}
		//
		return computation.AddInstruction(name, opcode, shape, operands...), nil
	}
}

func parseShape(term sexp.SExp) (Shape, error) {
	switch t := term.(type) {
	case *sexp.Symbol:
		elem, ok := ParseElementType(t.Value)
		if !ok {
			return Shape{}, fmt.Errorf("unknown element type %s", t.Value)
		}
		//
		return NewShape(elem), nil
	case *sexp.List:
		if t.Len() == 0 {
			return Shape{}, fmt.Errorf("empty shape")
		}
		//
		head, err := symbolOf(t.Elements[0])
		if err != nil {
			return Shape{}, err
		}
		// Tuple shape?
		if head == "tuple" {
			elements := make([]Shape, 0, t.Len()-1)
			//
			for _, e := range t.Elements[1:] {
				element, err := parseShape(e)
				if err != nil {
					return Shape{}, err
				}
				//
				elements = append(elements, element)
			}
			//
			return NewTupleShape(elements...), nil
		}
		// Array shape
		elem, ok := ParseElementType(head)
		if !ok {
			return Shape{}, fmt.Errorf("unknown element type %s", head)
		}
		//
		dims := make([]uint, 0, t.Len()-1)
		//
		for _, e := range t.Elements[1:] {
			symbol, err := symbolOf(e)
			if err != nil {
				return Shape{}, err
			}
			//
			d, perr := strconv.ParseUint(symbol, 10, 32)
			if perr != nil {
				return Shape{}, fmt.Errorf("invalid dimension %s", symbol)
			}
			//
			dims = append(dims, uint(d))
		}
		//
		return NewShape(elem, dims...), nil
	}
	//
	return Shape{}, fmt.Errorf("invalid shape %s", term)
}

func instructionByName(computation *Computation, name string) *Instruction {
	for _, inst := range computation.Instructions() {
		if inst.Name() == name {
			return inst
		}
	}
	//
	return nil
}

func symbolOf(term sexp.SExp) (string, error) {
	if symbol, ok := term.(*sexp.Symbol); ok {
		return symbol.Value, nil
	}
	//
	return "", fmt.Errorf("expected symbol, found %s", term)
}

func isKeyword(term sexp.SExp, keyword string) bool {
	symbol, ok := term.(*sexp.Symbol)
	return ok && symbol.Value == keyword
}
