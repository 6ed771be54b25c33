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

// Schedule maps computations of one module to a total execution order over
// their instructions.  A valid schedule contains every instruction of a
// computation exactly once, in some order consistent with data and control
// dependencies.
type Schedule struct {
	// Module this schedule orders.
	module *Module
	// Chosen sequence for each computation.
	sequences map[*Computation][]*Instruction
}

// NewSchedule constructs an empty schedule for the given module.
func NewSchedule(module *Module) *Schedule {
	return &Schedule{
		module:    module,
		sequences: make(map[*Computation][]*Instruction),
	}
}

// Module returns the module this schedule orders.
func (p *Schedule) Module() *Module { return p.module }

// SetSequence fixes the execution order for a given computation.
func (p *Schedule) SetSequence(computation *Computation, sequence []*Instruction) {
	p.sequences[computation] = sequence
}

// Sequence returns the execution order chosen for a given computation, or nil
// if none has been set.
func (p *Schedule) Sequence(computation *Computation) []*Instruction {
	return p.sequences[computation]
}

// Validate checks that this schedule assigns every computation of its module
// a sequence which is a permutation of that computation's instructions and
// which respects all data and control dependencies.
func (p *Schedule) Validate() error {
	for _, computation := range p.module.computations {
		sequence, ok := p.sequences[computation]
		if !ok {
			return fmt.Errorf("computation %s has no sequence", computation.Name())
		}

		if err := validateSequence(computation, sequence); err != nil {
			return err
		}
	}
	//
	return nil
}

// Check a single sequence is a dependency-respecting permutation of the
// computation's instructions.
func validateSequence(computation *Computation, sequence []*Instruction) error {
	if uint(len(sequence)) != computation.Size() {
		return fmt.Errorf("sequence for %s has %d instructions, expected %d",
			computation.Name(), len(sequence), computation.Size())
	}
	// Assign positions, checking membership and duplicates.
	positions := make(map[*Instruction]int, len(sequence))
	//
	for i, inst := range sequence {
		if inst.parent != computation {
			return fmt.Errorf("sequence for %s contains foreign instruction %s",
				computation.Name(), inst.Name())
		} else if _, ok := positions[inst]; ok {
			return fmt.Errorf("sequence for %s contains %s twice",
				computation.Name(), inst.Name())
		}
		//
		positions[inst] = i
	}
	// Check dependencies all point backwards.
	for _, inst := range sequence {
		for _, operand := range inst.operands {
			if positions[operand] > positions[inst] {
				return fmt.Errorf("sequence for %s places %s before its operand %s",
					computation.Name(), inst.Name(), operand.Name())
			}
		}

		for _, pred := range inst.controlPredecessors {
			if positions[pred] > positions[inst] {
				return fmt.Errorf("sequence for %s places %s before its control predecessor %s",
					computation.Name(), inst.Name(), pred.Name())
			}
		}
	}
	//
	return nil
}

func (p *Schedule) String() string {
	var builder strings.Builder
	//
	for _, computation := range p.module.computations {
		fmt.Fprintf(&builder, "computation %s:\n", computation.Name())
		//
		for _, inst := range p.sequences[computation] {
			fmt.Fprintf(&builder, "  %s\n", inst.Name())
		}
	}
	//
	return builder.String()
}
