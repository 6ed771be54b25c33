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

// Package ordering provides interchangeable answers to the question "does
// instruction a provably execute before instruction b?".  The dependency
// based relation is a partial order derived purely from graph structure,
// useful for conservative liveness reasoning independent of any chosen
// schedule; the sequential relation is the total order of an explicit
// schedule.  Instructions of different computations are always unordered,
// since cross-computation order is irrelevant to buffer sharing at this
// layer.
package ordering

import (
	"fmt"
	"strings"

	"github.com/consensys/go-hlo/pkg/hlo"
)

// Ordering determines whether one instruction provably executes before
// another.  Implementations must be irreflexive and consistent with the
// dependency structure of the graph.
type Ordering interface {
	// ExecutesBefore checks whether a provably executes before b.  This is
	// always false when a and b belong to different computations.
	ExecutesBefore(a *hlo.Instruction, b *hlo.Instruction) bool
	// String returns a human-readable dump of this relation, for logging
	// only.
	String() string
}

// PredecessorOrdering orders instructions by precomputed per-computation
// strict predecessor sets: a executes before b iff a is in the strict
// predecessor set of b.
type PredecessorOrdering struct {
	// Name of the concrete relation, used in the debug dump.
	name string
	// Module this relation covers.
	module *hlo.Module
	// Strict predecessor sets, per computation.
	predecessors map[*hlo.Computation]*hlo.Reachability
}

var _ Ordering = (*PredecessorOrdering)(nil)

// NewDependencyOrdering constructs the relation induced by data and control
// dependencies alone: a executes before b iff there is a path from a to b in
// the dependency graph.  Unrelated instructions are left unordered.
func NewDependencyOrdering(module *hlo.Module) *PredecessorOrdering {
	predecessors := make(map[*hlo.Computation]*hlo.Reachability)
	//
	for _, computation := range module.Computations() {
		predecessors[computation] = computation.TransitiveOperands()
	}
	//
	return &PredecessorOrdering{"dependency ordering", module, predecessors}
}

// ExecutesBefore checks whether a provably executes before b.
func (p *PredecessorOrdering) ExecutesBefore(a *hlo.Instruction, b *hlo.Instruction) bool {
	// Instructions in different computations are unordered.
	if a.Parent() != b.Parent() {
		return false
	}
	//
	return p.predecessors[a.Parent()].StrictlyPrecedes(a, b)
}

func (p *PredecessorOrdering) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.name)
	builder.WriteString(":\n")
	//
	for _, computation := range p.module.Computations() {
		fmt.Fprintf(&builder, "computation %s:\n", computation.Name())
		//
		all := computation.PostOrder()
		for _, inst := range all {
			fmt.Fprintf(&builder, "  %s strict predecessors:\n", inst.Name())
			//
			for _, pred := range all {
				if p.ExecutesBefore(pred, inst) {
					fmt.Fprintf(&builder, "    %s\n", pred.Name())
				}
			}
		}
	}
	//
	return builder.String()
}

// SequentialOrdering orders instructions by their position in an explicit
// schedule.  Instructions absent from the schedule (e.g. inserted after it
// was computed) are unordered with respect to everything.
type SequentialOrdering struct {
	// Schedule backing this relation.
	schedule *hlo.Schedule
	// Position of every scheduled instruction within its sequence.
	positions map[*hlo.Instruction]int
}

var _ Ordering = (*SequentialOrdering)(nil)

// NewSequentialOrdering constructs the total order induced by an explicit
// schedule.
func NewSequentialOrdering(schedule *hlo.Schedule) *SequentialOrdering {
	positions := make(map[*hlo.Instruction]int)
	//
	for _, computation := range schedule.Module().Computations() {
		for i, inst := range schedule.Sequence(computation) {
			positions[inst] = i
		}
	}
	//
	return &SequentialOrdering{schedule, positions}
}

// ExecutesBefore checks whether a provably executes before b.
func (p *SequentialOrdering) ExecutesBefore(a *hlo.Instruction, b *hlo.Instruction) bool {
	// Instructions in different computations are unordered.
	if a.Parent() != b.Parent() {
		return false
	}
	// Instructions missing from the schedule are unordered.
	posA, okA := p.positions[a]
	posB, okB := p.positions[b]
	//
	return okA && okB && posA < posB
}

// SequentialOrder returns the scheduled sequence of a given computation, or
// nil if the schedule does not cover it.
func (p *SequentialOrdering) SequentialOrder(computation *hlo.Computation) []*hlo.Instruction {
	return p.schedule.Sequence(computation)
}

func (p *SequentialOrdering) String() string {
	var builder strings.Builder
	//
	builder.WriteString("sequential ordering:\n")
	//
	for _, computation := range p.schedule.Module().Computations() {
		fmt.Fprintf(&builder, "computation %s order:\n", computation.Name())
		//
		for _, inst := range p.schedule.Sequence(computation) {
			fmt.Fprintf(&builder, "  %s\n", inst.Name())
		}
	}
	//
	return builder.String()
}
