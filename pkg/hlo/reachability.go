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
	"github.com/consensys/go-hlo/pkg/util/collection/bit"
)

// Reachability captures, for every instruction of one computation, the set of
// instructions it transitively depends upon through data operands and control
// edges.  Sets are bitsets indexed by instruction id, hence both queries and
// construction are cheap.  A Reachability is a pure function of the graph at
// the point it was computed; it is not updated as instructions are added.
type Reachability struct {
	// Computation this reachability was computed over.
	computation *Computation
	// For each instruction (by id), the ids of its strict transitive
	// predecessors.
	predecessors []bit.Set
}

// TransitiveOperands computes the reachability relation of this computation.
// StrictlyPrecedes(a, b) subsequently holds iff a is a transitive operand or
// control predecessor of b.
func (p *Computation) TransitiveOperands() *Reachability {
	r := &Reachability{
		computation:  p,
		predecessors: make([]bit.Set, len(p.instructions)),
	}
	// Instructions are visited in post order, hence all dependencies of an
	// instruction have their sets populated before it is reached.
	for _, inst := range p.PostOrder() {
		var preds bit.Set
		//
		for _, operand := range inst.operands {
			preds.Insert(operand.id)
			preds.Union(r.predecessors[operand.id])
		}

		for _, pred := range inst.controlPredecessors {
			preds.Insert(pred.id)
			preds.Union(r.predecessors[pred.id])
		}
		//
		r.predecessors[inst.id] = preds
	}
	//
	return r
}

// Computation returns the computation this reachability was computed over.
func (p *Reachability) Computation() *Computation { return p.computation }

// StrictlyPrecedes checks whether a is a strict transitive predecessor of b.
// Both instructions must belong to the computation this reachability was
// computed over.
func (p *Reachability) StrictlyPrecedes(a *Instruction, b *Instruction) bool {
	if a.parent != p.computation || b.parent != p.computation {
		panic("instruction owned by another computation")
	}
	//
	return p.predecessors[b.id].Contains(a.id)
}
