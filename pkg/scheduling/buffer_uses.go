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
package scheduling

import (
	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/consensys/go-hlo/pkg/pointsto"
)

// Determine, for every instruction of a computation, the set of buffers it
// reads.  An instruction reads a buffer when the buffer is in the points-to
// set of one of its operands; the sets are deduplicated whilst preserving
// first-seen order.
func bufferUses(computation *hlo.Computation,
	analysis *pointsto.Analysis) (map[*hlo.Instruction][]*pointsto.Buffer, error) {
	//
	uses := make(map[*hlo.Instruction][]*pointsto.Buffer)
	//
	for _, inst := range computation.Instructions() {
		var (
			used []*pointsto.Buffer
			seen = make(map[*pointsto.Buffer]bool)
		)
		//
		for _, operand := range inst.Operands() {
			buffers, err := analysis.PointsTo(operand)
			if err != nil {
				return nil, err
			}

			for _, buffer := range buffers {
				if !seen[buffer] {
					seen[buffer] = true
					used = append(used, buffer)
				}
			}
		}
		//
		uses[inst] = used
	}
	//
	return uses, nil
}

// Count, for every buffer defined within a computation, the number of
// not-yet-executed instructions which still read it.  Buffers which are live
// out of the computation carry one extra use, representing the eventual
// caller.
func unscheduledUseCounts(computation *hlo.Computation, analysis *pointsto.Analysis,
	uses map[*hlo.Instruction][]*pointsto.Buffer) (map[*pointsto.Buffer]int, error) {
	//
	counts := make(map[*pointsto.Buffer]int)
	//
	for _, inst := range computation.Instructions() {
		defined, err := analysis.BuffersDefinedBy(inst)
		if err != nil {
			return nil, err
		}

		for _, buffer := range defined {
			counts[buffer] = 0
		}
	}
	//
	for _, inst := range computation.Instructions() {
		for _, buffer := range uses[inst] {
			counts[buffer]++
		}
	}
	// Live-out buffers have an implicit use at the end of the computation.
	liveOut, err := analysis.LiveOut(computation)
	if err != nil {
		return nil, err
	}
	//
	for _, buffer := range liveOut {
		counts[buffer]++
	}
	//
	return counts, nil
}
