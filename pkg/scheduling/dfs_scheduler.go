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
	"fmt"

	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/consensys/go-hlo/pkg/pointsto"
)

// DFSSchedule produces a sequence for the given computation as a
// deterministic depth-first post order.  At each branching point, operands
// are visited by descending cumulative fan-out ("extra users": an
// instruction's user count less one, clamped at zero, summed over its unique
// operands), then by descending cumulative defined-buffer volume, then by
// ascending name.  The name comparison exists purely to force a total,
// reproducible order when the weights tie.  Visiting high fan-out, high
// volume subtrees first tends to let their results be consumed, and hence
// freed, sooner.
func DFSSchedule(computation *hlo.Computation, analysis *pointsto.Analysis,
	size pointsto.SizeFunction) ([]*hlo.Instruction, error) {
	//
	var (
		extraUsers = make([]int64, computation.Size())
		totalSizes = make([]int64, computation.Size())
	)
	// Roll both weights up from operands, in post order so an instruction's
	// operands are always weighted before it.
	for _, inst := range computation.PostOrder() {
		if inst.UserCount() > 0 {
			extraUsers[inst.Id()] = int64(inst.UserCount()) - 1
		}
		//
		defined, err := analysis.BuffersDefinedBy(inst)
		if err != nil {
			return nil, err
		}

		for _, buffer := range defined {
			totalSizes[inst.Id()] += size(buffer)
		}
		//
		seen := make(map[*hlo.Instruction]bool, inst.OperandCount())
		//
		for _, operand := range inst.Operands() {
			if !seen[operand] {
				seen[operand] = true
				extraUsers[inst.Id()] += extraUsers[operand.Id()]
				totalSizes[inst.Id()] += totalSizes[operand.Id()]
			}
		}
	}
	// Emit the post order induced by the weights.
	sequence := make([]*hlo.Instruction, 0, computation.Size())
	//
	err := computation.AcceptWithOperandOrder(
		func(a *hlo.Instruction, b *hlo.Instruction) bool {
			if extraUsers[a.Id()] != extraUsers[b.Id()] {
				return extraUsers[a.Id()] > extraUsers[b.Id()]
			}

			if totalSizes[a.Id()] != totalSizes[b.Id()] {
				return totalSizes[a.Id()] > totalSizes[b.Id()]
			}
			//
			return a.Name() < b.Name()
		},
		func(inst *hlo.Instruction) error {
			sequence = append(sequence, inst)
			return nil
		})
	//
	if err != nil {
		return nil, err
	} else if uint(len(sequence)) != computation.Size() {
		return nil, fmt.Errorf("dfs scheduler covered %d of %d instructions in %s",
			len(sequence), computation.Size(), computation.Name())
	}
	//
	return sequence, nil
}
