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

// MinimumMemoryForComputation simulates executing the given sequence against
// a heap with no fragmentation: a buffer is allocated when its defining
// instruction executes and freed immediately once no later instruction reads
// it.  The returned peak is a lower bound on the memory any real allocator
// needs for this sequence, used purely as a comparative score between
// candidate orderings.  Buffers defined by parameters and constants are
// exempt from accounting.
func MinimumMemoryForComputation(computation *hlo.Computation, sequence []*hlo.Instruction,
	analysis *pointsto.Analysis, size pointsto.SizeFunction) (int64, error) {
	//
	if uint(len(sequence)) != computation.Size() {
		return 0, fmt.Errorf("sequence for %s has %d instructions, expected %d",
			computation.Name(), len(sequence), computation.Size())
	}
	//
	uses, err := bufferUses(computation, analysis)
	if err != nil {
		return 0, err
	}
	//
	counts, err := unscheduledUseCounts(computation, analysis, uses)
	if err != nil {
		return 0, err
	}
	//
	var live, peak int64
	// Release a buffer once its remaining use count drains, provided it was
	// subject to accounting in the first place.
	free := func(buffer *pointsto.Buffer) {
		if counts[buffer] == 0 && !buffer.Ignorable() {
			live -= size(buffer)
		}
	}
	//
	for _, inst := range sequence {
		defined, err := analysis.BuffersDefinedBy(inst)
		if err != nil {
			return 0, err
		}
		// Allocate everything this instruction defines.
		for _, buffer := range defined {
			if !buffer.Ignorable() {
				live += size(buffer)
			}
		}
		//
		if live > peak {
			peak = live
		}
		// Release buffers this instruction read for the last time.
		for _, buffer := range uses[inst] {
			if counts[buffer] <= 0 {
				return 0, fmt.Errorf("use count of %s underflowed in sequence for %s",
					buffer, computation.Name())
			}
			//
			counts[buffer]--
			free(buffer)
		}
		// A buffer nothing reads dies at its definition.
		for _, buffer := range defined {
			free(buffer)
		}
	}
	//
	return peak, nil
}

// MinimumMemoryForSchedule sums the simulated peak memory over all
// computations of a schedule.  This conservatively assumes no buffer sharing
// between computations.
func MinimumMemoryForSchedule(schedule *hlo.Schedule, size pointsto.SizeFunction) (int64, error) {
	module := schedule.Module()
	if len(module.Computations()) == 0 {
		return 0, nil
	}
	//
	analysis, err := pointsto.Run(module)
	if err != nil {
		return 0, err
	}
	//
	var total int64
	//
	for _, computation := range module.Computations() {
		sequence := schedule.Sequence(computation)
		if sequence == nil {
			return 0, fmt.Errorf("computation %s has no sequence", computation.Name())
		}
		//
		memory, err := MinimumMemoryForComputation(computation, sequence, analysis, size)
		if err != nil {
			return 0, err
		}
		//
		total += memory
	}
	//
	return total, nil
}
