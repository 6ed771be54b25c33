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

// The scheduling priority of an instruction: first the number of bytes freed
// by scheduling it now, and second (as tie-breaker) its number of users.
type priority struct {
	freedBytes int64
	users      int64
}

// Compare priorities lexicographically.
func (p priority) greaterThan(other priority) bool {
	if p.freedBytes != other.freedBytes {
		return p.freedBytes > other.freedBytes
	}
	//
	return p.users > other.users
}

// listScheduler holds the per-run bookkeeping of one greedy scheduling pass.
type listScheduler struct {
	computation *hlo.Computation
	analysis    *pointsto.Analysis
	size        pointsto.SizeFunction
	// Buffers each instruction reads.
	uses map[*hlo.Instruction][]*pointsto.Buffer
	// Remaining not-yet-scheduled readers of each buffer.
	counts map[*pointsto.Buffer]int
	// Instructions already scheduled.
	scheduled map[*hlo.Instruction]bool
}

// ListSchedule produces a sequence for the given computation using a greedy
// list-scheduling heuristic which, among all instructions whose dependencies
// are satisfied, repeatedly picks the one freeing the most bytes (breaking
// ties towards more users, then towards the earlier-discovered instruction).
func ListSchedule(computation *hlo.Computation, analysis *pointsto.Analysis,
	size pointsto.SizeFunction) ([]*hlo.Instruction, error) {
	//
	uses, err := bufferUses(computation, analysis)
	if err != nil {
		return nil, err
	}
	//
	counts, err := unscheduledUseCounts(computation, analysis, uses)
	if err != nil {
		return nil, err
	}
	//
	scheduler := &listScheduler{
		computation: computation,
		analysis:    analysis,
		size:        size,
		uses:        uses,
		counts:      counts,
		scheduled:   make(map[*hlo.Instruction]bool),
	}
	//
	return scheduler.createSchedule()
}

// Determine the number of bytes freed if the given instruction were scheduled
// now: the total size of buffers it reads for the last time, less the size of
// the buffers it defines.  Exempt (parameter/constant) buffers contribute
// nothing either way.
func (p *listScheduler) bytesFreedIfScheduled(inst *hlo.Instruction) (int64, error) {
	var freed int64
	//
	for _, buffer := range p.uses[inst] {
		if buffer.Ignorable() {
			continue
		} else if p.counts[buffer] < 1 {
			return 0, fmt.Errorf("use count of %s underflowed scheduling %s",
				buffer, p.computation.Name())
		} else if p.counts[buffer] == 1 {
			// Last remaining use of this buffer.
			freed += p.size(buffer)
		}
	}
	//
	defined, err := p.analysis.BuffersDefinedBy(inst)
	if err != nil {
		return 0, err
	}
	//
	for _, buffer := range defined {
		if !buffer.Ignorable() {
			freed -= p.size(buffer)
		}
	}
	//
	return freed, nil
}

func (p *listScheduler) priorityOf(inst *hlo.Instruction) (priority, error) {
	freed, err := p.bytesFreedIfScheduled(inst)
	if err != nil {
		return priority{}, err
	}
	//
	return priority{freed, int64(inst.UserCount())}, nil
}

func (p *listScheduler) createSchedule() ([]*hlo.Instruction, error) {
	schedule := make([]*hlo.Instruction, 0, p.computation.Size())
	// Populate the ready list with instructions which depend on nothing.
	var ready []*hlo.Instruction
	//
	for _, inst := range p.computation.Instructions() {
		if inst.OperandCount() == 0 && len(inst.ControlPredecessors()) == 0 {
			ready = append(ready, inst)
		}
	}
	//
	for len(ready) > 0 {
		// Select the highest priority ready instruction.  The scan keeps the
		// first of equal candidates, making selection deterministic.
		best := 0
		//
		bestPriority, err := p.priorityOf(ready[0])
		if err != nil {
			return nil, err
		}
		//
		for i := 1; i < len(ready); i++ {
			candidate, err := p.priorityOf(ready[i])
			if err != nil {
				return nil, err
			}

			if candidate.greaterThan(bestPriority) {
				best = i
				bestPriority = candidate
			}
		}
		// Move the selected instruction onto the schedule.
		inst := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		schedule = append(schedule, inst)
		p.scheduled[inst] = true
		// Account for the buffers it consumed.
		for _, buffer := range p.uses[inst] {
			if p.counts[buffer] <= 0 {
				return nil, fmt.Errorf("use count of %s underflowed scheduling %s",
					buffer, p.computation.Name())
			}
			//
			p.counts[buffer]--
		}
		// Enqueue successors whose every dependency is now scheduled.
		for _, successor := range successorsOf(inst) {
			if p.isReady(successor) {
				ready = append(ready, successor)
			}
		}
	}
	// Every instruction must have been scheduled exactly once; anything else
	// indicates a malformed (e.g. cyclic) graph.
	if uint(len(schedule)) != p.computation.Size() {
		return nil, fmt.Errorf("list scheduler covered %d of %d instructions in %s",
			len(schedule), p.computation.Size(), p.computation.Name())
	}
	//
	return schedule, nil
}

// Check whether every dependency (data operand or control predecessor) of the
// given instruction has been scheduled.
func (p *listScheduler) isReady(inst *hlo.Instruction) bool {
	for _, operand := range inst.Operands() {
		if !p.scheduled[operand] {
			return false
		}
	}

	for _, pred := range inst.ControlPredecessors() {
		if !p.scheduled[pred] {
			return false
		}
	}
	//
	return true
}

// Determine the distinct successors (data users and control successors) of an
// instruction, in first-seen order.
func successorsOf(inst *hlo.Instruction) []*hlo.Instruction {
	var (
		successors []*hlo.Instruction
		seen       = make(map[*hlo.Instruction]bool)
	)
	//
	for _, user := range inst.Users() {
		if !seen[user] {
			seen[user] = true
			successors = append(successors, user)
		}
	}

	for _, successor := range inst.ControlSuccessors() {
		if !seen[successor] {
			seen[successor] = true
			successors = append(successors, successor)
		}
	}
	//
	return successors
}
