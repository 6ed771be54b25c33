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

// Package scheduling selects a total execution order for the instructions of
// each computation in a module, aiming to minimise peak memory usage.  Two
// heuristics (greedy list scheduling and a weighted depth-first post order)
// are run per computation, scored against a no-fragmentation heap
// simulation, and the cheaper sequence kept.  Scheduling either succeeds for
// every computation or fails outright; it never returns a partially
// scheduled module.
package scheduling

import (
	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/consensys/go-hlo/pkg/pointsto"
	"github.com/consensys/go-hlo/pkg/util"
	log "github.com/sirupsen/logrus"
)

// CreateMemoryMinimizingSequence schedules a single computation, running
// both heuristics and keeping whichever sequence simulates to the lower peak
// memory (preferring the list sequence on ties).
func CreateMemoryMinimizingSequence(computation *hlo.Computation, analysis *pointsto.Analysis,
	size pointsto.SizeFunction) ([]*hlo.Instruction, error) {
	//
	listSequence, err := ListSchedule(computation, analysis, size)
	if err != nil {
		return nil, err
	}
	//
	listMemory, err := MinimumMemoryForComputation(computation, listSequence, analysis, size)
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("min-memory list sequence for %s: %d bytes", computation.Name(), listMemory)
	//
	dfsSequence, err := DFSSchedule(computation, analysis, size)
	if err != nil {
		return nil, err
	}
	//
	dfsMemory, err := MinimumMemoryForComputation(computation, dfsSequence, analysis, size)
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("min-memory dfs sequence for %s: %d bytes", computation.Name(), dfsMemory)
	//
	if listMemory <= dfsMemory {
		log.Debugf("chose list sequence for %s: %d bytes", computation.Name(), listMemory)
		return listSequence, nil
	}
	//
	log.Debugf("chose dfs sequence for %s: %d bytes", computation.Name(), dfsMemory)
	//
	return dfsSequence, nil
}

// CreateMemoryMinimizingSchedule schedules every computation of a module
// independently, producing a complete schedule.
func CreateMemoryMinimizingSchedule(module *hlo.Module,
	size pointsto.SizeFunction) (*hlo.Schedule, error) {
	//
	stats := util.NewPerfStats()
	//
	analysis, err := pointsto.Run(module)
	if err != nil {
		return nil, err
	}
	//
	schedule := hlo.NewSchedule(module)
	//
	for _, computation := range module.Computations() {
		sequence, err := CreateMemoryMinimizingSequence(computation, analysis, size)
		if err != nil {
			return nil, err
		}
		//
		schedule.SetSequence(computation, sequence)
	}
	//
	stats.Log("memory minimising scheduling")
	//
	return schedule, nil
}
