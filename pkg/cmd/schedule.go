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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/consensys/go-hlo/pkg/pointsto"
	"github.com/consensys/go-hlo/pkg/scheduling"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [flags] module_file",
	Short: "compute a memory-minimising instruction schedule.",
	Long: `Compute an execution order for every computation of the given
	module, minimising simulated peak memory, and report the
	per-computation memory estimates.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		heuristic := GetString(cmd, "heuristic")
		module := readModuleFile(args[0])
		//
		schedule, err := computeSchedule(module, heuristic)
		if err == nil {
			err = schedule.Validate()
		}
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		printSchedule(module, schedule)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().String("heuristic", "auto",
		"scheduling heuristic to apply (auto|list|dfs)")
}

// Compute a schedule using the requested heuristic, where "auto" runs both
// and keeps the cheaper sequence per computation.
func computeSchedule(module *hlo.Module, heuristic string) (*hlo.Schedule, error) {
	if heuristic == "auto" {
		return scheduling.CreateMemoryMinimizingSchedule(module, pointsto.DefaultSize)
	}
	//
	analysis, err := pointsto.Run(module)
	if err != nil {
		return nil, err
	}
	//
	schedule := hlo.NewSchedule(module)
	//
	for _, computation := range module.Computations() {
		var sequence []*hlo.Instruction
		//
		switch heuristic {
		case "list":
			sequence, err = scheduling.ListSchedule(computation, analysis, pointsto.DefaultSize)
		case "dfs":
			sequence, err = scheduling.DFSSchedule(computation, analysis, pointsto.DefaultSize)
		default:
			err = fmt.Errorf("unknown heuristic %s", heuristic)
		}
		//
		if err != nil {
			return nil, err
		}
		//
		schedule.SetSequence(computation, sequence)
	}
	//
	return schedule, nil
}

// Print the chosen sequences along with per-computation and whole-module
// memory estimates.
func printSchedule(module *hlo.Module, schedule *hlo.Schedule) {
	var (
		analysis, err = pointsto.Run(module)
		rule          = strings.Repeat("-", ruleWidth())
	)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	for _, computation := range module.Computations() {
		memory, err := scheduling.MinimumMemoryForComputation(
			computation, schedule.Sequence(computation), analysis, pointsto.DefaultSize)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		fmt.Println(rule)
		fmt.Printf("computation %s (%d bytes peak)\n", computation.Name(), memory)
		fmt.Println(rule)
		//
		for _, inst := range schedule.Sequence(computation) {
			fmt.Printf("  %s\n", inst)
		}
	}
	//
	total, err := scheduling.MinimumMemoryForSchedule(schedule, pointsto.DefaultSize)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	fmt.Println(rule)
	fmt.Printf("module %s requires %d bytes (ignoring fragmentation)\n", module.Name(), total)
}
