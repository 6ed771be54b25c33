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

	"github.com/consensys/go-hlo/pkg/ordering"
	"github.com/consensys/go-hlo/pkg/pointsto"
	"github.com/consensys/go-hlo/pkg/scheduling"
	"github.com/spf13/cobra"
)

var orderingCmd = &cobra.Command{
	Use:   "ordering [flags] module_file",
	Short: "print execution-order relations of a module.",
	Long: `Print the dependency-based execution ordering of the given
	module, i.e. each instruction's strict predecessors; with
	--sequential, additionally compute a schedule and print the
	resulting total order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		module := readModuleFile(args[0])
		//
		fmt.Print(ordering.NewDependencyOrdering(module))
		//
		if GetFlag(cmd, "sequential") {
			schedule, err := scheduling.CreateMemoryMinimizingSchedule(module, pointsto.DefaultSize)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			//
			fmt.Print(ordering.NewSequentialOrdering(schedule))
		}
	},
}

func init() {
	rootCmd.AddCommand(orderingCmd)
	orderingCmd.Flags().Bool("sequential", false, "also print the scheduled total order")
}
