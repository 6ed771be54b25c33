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

	"github.com/consensys/go-hlo/pkg/callgraph"
	"github.com/spf13/cobra"
)

var callgraphCmd = &cobra.Command{
	Use:   "callgraph [flags] module_file",
	Short: "print the call graph of a module.",
	Long: `Print the call graph of the given module, including the resolved
	calling context (sequential, parallel or both) of every
	computation.`,
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
		graph, err := callgraph.Build(module)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		fmt.Print(graph)
	},
}

func init() {
	rootCmd.AddCommand(callgraphCmd)
}
