// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crim-ca/weaver-engine/internal/deploy"
	"github.com/crim-ca/weaver-engine/internal/registry"
)

// newDeployCommand deploys a package document and prints the resulting
// process record. It exists mainly to exercise and demonstrate
// validation (slug rules, workflow-in-ADES rejection, unresolvable
// step references) without also running a job.
func newDeployCommand(mode *string) *cobra.Command {
	var (
		processID  string
		visibility string
		title      string
	)

	cmd := &cobra.Command{
		Use:   "deploy <package-file>",
		Short: "Deploy a CWL-ish application or workflow package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(*mode)
			if err != nil {
				return err
			}

			proc, err := e.Deploy(cmd.Context(), deploy.Request{
				ProcessID:     processID,
				Title:         title,
				Visibility:    registry.Visibility(visibility),
				ExecutionUnit: []any{args[0]},
			})
			if err != nil {
				return err
			}
			return printJSON(proc)
		},
	}

	cmd.Flags().StringVar(&processID, "id", "", "process identifier to deploy under (required)")
	cmd.Flags().StringVar(&title, "title", "", "process title")
	cmd.Flags().StringVar(&visibility, "visibility", string(registry.VisibilityPrivate), "public or private")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
