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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crim-ca/weaver-engine/internal/deploy"
	"github.com/crim-ca/weaver-engine/internal/engine"
	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/registry"
)

// newRunCommand deploys a package and executes it against the given
// inputs, polling until the job reaches a terminal state, then prints
// the final status, outputs, and log trail.
func newRunCommand(mode *string) *cobra.Command {
	var (
		processID  string
		visibility string
		inputs     []string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <package-file>",
		Short: "Deploy a package and execute it once, waiting for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(*mode)
			if err != nil {
				return err
			}

			parsedInputs, err := parseInputs(inputs)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if _, err := e.Deploy(ctx, deploy.Request{
				ProcessID:     processID,
				Visibility:    registry.Visibility(visibility),
				ExecutionUnit: []any{args[0]},
			}); err != nil {
				return fmt.Errorf("deploy: %w", err)
			}

			snap, err := e.Execute(ctx, engine.ExecuteRequest{
				ProcessID: processID,
				Inputs:    parsedInputs,
			})
			if err != nil {
				return fmt.Errorf("execute: %w", err)
			}

			final, err := awaitTerminal(ctx, e, snap.ID)
			if err != nil {
				return err
			}
			return printJSON(final)
		},
	}

	cmd.Flags().StringVar(&processID, "id", "", "process identifier to deploy under (required)")
	cmd.Flags().StringVar(&visibility, "visibility", string(registry.VisibilityPrivate), "public or private")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "input as key=value, repeatable")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the job to finish")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func parseInputs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --input %q: expected key=value", pair)
		}
		out[k] = v
	}
	return out, nil
}

// awaitTerminal polls GetJob at a fixed interval until the job reaches
// a terminal state or ctx is done, since Execute runs the job to
// completion on its own goroutine rather than blocking the caller.
func awaitTerminal(ctx context.Context, e *engine.Engine, jobID string) (*job.Snapshot, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		snap, err := e.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if snap.Status.IsTerminal() {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
