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

package workflow

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/crim-ca/weaver-engine/internal/dispatch"
	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/jq"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// StepPackages maps a workflow step id to its already-loaded
// sub-package. A workflow package's Steps only name scratch-file
// locations (pkgloader.StepMap); the caller resolves each of those
// through a pkgloader.Loader before calling Run, since the engine
// itself only orchestrates dispatch and has no opinion on how a step's
// application package was obtained.
type StepPackages map[string]*pkgloader.Package

// Engine runs a Workflow-class package's steps to completion.
type Engine struct {
	// Dispatcher executes a single step's resolved application package.
	Dispatcher *dispatch.Dispatcher

	// JQ evaluates step input wiring expressions.
	JQ *jq.Executor

	// MaxParallel bounds how many steps in one dependency wave run
	// concurrently. Values below 1 are treated as 1.
	MaxParallel int
}

// Run executes every step of pkg.Steps in dependency order, waves of
// mutually-independent steps running up to MaxParallel at a time, and
// returns the workflow's declared outputs collected from whichever
// step produced each one.
func (e *Engine) Run(ctx context.Context, jobID string, pkg *pkgloader.Package, steps StepPackages, workflowInputs map[string]any, report dispatch.ProgressFunc) (map[string]any, error) {
	ordered, err := TopoSort(pkg.Steps)
	if err != nil {
		return nil, err
	}
	levels := levelize(ordered)

	wfCtx := Context{
		Workflow: workflowInputs,
		Steps:    map[string]map[string]any{},
	}
	var mu sync.Mutex

	nSteps := len(ordered)
	completed := 0

	for _, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.limit())

		for i, step := range level {
			stepIdx := completed + i
			step := step
			g.Go(func() error {
				stepPkg, ok := steps[step.ID]
				if !ok {
					return &wperrors.PackageNotFoundError{Reference: "step " + step.ID}
				}

				inputs, err := e.resolveStepInputs(gctx, step, wfCtx, &mu)
				if err != nil {
					return fmt.Errorf("step %s: %w", step.ID, err)
				}

				stepReport := func(percent int, message string) {
					if report != nil {
						report(job.StepProgress(stepIdx, percent, nSteps), fmt.Sprintf("%s: %s", step.ID, message))
					}
				}

				outputs, err := e.Dispatcher.Dispatch(gctx, jobID, stepPkg, inputs, stepReport)
				if err != nil {
					return &wperrors.PackageExecutionError{
						ProcessID: pkg.ID,
						Locator:   step.ID,
						Reason:    fmt.Sprintf("step %s failed: %v", step.ID, err),
						Permanent: true,
						Cause:     err,
					}
				}

				mu.Lock()
				wfCtx.Steps[step.ID] = outputs
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		completed += len(level)
	}

	return collectWorkflowOutputs(pkg, wfCtx), nil
}

func (e *Engine) limit() int {
	if e.MaxParallel < 1 {
		return 1
	}
	return e.MaxParallel
}

func (e *Engine) resolveStepInputs(ctx context.Context, step pkgloader.WorkflowStep, wfCtx Context, mu *sync.Mutex) (map[string]any, error) {
	inputs := make(map[string]any, len(step.In))
	for id, expr := range step.In {
		mu.Lock()
		snapshot := Context{Workflow: wfCtx.Workflow, Steps: cloneSteps(wfCtx.Steps)}
		mu.Unlock()

		v, err := Resolve(ctx, e.JQ, expr, snapshot)
		if err != nil {
			return nil, err
		}
		inputs[id] = v
	}
	return inputs, nil
}

func cloneSteps(steps map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(steps))
	for k, v := range steps {
		out[k] = v
	}
	return out
}

// collectWorkflowOutputs maps each of pkg's declared outputs onto
// whichever step produced an output of that id. A declared output not
// produced by any step is simply absent from the result.
func collectWorkflowOutputs(pkg *pkgloader.Package, wfCtx Context) map[string]any {
	result := make(map[string]any, len(pkg.Outputs))
	for _, out := range pkg.Outputs {
		for _, stepOutputs := range wfCtx.Steps {
			if v, ok := stepOutputs[out.ID]; ok {
				result[out.ID] = v
				break
			}
		}
	}
	return result
}
