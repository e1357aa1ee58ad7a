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

package engine

import (
	"context"
	"fmt"

	"github.com/crim-ca/weaver-engine/internal/dispatch"
	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/registry"
	"github.com/crim-ca/weaver-engine/internal/workflow"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// ExecuteRequest carries what a caller submits to run a deployed
// process (spec.md §6 `POST /processes/{id}/jobs`).
type ExecuteRequest struct {
	ProcessID   string
	CallerID    string
	Inputs      map[string]any
	Tags        []string
	Access      job.Access
	ExecuteMode job.ExecuteMode
}

// Execute accepts a job against a deployed process and hands it to the
// worker pool, returning the job's initial (accepted) snapshot
// immediately — the caller polls GetJob for progress.
func (e *Engine) Execute(ctx context.Context, req ExecuteRequest) (*job.Snapshot, error) {
	proc, err := e.Registry.GetProcess(ctx, req.ProcessID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(proc, req.CallerID) {
		return nil, &wperrors.ProcessNotFoundError{ProcessID: req.ProcessID}
	}

	snap, err := e.Tracker.AcceptRequest(ctx, job.Request{
		ProcessID:   req.ProcessID,
		UserID:      req.CallerID,
		Inputs:      req.Inputs,
		Tags:        req.Tags,
		Access:      req.Access,
		ExecuteMode: req.ExecuteMode,
		IsWorkflow:  proc.Type == registry.ProcessTypeWorkflow,
	})
	if err != nil {
		return nil, err
	}

	if err := e.enqueue(ctx, snap.ID); err != nil {
		_ = e.Tracker.Fail(snap.ID, err)
		return nil, err
	}

	return snap, nil
}

// runJob drives one accepted job to a terminal state, translating
// every collaborator error into a job failure rather than letting it
// escape unobserved — this worker goroutine is the job's only writer
// besides Dismiss.
func (e *Engine) runJob(ctx context.Context, jobID string) {
	if err := e.Tracker.Start(jobID); err != nil {
		e.log.Warn("job start rejected", "job_id", jobID, "error", err)
		return
	}

	snap, err := e.Tracker.Get(ctx, jobID)
	if err != nil {
		_ = e.Tracker.Fail(jobID, err)
		return
	}

	proc, err := e.Registry.GetProcess(ctx, snap.ProcessID)
	if err != nil {
		_ = e.Tracker.Fail(jobID, err)
		return
	}

	pkg, err := e.Loader.LoadSelf(ctx, proc.Package)
	if err != nil {
		_ = e.Tracker.Fail(jobID, err)
		return
	}
	_ = e.Tracker.Progress(jobID, job.MilestonePackageLoad, "package loaded")

	report := func(percent int, message string) {
		p := job.MilestoneInputsConvert + percent*(job.MilestoneExecuteBody-job.MilestoneInputsConvert)/100
		_ = e.Tracker.Progress(jobID, p, message)
	}

	outputs, err := e.dispatch(ctx, jobID, proc, pkg, snap.Inputs, report)
	if err != nil {
		_ = e.Tracker.Fail(jobID, err)
		return
	}

	_ = e.Tracker.Progress(jobID, job.MilestoneOutputsCollect, "outputs collected")
	_ = e.Tracker.Succeed(jobID, outputs)
}

func (e *Engine) dispatch(ctx context.Context, jobID string, proc *registry.Process, pkg *pkgloader.Package, inputs map[string]any, report dispatch.ProgressFunc) (map[string]any, error) {
	if pkg.Kind != pkgloader.KindWorkflow {
		return e.Dispatcher.Dispatch(ctx, jobID, pkg, inputs, report)
	}

	steps, err := e.loadStepPackages(ctx, proc)
	if err != nil {
		return nil, err
	}
	return e.Workflow.Run(ctx, jobID, pkg, steps, inputs, report)
}

// loadStepPackages resolves every workflow step's sub-package from
// the registry process it was persisted as at deploy time, rather
// than re-resolving the step's original run reference, since the
// original reference (a relative path, an inline document) may no
// longer be reachable or may have changed since deploy.
func (e *Engine) loadStepPackages(ctx context.Context, proc *registry.Process) (workflow.StepPackages, error) {
	steps := make(workflow.StepPackages, len(proc.Steps))
	for stepID, subProcessID := range proc.Steps {
		subProc, err := e.Registry.GetProcess(ctx, subProcessID)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", stepID, &wperrors.PackageNotFoundError{Reference: subProcessID})
		}
		subPkg, err := e.Loader.LoadSelf(ctx, subProc.Package)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", stepID, err)
		}
		steps[stepID] = subPkg
	}
	return steps, nil
}

// GetJob returns a job's current snapshot.
func (e *Engine) GetJob(ctx context.Context, jobID string) (*job.Snapshot, error) {
	return e.Tracker.Get(ctx, jobID)
}

// GetLogs returns a job's status-trail log entries.
func (e *Engine) GetLogs(ctx context.Context, jobID string) ([]job.LogEntry, error) {
	snap, err := e.Tracker.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return snap.Logs, nil
}

// GetExceptions returns a failed job's exception list.
func (e *Engine) GetExceptions(ctx context.Context, jobID string) ([]job.Exception, error) {
	snap, err := e.Tracker.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return snap.Exceptions, nil
}

// Dismiss cancels a job. A workflow step already in flight runs to
// completion (dispatch offers no mid-step cancel); the tracker simply
// stops accepting further progress once dismissed is recorded.
func (e *Engine) Dismiss(jobID string) error {
	return e.Tracker.Dismiss(jobID)
}
