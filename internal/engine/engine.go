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
	"log/slog"
	"time"

	"github.com/crim-ca/weaver-engine/internal/deploy"
	"github.com/crim-ca/weaver-engine/internal/dispatch"
	"github.com/crim-ca/weaver-engine/internal/engineconfig"
	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/jq"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/registry"
	"github.com/crim-ca/weaver-engine/internal/workerpool"
	"github.com/crim-ca/weaver-engine/internal/workflow"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Engine composes the engine's collaborators into the operations a
// host process drives it through.
type Engine struct {
	Config     *engineconfig.EngineConfig
	Loader     *pkgloader.Loader
	Registry   registry.ProcessBackend
	Dispatcher *dispatch.Dispatcher
	Tracker    *job.Tracker
	Deployer   *deploy.Deployer
	Workflow   *workflow.Engine

	queue  *workerpool.MemoryQueue
	cancel context.CancelFunc
	log    *slog.Logger
}

// New wires an Engine from its already-constructed collaborators and
// starts cfg.MaxWorkers job workers pulling off the Tier-2 queue (§5):
// Execute enqueues an accepted job rather than spawning it directly, so
// the number of jobs actually running concurrently is bounded the same
// way regardless of how many Execute calls arrive at once. The JQ
// timeout and the workflow step engine's concurrency bound come from
// cfg; the JQ input-size limit is a fixed 1MiB.
func New(cfg *engineconfig.EngineConfig, reg registry.ProcessBackend, loader *pkgloader.Loader, dispatcher *dispatch.Dispatcher, tracker *job.Tracker, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		Config:     cfg,
		Loader:     loader,
		Registry:   reg,
		Dispatcher: dispatcher,
		Tracker:    tracker,
		Deployer: &deploy.Deployer{
			Loader: loader,
			Store:  reg,
			Mode:   cfg.Mode,
		},
		Workflow: &workflow.Engine{
			Dispatcher:  dispatcher,
			JQ:          jq.NewExecutor(cfg.Retry.ReadTimeout, 1<<20),
			// maxInputSize above is a 1MiB bound on a workflow's
			// resolved-document size, unrelated to cfg.Retry.
			MaxParallel: cfg.MaxParallelSteps,
		},
		queue:  workerpool.NewMemoryQueue(),
		cancel: cancel,
		log:    log,
	}

	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go e.workerLoop(ctx)
	}

	return e
}

// workerLoop is one of the engine's fixed pool of Tier-2 job workers:
// it pulls the next queued job and runs it to completion before
// picking up another, bounding how many jobs run at once to
// cfg.MaxWorkers regardless of how many were accepted.
func (e *Engine) workerLoop(ctx context.Context) {
	for {
		qj, err := e.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		e.runJob(context.WithoutCancel(ctx), qj.ID)
	}
}

// Close stops accepting new work onto the queue and signals every
// worker to exit once its current job (if any) finishes. Jobs already
// queued but not yet picked up are abandoned; callers that need a
// clean drain should stop calling Execute first.
func (e *Engine) Close() error {
	e.cancel()
	return e.queue.Close()
}

// enqueue hands an accepted job to the worker pool. Enqueue itself
// never blocks or fails on a healthy queue; ctx only bounds this call,
// not the job's eventual run.
func (e *Engine) enqueue(ctx context.Context, jobID string) error {
	return e.queue.Enqueue(ctx, &workerpool.Job{ID: jobID, CreatedAt: time.Now()})
}

// Deploy validates and persists a new process.
func (e *Engine) Deploy(ctx context.Context, req deploy.Request) (*registry.Process, error) {
	return e.Deployer.Deploy(ctx, req)
}

// Undeploy removes a deployed process.
func (e *Engine) Undeploy(ctx context.Context, processID string) error {
	return e.Deployer.Undeploy(ctx, processID)
}

// SetVisibility changes a deployed process's visibility.
func (e *Engine) SetVisibility(ctx context.Context, processID string, v registry.Visibility) error {
	return e.Deployer.SetVisibility(ctx, processID, v)
}

// DescribeProcess returns a process's full record, enforcing that a
// private process is only visible to its owner.
func (e *Engine) DescribeProcess(ctx context.Context, processID, callerID string) (*registry.Process, error) {
	proc, err := e.Registry.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(proc, callerID) {
		return nil, &wperrors.ProcessNotFoundError{ProcessID: processID}
	}
	return proc, nil
}

// ListProcesses lists every process visible to callerID: every public
// process plus callerID's own private ones.
func (e *Engine) ListProcesses(ctx context.Context, callerID string) ([]*registry.Process, error) {
	all, err := e.Registry.ListProcesses(ctx, registry.ProcessFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]*registry.Process, 0, len(all))
	for _, p := range all {
		if visibleTo(p, callerID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// visibleTo reports whether proc should be visible to callerID: public
// processes always are; a private one only to its owner. An empty
// callerID (no caller identity, e.g. the WPS-1 GetCapabilities surface)
// only ever sees public processes.
func visibleTo(proc *registry.Process, callerID string) bool {
	if proc.Visibility == registry.VisibilityPublic {
		return true
	}
	return callerID != "" && proc.OwnerID == callerID
}
