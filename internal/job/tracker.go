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

package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	weaverlog "github.com/crim-ca/weaver-engine/internal/log"
	"github.com/crim-ca/weaver-engine/internal/metrics"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Store persists job snapshots. internal/job/memory and
// internal/job/statusfile both implement it.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context, filter ListFilter) ([]*Snapshot, error)
}

// ListFilter narrows Tracker.List / Store.List results.
type ListFilter struct {
	ProcessID string
	Status    State
	Limit     int
}

// Tracker owns the live Job map and fans every caller's update through
// each job's own channel, so a job's mutable state is only ever touched
// by its single apply-loop goroutine — the message-passing design
// spec.md §9 calls for in place of one lock shared across every writer.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	store Store
	log   *slog.Logger
}

// NewTracker builds a Tracker backed by store for persistence. log may
// be nil, in which case slog.Default() is used.
func NewTracker(store Store, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{jobs: make(map[string]*Job), store: store, log: log}
}

// Accept creates a new Job in the accepted state, starts its apply
// loop, and returns its initial snapshot.
func (t *Tracker) Accept(ctx context.Context, processID string, inputs map[string]any) (*Snapshot, error) {
	return t.AcceptRequest(ctx, Request{ProcessID: processID, Inputs: inputs})
}

// AcceptRequest is Accept's fuller form, carrying the submission-time
// fields (tags, access, execute mode, workflow flag) a caller has.
func (t *Tracker) AcceptRequest(ctx context.Context, req Request) (*Snapshot, error) {
	j := NewFromRequest(req)

	t.mu.Lock()
	t.jobs[j.ID] = j
	t.mu.Unlock()

	go t.run(j)

	snap := j.Snapshot()
	t.persist(ctx, snap)
	return snap, nil
}

// Start transitions a job from accepted to running.
func (t *Tracker) Start(id string) error {
	return t.transition(id, EventStart, nil, nil)
}

// Progress advances a job's progress/message without changing state.
// Progress is monotonic: an update carrying a lower value than the
// job's current progress leaves the progress unchanged (its message is
// still recorded), except the implicit reset to 0 a job gets when it
// is first accepted.
func (t *Tracker) Progress(id string, percent int, message string) error {
	j, err := t.find(id)
	if err != nil {
		return err
	}
	j.send(Update{Kind: UpdateProgress, Progress: percent, Message: message})
	return nil
}

// Succeed transitions a job to succeeded, recording its outputs.
func (t *Tracker) Succeed(id string, outputs map[string]any) error {
	return t.transition(id, EventSucceed, outputs, nil)
}

// Fail transitions a job to failed, recording the causing error.
func (t *Tracker) Fail(id string, cause error) error {
	return t.transition(id, EventFail, nil, cause)
}

// Dismiss transitions a job to dismissed (user-requested cancellation).
func (t *Tracker) Dismiss(id string) error {
	return t.transition(id, EventDismiss, nil, nil)
}

// Get returns a job's current snapshot, falling back to the store for
// a job this process didn't accept itself (e.g. after a restart).
func (t *Tracker) Get(ctx context.Context, id string) (*Snapshot, error) {
	if j, err := t.find(id); err == nil {
		return j.Snapshot(), nil
	}
	if t.store != nil {
		return t.store.Get(ctx, id)
	}
	return nil, &wperrors.JobNotFoundError{JobID: id}
}

// List returns snapshots of every live job matching filter.
func (t *Tracker) List(filter ListFilter) []*Snapshot {
	t.mu.RLock()
	jobs := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		jobs = append(jobs, j)
	}
	t.mu.RUnlock()

	out := make([]*Snapshot, 0, len(jobs))
	for _, j := range jobs {
		snap := j.Snapshot()
		if filter.ProcessID != "" && snap.ProcessID != filter.ProcessID {
			continue
		}
		if filter.Status != "" && snap.Status != filter.Status {
			continue
		}
		out = append(out, snap)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out
}

func (t *Tracker) find(id string) (*Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[id]
	if !ok {
		return nil, &wperrors.JobNotFoundError{JobID: id}
	}
	return j, nil
}

func (t *Tracker) transition(id, event string, outputs map[string]any, cause error) error {
	j, err := t.find(id)
	if err != nil {
		return err
	}
	j.send(Update{Kind: UpdateTransition, Event: event, Outputs: outputs, Err: cause})
	return nil
}

// run is the job's single apply-loop goroutine: it is the only code
// that mutates j's protected fields, and persists a snapshot after
// every update (best-effort — a store failure is logged, not fatal).
func (t *Tracker) run(j *Job) {
	defer close(j.done)
	for u := range j.updates {
		j.mu.Lock()
		terminal := t.apply(j, u)
		j.mu.Unlock()

		t.persist(context.Background(), j.Snapshot())
		if terminal {
			return
		}
	}
}

// apply mutates j according to u. Caller must hold j.mu.
func (t *Tracker) apply(j *Job, u Update) (terminal bool) {
	switch u.Kind {
	case UpdateProgress:
		if u.Progress > j.progress {
			j.progress = u.Progress
		}
		j.message = u.Message
		j.appendLog(u.Message)
		return false

	case UpdateTransition:
		to, err := applyTransition(j.status, u.Event)
		if err != nil {
			weaverlog.WithJobContext(t.log, j.ID, j.ProcessID).Warn("job transition rejected",
				weaverlog.String("event", u.Event), weaverlog.String("from", string(j.status)), weaverlog.Error(err))
			return false
		}
		now := time.Now()
		j.status = to
		switch to {
		case StateRunning:
			if j.startedAt == nil {
				j.startedAt = &now
			}
		case StateSucceeded:
			j.progress = MilestoneDone
			j.outputs = u.Outputs
			j.completedAt = &now
		case StateFailed:
			j.completedAt = &now
			if u.Err != nil {
				j.errorCode = wperrors.Code(u.Err)
				j.errorMsg = u.Err.Error()
				exc := Exception{Code: j.errorCode, Text: j.errorMsg}
				var execErr *wperrors.PackageExecutionError
				if errors.As(u.Err, &execErr) {
					exc.Locator = execErr.Locator
				}
				j.exceptions = append(j.exceptions, exc)
			}
		case StateDismissed:
			j.completedAt = &now
		}
		j.appendLog(transitionMessage(to, u.Err))
		if to.IsTerminal() {
			metrics.RecordJobTerminal(j.ProcessID, string(to))
		}
		return to.IsTerminal()

	default:
		t.log.Warn("unknown job update kind", "kind", u.Kind)
		return false
	}
}

func transitionMessage(to State, cause error) string {
	if to == StateFailed && cause != nil {
		return fmt.Sprintf("job failed: %v", cause)
	}
	return fmt.Sprintf("job %s", to)
}

func (t *Tracker) persist(ctx context.Context, snap *Snapshot) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, snap); err != nil {
		weaverlog.WithJobContext(t.log, snap.ID, snap.ProcessID).Warn("job snapshot persist failed", weaverlog.Error(err))
	}
}
