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

// Package job implements the execution job record: its five-state
// lifecycle (accepted -> running -> succeeded/failed, plus the
// out-of-band dismissed transition), monotonic progress tracking, and
// the log trail a status poll or dispatch update appends to.
//
// A Job is mutated by exactly one goroutine — the apply loop started by
// Tracker.run — so every other caller only ever reads a Snapshot,
// mirroring the message-passing design spec.md §9 calls for in place of
// a single mutex guarding the whole record from many writers.
package job

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is one of the job lifecycle's five canonical states.
type State string

const (
	StateAccepted  State = "accepted"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateDismissed State = "dismissed"
)

var validStates = map[State]bool{
	StateAccepted:  true,
	StateRunning:   true,
	StateSucceeded: true,
	StateFailed:    true,
	StateDismissed: true,
}

// IsValid reports whether s is one of the five canonical states.
func (s State) IsValid() bool { return validStates[s] }

// IsTerminal reports whether no further transition can leave this state.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateDismissed
}

// LogEntry is one line of a job's status trail, formatted by statusfile
// as "{duration} {progress:3d}% {status:10} {message}".
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Progress  int       `json:"progress"`
	Status    State     `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// Exception is one {code, locator, text} entry of a failed job's
// exception list (spec.md §3).
type Exception struct {
	Code    string `json:"code"`
	Locator string `json:"locator,omitempty"`
	Text    string `json:"text"`
}

// Access is a job's (or process's) visibility.
type Access string

const (
	AccessPublic  Access = "public"
	AccessPrivate Access = "private"
)

// ExecuteMode is the submission mode requested for a job.
type ExecuteMode string

const (
	ExecuteSync  ExecuteMode = "sync"
	ExecuteAsync ExecuteMode = "async"
)

// Request carries the fields a caller supplies when accepting a new
// job, mirroring the submission-time fields of spec.md §3's Job model.
type Request struct {
	ProcessID         string
	ServiceID         string
	UserID            string
	Inputs            map[string]any
	Tags              []string
	Access            Access
	ExecuteMode       ExecuteMode
	IsWorkflow        bool
	NotificationEmail string
}

// Job is the mutable execution record for one process invocation.
type Job struct {
	ID                string
	ProcessID         string
	ServiceID         string
	UserID            string
	Inputs            map[string]any
	Tags              []string
	Access            Access
	ExecuteMode       ExecuteMode
	IsWorkflow        bool
	NotificationEmail string

	mu          sync.RWMutex
	status      State
	progress    int
	message     string
	outputs     map[string]any
	exceptions  []Exception
	errorCode   string
	errorMsg    string
	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
	logs        []LogEntry

	updates chan Update
	done    chan struct{}
}

// Snapshot is an immutable copy of a Job's externally-visible state, free
// of any aliasing into the Job's mutable fields.
type Snapshot struct {
	ID                string         `json:"id"`
	ProcessID         string         `json:"process_id"`
	ServiceID         string         `json:"service_id,omitempty"`
	UserID            string         `json:"user_id,omitempty"`
	Status            State          `json:"status"`
	Progress          int            `json:"progress"`
	Message           string         `json:"message,omitempty"`
	Inputs            map[string]any `json:"inputs,omitempty"`
	Outputs           map[string]any `json:"outputs,omitempty"`
	Exceptions        []Exception    `json:"exceptions,omitempty"`
	ErrorCode         string         `json:"error_code,omitempty"`
	ErrorMsg          string         `json:"error_message,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	Access            Access         `json:"access,omitempty"`
	ExecuteMode       ExecuteMode    `json:"execute_mode,omitempty"`
	IsWorkflow        bool           `json:"is_workflow,omitempty"`
	NotificationEmail string         `json:"notification_email,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	StartedAt         *time.Time     `json:"started_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	Logs              []LogEntry     `json:"logs,omitempty"`
}

// New creates a just-accepted Job for processID with the given
// submitted inputs. It does not start the apply loop; the Tracker does
// that when it accepts a job (via NewFromRequest). NewFromRequest
// accepts the fuller spec.md §3 Request shape (service, tags, access,
// workflow flag, ...) for callers that have it.
func New(processID string, inputs map[string]any) *Job {
	return NewFromRequest(Request{ProcessID: processID, Inputs: inputs})
}

// NewFromRequest creates a just-accepted Job from req.
func NewFromRequest(req Request) *Job {
	return newJob(uuid.New().String(), req)
}

func newJob(id string, req Request) *Job {
	access := req.Access
	if access == "" {
		access = AccessPrivate
	}
	mode := req.ExecuteMode
	if mode == "" {
		mode = ExecuteAsync
	}
	j := &Job{
		ID:                id,
		ProcessID:         req.ProcessID,
		ServiceID:         req.ServiceID,
		UserID:            req.UserID,
		Inputs:            req.Inputs,
		Tags:              req.Tags,
		Access:            access,
		ExecuteMode:       mode,
		IsWorkflow:        req.IsWorkflow,
		NotificationEmail: req.NotificationEmail,
		status:            StateAccepted,
		createdAt:         time.Now(),
		updates:           make(chan Update, 64),
		done:              make(chan struct{}),
	}
	return j
}

// Snapshot copies the job's current state under a read lock.
func (j *Job) Snapshot() *Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	logs := make([]LogEntry, len(j.logs))
	copy(logs, j.logs)

	var outputs map[string]any
	if j.outputs != nil {
		outputs = make(map[string]any, len(j.outputs))
		for k, v := range j.outputs {
			outputs[k] = v
		}
	}

	var exceptions []Exception
	if j.exceptions != nil {
		exceptions = append([]Exception(nil), j.exceptions...)
	}

	return &Snapshot{
		ID:                j.ID,
		ProcessID:         j.ProcessID,
		ServiceID:         j.ServiceID,
		UserID:            j.UserID,
		Status:            j.status,
		Progress:          j.progress,
		Message:           j.message,
		Inputs:            j.Inputs,
		Outputs:           outputs,
		Exceptions:        exceptions,
		ErrorCode:         j.errorCode,
		ErrorMsg:          j.errorMsg,
		Tags:              j.Tags,
		Access:            j.Access,
		ExecuteMode:       j.ExecuteMode,
		IsWorkflow:        j.IsWorkflow,
		NotificationEmail: j.NotificationEmail,
		CreatedAt:         j.createdAt,
		StartedAt:         j.startedAt,
		CompletedAt:       j.completedAt,
		Logs:              logs,
	}
}

// send pushes an update onto the job's channel. Safe for concurrent
// callers: only the apply loop (started by Tracker) ever reads it.
func (j *Job) send(u Update) {
	select {
	case j.updates <- u:
	case <-j.done:
	}
}

// appendLog records one trail entry, called only from the apply loop.
func (j *Job) appendLog(msg string) {
	j.logs = append(j.logs, LogEntry{
		Timestamp: time.Now(),
		Progress:  j.progress,
		Status:    j.status,
		Message:   msg,
	})
}
