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

// Package poller implements the fixed-schedule remote job status
// poller (spec.md §4.7): poll at 2s for the first five iterations,
// then 5s for five, 10s for five, 20s for five, settling into a 30s
// steady state thereafter. When the remote transport is unreachable it
// falls back to the shared output volume's status file, and a poll
// observing the owning job was dismissed after WPS-1 offers no cancel
// operation logs the execution as orphaned rather than erroring.
package poller

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/job/statusfile"
	"github.com/crim-ca/weaver-engine/internal/metrics"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// StatusReport is one remote job status observation, already mapped
// onto the engine's canonical job.State vocabulary.
type StatusReport struct {
	Status   job.State
	Progress int
	Message  string
	Outputs  map[string]any
	ErrCode  string
	ErrMsg   string
}

// StatusFetcher fetches and parses one remote job's status document.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, statusLocation string) (StatusReport, error)
}

// DefaultSchedule returns the wait-interval sequence (in seconds)
// spec.md §4.7 specifies before the poller settles into its 30s
// steady state: five iterations each at 2s, 5s, 10s, and 20s.
func DefaultSchedule() []int {
	var sched []int
	for _, step := range []int{2, 5, 10, 20} {
		for i := 0; i < 5; i++ {
			sched = append(sched, step)
		}
	}
	return sched
}

// Poller polls a single remote job's status location until it reaches
// a terminal canonical status.
type Poller struct {
	Fetcher     StatusFetcher
	Schedule    []int
	SteadyState int

	// LocalFallback is read when Fetcher.FetchStatus fails, for a
	// status-location URL that also resolves to a file on the shared
	// output volume.
	LocalFallback *statusfile.Store
}

// New builds a Poller. A nil/empty schedule uses DefaultSchedule; a
// non-positive steadyState defaults to 30 seconds.
func New(fetcher StatusFetcher, schedule []int, steadyState time.Duration, fallback *statusfile.Store) *Poller {
	if len(schedule) == 0 {
		schedule = DefaultSchedule()
	}
	steady := int(steadyState.Seconds())
	if steady <= 0 {
		steady = 30
	}
	return &Poller{Fetcher: fetcher, Schedule: schedule, SteadyState: steady, LocalFallback: fallback}
}

func (p *Poller) interval(iteration int) time.Duration {
	if iteration < len(p.Schedule) {
		return time.Duration(p.Schedule[iteration]) * time.Second
	}
	return time.Duration(p.SteadyState) * time.Second
}

// Run polls statusLocation until the report it gets back reaches a
// terminal canonical status, shouldStop reports true, or ctx is
// cancelled. onUpdate, when non-nil, is called with every report
// fetched, including non-terminal ones, so a caller can thread
// progress through to a job.Tracker or a ProgressFunc as it arrives.
func (p *Poller) Run(ctx context.Context, statusLocation string, shouldStop func() bool, onUpdate func(StatusReport)) (StatusReport, error) {
	for iteration := 0; ; iteration++ {
		if shouldStop != nil && shouldStop() {
			return StatusReport{Status: job.StateDismissed}, nil
		}

		report, err := p.fetch(ctx, statusLocation)
		if err != nil {
			return StatusReport{}, err
		}
		if onUpdate != nil {
			onUpdate(report)
		}
		if report.Status == job.StateSucceeded || report.Status == job.StateFailed {
			return report, nil
		}

		select {
		case <-ctx.Done():
			return StatusReport{}, ctx.Err()
		case <-time.After(p.interval(iteration)):
		}
	}
}

func (p *Poller) fetch(ctx context.Context, statusLocation string) (StatusReport, error) {
	report, err := p.Fetcher.FetchStatus(ctx, statusLocation)
	if err == nil {
		metrics.RecordPollIteration("ok")
		return report, nil
	}
	if p.LocalFallback == nil {
		metrics.RecordPollIteration("error")
		return StatusReport{}, err
	}

	id := strings.TrimSuffix(filepath.Base(statusLocation), filepath.Ext(statusLocation))
	snap, ferr := p.LocalFallback.Get(ctx, id)
	if ferr != nil {
		metrics.RecordPollIteration("error")
		return StatusReport{}, err
	}
	metrics.RecordPollIteration("transient_fallback")
	return StatusReport{
		Status:   snap.Status,
		Progress: snap.Progress,
		Message:  snap.Message,
		Outputs:  snap.Outputs,
		ErrCode:  snap.ErrorCode,
		ErrMsg:   snap.ErrorMsg,
	}, nil
}

// Poll drives Run against a live job.Tracker: every non-terminal
// report advances the job's progress, a dismissed job stops polling
// and logs the remote execution as orphaned (WPS-1 offers no cancel
// operation), and a terminal report transitions the job to
// succeeded/failed.
func (p *Poller) Poll(ctx context.Context, tracker *job.Tracker, jobID, statusLocation string) error {
	shouldStop := func() bool {
		snap, err := tracker.Get(ctx, jobID)
		return err == nil && snap.Status == job.StateDismissed
	}
	onUpdate := func(r StatusReport) {
		_ = tracker.Progress(jobID, r.Progress, r.Message)
	}

	report, err := p.Run(ctx, statusLocation, shouldStop, onUpdate)
	if err != nil {
		return err
	}

	switch report.Status {
	case job.StateDismissed:
		slog.Warn("orphaned remote execution: job dismissed, remote provider has no cancel operation",
			"job_id", jobID, "status_location", statusLocation)
		return nil
	case job.StateSucceeded:
		return tracker.Succeed(jobID, report.Outputs)
	case job.StateFailed:
		return tracker.Fail(jobID, &wperrors.PackageExecutionError{ProcessID: jobID, Reason: report.ErrMsg, Permanent: true})
	default:
		return nil
	}
}
