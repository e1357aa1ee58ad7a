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

package poller

import (
	"context"
	"testing"
	"time"

	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchedule(t *testing.T) {
	sched := DefaultSchedule()
	require.Len(t, sched, 20)
	assert.Equal(t, 2, sched[0])
	assert.Equal(t, 5, sched[5])
	assert.Equal(t, 10, sched[10])
	assert.Equal(t, 20, sched[15])
}

type sequenceFetcher struct {
	reports []StatusReport
	calls   int
}

func (f *sequenceFetcher) FetchStatus(context.Context, string) (StatusReport, error) {
	r := f.reports[f.calls]
	if f.calls < len(f.reports)-1 {
		f.calls++
	}
	return r, nil
}

func TestPoller_RunStopsAtTerminalReport(t *testing.T) {
	fetcher := &sequenceFetcher{reports: []StatusReport{
		{Status: job.StateRunning, Progress: 10},
		{Status: job.StateRunning, Progress: 50},
		{Status: job.StateSucceeded, Progress: 100, Outputs: map[string]any{"out": "file:///tmp/a.tif"}},
	}}
	p := New(fetcher, []int{0, 0, 0}, time.Second, nil)

	var updates []StatusReport
	report, err := p.Run(context.Background(), "https://example.com/status.xml", nil, func(r StatusReport) {
		updates = append(updates, r)
	})
	require.NoError(t, err)
	assert.Equal(t, job.StateSucceeded, report.Status)
	assert.Equal(t, "file:///tmp/a.tif", report.Outputs["out"])
	assert.Len(t, updates, 3)
}

func TestPoller_RunStopsWhenShouldStopReportsTrue(t *testing.T) {
	fetcher := &sequenceFetcher{reports: []StatusReport{{Status: job.StateRunning}}}
	p := New(fetcher, []int{0}, time.Second, nil)

	report, err := p.Run(context.Background(), "https://example.com/status.xml", func() bool { return true }, nil)
	require.NoError(t, err)
	assert.Equal(t, job.StateDismissed, report.Status)
}

type erroringFetcher struct{}

func (erroringFetcher) FetchStatus(context.Context, string) (StatusReport, error) {
	return StatusReport{}, assert.AnError
}

func TestPoller_RunPropagatesFetchErrorWithoutFallback(t *testing.T) {
	p := New(erroringFetcher{}, []int{0}, time.Second, nil)
	_, err := p.Run(context.Background(), "https://example.com/status.xml", nil, nil)
	assert.Error(t, err)
}
