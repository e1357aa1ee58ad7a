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

// Package metrics exposes the engine's Prometheus instrumentation: job
// counts by terminal status, dispatch duration by backend kind, and
// status-poller iteration counts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weaver_jobs_total",
			Help: "Total jobs reaching a terminal status, by status and process id.",
		},
		[]string{"process_id", "status"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weaver_dispatch_duration_seconds",
			Help:    "Duration of a single backend dispatch call, by backend kind and outcome.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "outcome"},
	)

	pollIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weaver_poll_iterations_total",
			Help: "Total status-poller fetch iterations, by outcome.",
		},
		[]string{"outcome"},
	)

	activeJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weaver_active_jobs",
			Help: "Number of jobs currently accepted or running.",
		},
	)
)

// RecordJobTerminal increments the terminal job counter for processID
// reaching status (e.g. "succeeded", "failed", "dismissed").
func RecordJobTerminal(processID, status string) {
	jobsTotal.WithLabelValues(processID, status).Inc()
}

// ObserveDispatch records how long a backend's Run call took and
// whether it succeeded ("ok") or failed ("error").
func ObserveDispatch(backend string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	dispatchDuration.WithLabelValues(backend, outcome).Observe(d.Seconds())
}

// RecordPollIteration increments the poller iteration counter for one
// fetch attempt's outcome ("ok", "transient_fallback", "error").
func RecordPollIteration(outcome string) {
	pollIterations.WithLabelValues(outcome).Inc()
}

// SetActiveJobs reports the current count of accepted/running jobs.
func SetActiveJobs(n int) {
	activeJobs.Set(float64(n))
}
