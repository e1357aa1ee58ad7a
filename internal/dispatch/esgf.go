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

package dispatch

import (
	"context"

	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/poller"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// ESGF percent milestones: a remote ESGF compute job reports these fixed
// checkpoints rather than a continuous percentage.
const (
	ESGFPercentPreparing   = 2
	ESGFPercentSending     = 3
	ESGFPercentComputeDone = 98
	ESGFPercentFinished    = 100
)

// ESGFRunner dispatches to a remote ESGF provider through the same
// Execute/GetStatus dialect RemoteRunner speaks, but reports the fixed
// milestone percentages an ESGF job is known to progress through instead
// of treating the provider's raw status percent as meaningful on its own.
type ESGFRunner struct {
	Remote *RemoteRunner
}

func (r *ESGFRunner) Run(ctx context.Context, pkg *pkgloader.Package, inputs map[string]any, progress ProgressFunc) (Result, error) {
	hint, err := SelectHint(pkg)
	if err != nil {
		return nil, err
	}

	reportPercent(progress, ESGFPercentPreparing, "Preparing execute request for remote ESGF provider.")
	reportPercent(progress, ESGFPercentSending, "Sending request.")

	statusLocation, err := r.Remote.execute(ctx, hint, inputs)
	if err != nil {
		return nil, err
	}

	onUpdate := func(s poller.StatusReport) {
		if s.Status == job.StateSucceeded || s.Status == job.StateFailed {
			return
		}
		percent := s.Progress
		if percent < ESGFPercentSending {
			percent = ESGFPercentSending
		}
		reportPercent(progress, percent, s.Message)
	}
	report, err := r.Remote.Poller.Run(ctx, statusLocation, nil, onUpdate)
	if err != nil {
		return nil, &wperrors.CommunicationFailureError{Provider: hint.Provider, Cause: err}
	}
	if report.Status == job.StateFailed {
		reportPercent(progress, ESGFPercentFinished, "Process failed.")
		return nil, &wperrors.PackageExecutionError{ProcessID: pkg.ID, Reason: report.ErrMsg, Permanent: true}
	}

	reportPercent(progress, ESGFPercentComputeDone, "Process successful.")
	reportPercent(progress, ESGFPercentFinished, "Download successful.")
	return report.Outputs, nil
}

func reportPercent(progress ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}
