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

// The milestones a single-process job's progress moves through
// (spec.md §4.3): preparation/launch, package load, input conversion,
// the execute body itself, then output collection.
const (
	MilestonePrepLaunch     = 5
	MilestonePackageLoad    = 6
	MilestoneInputsConvert  = 10
	MilestoneExecuteBody    = 95
	MilestoneOutputsCollect = 99
	MilestoneDone           = 100
)

// StepProgress maps one workflow step's own 0-100 percent into the
// step's 10-95 sub-slice of the workflow job's overall progress
// (spec.md §4.5): 10 + (step_idx + p/100) * 85 / n_steps, in integer
// arithmetic to avoid floating point in a value callers compare for
// monotonicity.
func StepProgress(stepIdx, percent, nSteps int) int {
	if nSteps <= 0 {
		return MilestoneInputsConvert
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	p := MilestoneInputsConvert + (stepIdx*100+percent)*(MilestoneExecuteBody-MilestoneInputsConvert)/(100*nSteps)
	if p < MilestoneInputsConvert {
		p = MilestoneInputsConvert
	}
	if p > MilestoneExecuteBody {
		p = MilestoneExecuteBody
	}
	return p
}
