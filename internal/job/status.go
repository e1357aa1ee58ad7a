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

import "strings"

// FromOGC maps the OGC WPS status vocabulary (accepted/running/
// successful|succeeded/failed/dismissed) to the canonical State.
func FromOGC(s string) State {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accepted":
		return StateAccepted
	case "running":
		return StateRunning
	case "successful", "succeeded":
		return StateSucceeded
	case "failed":
		return StateFailed
	case "dismissed":
		return StateDismissed
	default:
		return StateRunning
	}
}

// ToOGC maps the canonical State to its OGC WPS status string.
func ToOGC(s State) string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateDismissed:
		return "dismissed"
	default:
		return "running"
	}
}

// FromPyWPSInt maps the integer status vocabulary PyWPS-backed remote
// providers report: 0 accepted, 1 started, 2 paused, 3 succeeded,
// 4 failed. Any other value is treated as still running, since a
// remote process reporting an unrecognized code is assumed to still be
// in flight rather than silently dropped.
func FromPyWPSInt(v int) State {
	switch v {
	case 0:
		return StateAccepted
	case 1, 2:
		return StateRunning
	case 3:
		return StateSucceeded
	case 4:
		return StateFailed
	default:
		return StateRunning
	}
}

// FromOWSLib maps the owslib.wps status vocabulary
// (ProcessAccepted/ProcessStarted/ProcessPaused/ProcessSucceeded/
// ProcessFailed) to the canonical State.
func FromOWSLib(s string) State {
	switch strings.TrimSpace(s) {
	case "ProcessAccepted":
		return StateAccepted
	case "ProcessStarted", "ProcessPaused":
		return StateRunning
	case "ProcessSucceeded":
		return StateSucceeded
	case "ProcessFailed":
		return StateFailed
	default:
		return StateRunning
	}
}
