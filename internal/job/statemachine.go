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
	"fmt"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Events the job lifecycle accepts.
const (
	EventStart    = "start"
	EventSucceed  = "succeed"
	EventFail     = "fail"
	EventDismiss  = "dismiss"
)

// transition describes one allowed (From, Event) -> To move.
type transition struct {
	From State
	To   State
}

// transitions is the job lifecycle's full transition table: running
// started from accepted, succeeded reached only from running, failed
// and dismissed reachable from either non-terminal state (a job whose
// enqueue fails is failed straight from accepted).
var transitions = map[string][]transition{
	EventStart:   {{From: StateAccepted, To: StateRunning}},
	EventSucceed: {{From: StateRunning, To: StateSucceeded}},
	EventFail: {
		{From: StateAccepted, To: StateFailed},
		{From: StateRunning, To: StateFailed},
	},
	EventDismiss: {
		{From: StateAccepted, To: StateDismissed},
		{From: StateRunning, To: StateDismissed},
	},
}

// applyTransition moves the job's state for the given event, called
// only from the apply loop so no lock is needed for the read of
// j.status; the caller holds j.mu for the write.
func applyTransition(from State, event string) (State, error) {
	moves, ok := transitions[event]
	if !ok {
		return "", &wperrors.ValidationError{Field: "event", Message: fmt.Sprintf("unknown job event: %s", event)}
	}
	for _, t := range moves {
		if t.From == from {
			return t.To, nil
		}
	}
	return "", &wperrors.ValidationError{
		Field:      "status",
		Message:    fmt.Sprintf("job transition not allowed: from %s on event %s", from, event),
		Suggestion: "the job has already reached a terminal state or the event is out of order",
	}
}
