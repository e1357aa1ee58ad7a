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

// UpdateKind discriminates the kind of change an Update carries.
type UpdateKind string

const (
	// UpdateProgress advances progress/message without changing state.
	UpdateProgress UpdateKind = "progress"
	// UpdateTransition fires a lifecycle event (see statemachine.go).
	UpdateTransition UpdateKind = "transition"
)

// Update is the single message type sent on a Job's channel. Every
// caller — the dispatcher, the workflow step engine, the status poller —
// communicates a change this way instead of taking the job's lock
// directly.
type Update struct {
	Kind UpdateKind

	// Progress/Message apply to UpdateProgress.
	Progress int
	Message  string

	// Event/Outputs/Err apply to UpdateTransition.
	Event   string
	Outputs map[string]any
	Err     error
}
