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

// Package dispatch implements the execution dispatcher (spec.md §4.4):
// backend selection from a package's application-class hint, input
// marshalling (literal/bounding-box passthrough, complex-to-location
// objects, opensearch EO-input resolution), output collection
// (file://-to-URL rewriting, single-valued list unwrapping), and
// transient/permanent failure classification.
//
// A Dispatcher composes one Backend per application-class hint kind
// (Docker, RemoteWPS1, RemoteESGF, Builtin); internal/workflow selects
// the Workflow case itself and calls back into a Dispatcher per step.
package dispatch

import (
	"context"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
)

// Result is what one backend invocation produces: output id to either
// a location object {location, class, format} (complex) or a literal
// value, possibly list-valued.
type Result = map[string]any

// ProgressFunc lets a backend report intermediate progress while it
// runs, 0-100, which the caller maps into the job's own progress slice
// (job.MilestoneExecuteBody, or job.StepProgress inside a workflow).
type ProgressFunc func(percent int, message string)

// Backend executes one application-class package invocation to
// completion (or failure), blocking for as long as that takes — the
// local container run, or the remote HTTP round trip plus polling.
type Backend interface {
	Run(ctx context.Context, pkg *pkgloader.Package, inputs map[string]any, report ProgressFunc) (Result, error)
}
