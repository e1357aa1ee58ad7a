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

import "github.com/crim-ca/weaver-engine/internal/pkgloader"

// FailureClass distinguishes a transient (retryable) failure from a
// permanent one (spec.md §4.4).
type FailureClass string

const (
	FailureTransient FailureClass = "transient"
	FailurePermanent FailureClass = "permanent"
)

// ClassifyHTTPStatus classifies a remote provider's HTTP response
// status: 408/502/503/504 are transient, every other 4xx/5xx is
// permanent.
func ClassifyHTTPStatus(code int) FailureClass {
	switch code {
	case 408, 502, 503, 504:
		return FailureTransient
	default:
		return FailurePermanent
	}
}

// ClassifyExitCode classifies a local CommandLineTool's process exit
// code against its declared exit-code policy.
func ClassifyExitCode(policy pkgloader.ExitCodePolicy, code int) FailureClass {
	if policy.IsTemporary(code) {
		return FailureTransient
	}
	return FailurePermanent
}
