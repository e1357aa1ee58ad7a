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
	"testing"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTPStatus(t *testing.T) {
	assert.Equal(t, FailureTransient, ClassifyHTTPStatus(503))
	assert.Equal(t, FailureTransient, ClassifyHTTPStatus(408))
	assert.Equal(t, FailurePermanent, ClassifyHTTPStatus(400))
	assert.Equal(t, FailurePermanent, ClassifyHTTPStatus(500))
}

func TestClassifyExitCode(t *testing.T) {
	policy := pkgloader.ExitCodePolicy{TemporaryFailCodes: []int{75}}
	assert.Equal(t, FailureTransient, ClassifyExitCode(policy, 75))
	assert.Equal(t, FailurePermanent, ClassifyExitCode(policy, 1))
}
