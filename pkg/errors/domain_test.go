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

package errors_test

import (
	"errors"
	"testing"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

func TestDomainErrors_StatusHintAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusHint int
		code       string
	}{
		{"invalid identifier", &wperrors.InvalidIdentifierError{Value: "a", Reason: "too short"}, 400, "InvalidIdentifier"},
		{"package not found", &wperrors.PackageNotFoundError{Reference: "does-not-exist"}, 404, "PackageNotFound"},
		{"package registration", &wperrors.PackageRegistrationError{Reference: "x.cwl", Reason: "bad yaml"}, 422, "PackageRegistrationError"},
		{"package type", &wperrors.PackageTypeError{FieldID: "msg", Reason: "mixed enum symbols"}, 422, "PackageTypeError"},
		{"process not found", &wperrors.ProcessNotFoundError{ProcessID: "stacker"}, 404, "ProcessNotFound"},
		{"process not accessible", &wperrors.ProcessNotAccessibleError{ProcessID: "stacker"}, 403, "ProcessNotAccessible"},
		{"process registration", &wperrors.ProcessRegistrationError{ProcessID: "stacker", Reason: "duplicate"}, 409, "ProcessRegistrationError"},
		{"job not found", &wperrors.JobNotFoundError{JobID: "j1"}, 404, "JobNotFound"},
		{"service not found", &wperrors.ServiceNotFoundError{ServiceID: "svc"}, 404, "ServiceNotFound"},
		{"service not accessible", &wperrors.ServiceNotAccessibleError{ServiceID: "svc"}, 403, "ServiceNotAccessible"},
		{"package execution", &wperrors.PackageExecutionError{ProcessID: "stacker", Reason: "permanentFail: exit 127"}, 200, "PackageExecutionError"},
		{"communication failure", &wperrors.CommunicationFailureError{Provider: "wps1", Attempts: 4}, 200, "CommunicationFailure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() == "" {
				t.Fatal("expected non-empty error message")
			}
			if got := wperrors.Code(tt.err); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}

			type statusHinter interface{ StatusHint() int }
			hinter, ok := tt.err.(statusHinter)
			if !ok {
				t.Fatal("error does not implement StatusHint()")
			}
			if got := hinter.StatusHint(); got != tt.statusHint {
				t.Errorf("StatusHint() = %d, want %d", got, tt.statusHint)
			}
		})
	}
}

func TestDomainErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	t.Run("PackageRegistrationError", func(t *testing.T) {
		err := &wperrors.PackageRegistrationError{Reference: "x.cwl", Reason: "bad", Cause: cause}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find wrapped cause")
		}
	})

	t.Run("PackageExecutionError", func(t *testing.T) {
		err := &wperrors.PackageExecutionError{ProcessID: "p", Reason: "bad", Cause: cause}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find wrapped cause")
		}
	})

	t.Run("CommunicationFailureError", func(t *testing.T) {
		err := &wperrors.CommunicationFailureError{Provider: "wps1", Attempts: 3, Cause: cause}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find wrapped cause")
		}
	})
}

func TestCode_UnknownErrorIsInternalError(t *testing.T) {
	if got := wperrors.Code(errors.New("plain")); got != "InternalError" {
		t.Errorf("Code() = %q, want %q", got, "InternalError")
	}
}
