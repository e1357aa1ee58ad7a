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

package errors

import "fmt"

// InvalidIdentifierError reports an identifier that fails slug grammar.
type InvalidIdentifierError struct {
	Value  string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Value, e.Reason)
}

// StatusHint returns the HTTP status a host router should translate this to.
func (e *InvalidIdentifierError) StatusHint() int { return 400 }

// PackageNotFoundError reports a missing application package reference,
// either a sub-package of a workflow or the top-level deploy reference.
type PackageNotFoundError struct {
	Reference string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package not found: %s", e.Reference)
}

func (e *PackageNotFoundError) StatusHint() int { return 404 }

// PackageRegistrationError reports a deploy-time package document that
// could not be parsed or does not satisfy the allowed class/extension set.
type PackageRegistrationError struct {
	Reference string
	Reason    string
	Cause     error
}

func (e *PackageRegistrationError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("package registration failed for %s: %s", e.Reference, e.Reason)
	}
	return fmt.Sprintf("package registration failed: %s", e.Reason)
}

func (e *PackageRegistrationError) Unwrap() error { return e.Cause }

func (e *PackageRegistrationError) StatusHint() int { return 422 }

// PackageTypeError reports an I/O type inconsistency found while
// normalizing or elevating a package's input/output descriptions.
type PackageTypeError struct {
	FieldID string
	Reason  string
}

func (e *PackageTypeError) Error() string {
	if e.FieldID != "" {
		return fmt.Sprintf("package type error on %s: %s", e.FieldID, e.Reason)
	}
	return fmt.Sprintf("package type error: %s", e.Reason)
}

func (e *PackageTypeError) StatusHint() int { return 422 }

// ProcessNotFoundError reports a lookup against a process id that does
// not exist in the registry.
type ProcessNotFoundError struct {
	ProcessID string
}

func (e *ProcessNotFoundError) Error() string {
	return fmt.Sprintf("process not found: %s", e.ProcessID)
}

func (e *ProcessNotFoundError) StatusHint() int { return 404 }

// ProcessNotAccessibleError reports a visibility-denied access to a
// private process by a non-owner caller.
type ProcessNotAccessibleError struct {
	ProcessID string
}

func (e *ProcessNotAccessibleError) Error() string {
	return fmt.Sprintf("process not accessible: %s", e.ProcessID)
}

func (e *ProcessNotAccessibleError) StatusHint() int { return 403 }

// ProcessRegistrationError reports a deploy of a process id that already
// exists in the registry without overwrite permission.
type ProcessRegistrationError struct {
	ProcessID string
	Reason    string
}

func (e *ProcessRegistrationError) Error() string {
	return fmt.Sprintf("process registration failed for %s: %s", e.ProcessID, e.Reason)
}

func (e *ProcessRegistrationError) StatusHint() int { return 409 }

// JobNotFoundError reports a lookup against a job id that does not
// exist in the tracker.
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

func (e *JobNotFoundError) StatusHint() int { return 404 }

// ServiceNotFoundError reports a lookup against a provider/service id
// that does not exist in the registry.
type ServiceNotFoundError struct {
	ServiceID string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service not found: %s", e.ServiceID)
}

func (e *ServiceNotFoundError) StatusHint() int { return 404 }

// ServiceNotAccessibleError reports a visibility-denied access to a
// private service/provider by a non-owner caller.
type ServiceNotAccessibleError struct {
	ServiceID string
}

func (e *ServiceNotAccessibleError) Error() string {
	return fmt.Sprintf("service not accessible: %s", e.ServiceID)
}

func (e *ServiceNotAccessibleError) StatusHint() int { return 403 }

// PackageExecutionError reports a runtime failure encountered while
// executing a deployed package. The engine records this as a job
// exception and transitions the job to failed; the status endpoint
// itself still returns 200 since the job record was read successfully.
type PackageExecutionError struct {
	ProcessID string
	Locator   string
	Reason    string
	Permanent bool
	Cause     error
}

func (e *PackageExecutionError) Error() string {
	return fmt.Sprintf("execution of %s failed: %s", e.ProcessID, e.Reason)
}

func (e *PackageExecutionError) Unwrap() error { return e.Cause }

func (e *PackageExecutionError) StatusHint() int { return 200 }

// CommunicationFailureError reports a remote provider that stayed
// unreachable after the transient-failure retry budget was exhausted.
type CommunicationFailureError struct {
	Provider string
	Attempts int
	Cause    error
}

func (e *CommunicationFailureError) Error() string {
	return fmt.Sprintf("communication with %s failed after %d attempts", e.Provider, e.Attempts)
}

func (e *CommunicationFailureError) Unwrap() error { return e.Cause }

func (e *CommunicationFailureError) StatusHint() int { return 200 }

// Code returns the canonical error-envelope code spec.md §7 associates
// with each domain error, for a host router to surface without
// re-deriving the mapping itself.
func Code(err error) string {
	switch err.(type) {
	case *InvalidIdentifierError:
		return "InvalidIdentifier"
	case *PackageNotFoundError:
		return "PackageNotFound"
	case *PackageRegistrationError:
		return "PackageRegistrationError"
	case *PackageTypeError:
		return "PackageTypeError"
	case *ProcessNotFoundError:
		return "ProcessNotFound"
	case *ProcessNotAccessibleError:
		return "ProcessNotAccessible"
	case *ProcessRegistrationError:
		return "ProcessRegistrationError"
	case *JobNotFoundError:
		return "JobNotFound"
	case *ServiceNotFoundError:
		return "ServiceNotFound"
	case *ServiceNotAccessibleError:
		return "ServiceNotAccessible"
	case *PackageExecutionError:
		return "PackageExecutionError"
	case *CommunicationFailureError:
		return "CommunicationFailure"
	default:
		return "InternalError"
	}
}
