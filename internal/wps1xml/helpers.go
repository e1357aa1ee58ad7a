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

package wps1xml

import (
	"fmt"
	"strconv"
	"strings"
)

// owsDataTypeURIs maps the OWS data-type URI (or bare name) a WPS-1
// DescribeProcess response carries to the engine's internal literal
// data_type vocabulary (spec.md §4.6 step 2).
var owsDataTypeURIs = map[string]string{
	"integer":  "integer",
	"float":    "float",
	"double":   "float",
	"string":   "string",
	"boolean":  "boolean",
	"datetime": "string",
	"anyuri":   "string",
	"positiveinteger": "integer",
	"nonnegativeinteger": "integer",
}

// MapOWSDataType maps an OWS data-type reference/value to the internal
// literal data_type. Unrecognized types fall back to "string".
func MapOWSDataType(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if idx := strings.LastIndex(v, "#"); idx >= 0 {
		v = v[idx+1:]
	}
	if idx := strings.LastIndex(v, ":"); idx >= 0 {
		v = v[idx+1:]
	}
	if dt, ok := owsDataTypeURIs[v]; ok {
		return dt
	}
	return "string"
}

// NewAcceptedStatus builds the Status element for a just-accepted job.
func NewAcceptedStatus(creationTime string) Status {
	return Status{CreationTime: creationTime, ProcessAccepted: "job accepted"}
}

// NewRunningStatus builds the Status element for a running job at the
// given percent complete.
func NewRunningStatus(creationTime string, percent int, message string) Status {
	return Status{
		CreationTime: creationTime,
		ProcessStarted: &ProcessStarted{
			PercentCompleted: strconv.Itoa(percent),
			Value:            message,
		},
	}
}

// NewSucceededStatus builds the Status element for a succeeded job.
func NewSucceededStatus(creationTime string) Status {
	return Status{CreationTime: creationTime, ProcessSucceeded: "job succeeded"}
}

// NewFailedStatus builds the Status element for a failed job from its
// recorded exceptions.
func NewFailedStatus(creationTime string, excs []Exception) Status {
	return Status{
		CreationTime: creationTime,
		ProcessFailed: &ProcessFailed{
			ExceptionReport: ExceptionReport{Exception: excs},
		},
	}
}

// UnknownProcessException builds the OWS exception the WPS-1 surface
// returns for DescribeProcess/Execute against an unknown or
// visibility-denied process identifier (spec.md §6).
func UnknownProcessException(identifier string) Exception {
	return Exception{
		ExceptionCode: "InvalidParameterValue",
		Locator:       "identifier",
		ExceptionText: fmt.Sprintf("Unknown process %s", identifier),
	}
}

// AccessForbiddenException builds the OWS exception the WPS-1 surface
// returns for an Execute request against a private process.
func AccessForbiddenException(identifier string) Exception {
	return Exception{
		ExceptionCode: "AccessForbidden",
		Locator:       identifier,
		ExceptionText: fmt.Sprintf("process %s is not accessible", identifier),
	}
}
