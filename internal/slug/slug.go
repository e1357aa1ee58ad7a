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

// Package slug implements the identifier grammar shared by processes,
// providers, and I/O field identifiers: a leading alphanumeric, an
// optional alphanumeric/underscore/dash body, a trailing alphanumeric,
// minimum length 3, no embedded double-dash.
package slug

import (
	"regexp"
	"strings"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

var pattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]{1,}[A-Za-z0-9])?$`)

// Valid reports whether id satisfies the slug grammar: matches the
// pattern, is at least 3 characters, and carries no embedded "--".
func Valid(id string) bool {
	if len(id) < 3 {
		return false
	}
	if strings.Contains(id, "--") {
		return false
	}
	return pattern.MatchString(id)
}

// Validate returns an *errors.InvalidIdentifierError describing why id
// fails the slug grammar, or nil if id is valid.
func Validate(id string) error {
	if len(id) < 3 {
		return &wperrors.InvalidIdentifierError{Value: id, Reason: "must be at least 3 characters"}
	}
	if strings.HasPrefix(id, "-") || strings.HasSuffix(id, "-") {
		return &wperrors.InvalidIdentifierError{Value: id, Reason: "must not start or end with a dash"}
	}
	if strings.Contains(id, "--") {
		return &wperrors.InvalidIdentifierError{Value: id, Reason: "must not contain an embedded double-dash"}
	}
	if !pattern.MatchString(id) {
		return &wperrors.InvalidIdentifierError{Value: id, Reason: "must match " + pattern.String()}
	}
	return nil
}

// sanitizeChar replaces any rune outside [A-Za-z0-9_-] with an underscore.
func sanitizeChar(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		return r
	default:
		return '_'
	}
}

// Sanitize rewrites id in lenient mode: every character outside the
// slug alphabet becomes "_". The result is not guaranteed to satisfy
// Valid (e.g. it may still be too short, or retain an embedded "--"
// that the caller introduced); callers that need a guaranteed-valid
// slug should check Valid(Sanitize(id)) and fall back if it fails.
func Sanitize(id string) string {
	return strings.Map(sanitizeChar, id)
}
