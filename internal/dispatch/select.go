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
	"fmt"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// SelectHint returns pkg's single application-execution hint, rejecting
// a package that declares none or more than one (spec.md §4.4).
func SelectHint(pkg *pkgloader.Package) (*pkgloader.ApplicationHint, error) {
	switch len(pkg.Hints) {
	case 0:
		return nil, &wperrors.PackageTypeError{FieldID: pkg.ID, Reason: "no application-execution hint declared"}
	case 1:
		return &pkg.Hints[0], nil
	default:
		return nil, &wperrors.PackageTypeError{FieldID: pkg.ID, Reason: fmt.Sprintf("%d application-execution hints declared, exactly one is required", len(pkg.Hints))}
	}
}
