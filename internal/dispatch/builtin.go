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
	"context"
	"fmt"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// BuiltinScript is a named local function the engine can invoke
// directly, without a subprocess, when a package's hint selects
// Builtin (spec.md §4.4).
type BuiltinScript func(ctx context.Context, inputs map[string]any, report ProgressFunc) (Result, error)

// BuiltinRegistry looks up a builtin script by name and is itself a
// Backend.
type BuiltinRegistry map[string]BuiltinScript

func (reg BuiltinRegistry) Run(ctx context.Context, pkg *pkgloader.Package, inputs map[string]any, report ProgressFunc) (Result, error) {
	hint, err := SelectHint(pkg)
	if err != nil {
		return nil, err
	}
	script, ok := reg[hint.Script]
	if !ok {
		return nil, &wperrors.PackageExecutionError{ProcessID: pkg.ID, Reason: fmt.Sprintf("permanentFail: unknown builtin script %q", hint.Script), Permanent: true}
	}
	return script(ctx, inputs, report)
}
