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
	"time"

	"github.com/crim-ca/weaver-engine/internal/metrics"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Dispatcher composes one Backend per application-execution hint kind
// and runs a single application-class package invocation end to end:
// opensearch resolution, input marshalling, backend invocation, output
// collection.
type Dispatcher struct {
	Local   Backend
	WPS1    Backend
	ESGF    Backend
	Builtin BuiltinRegistry

	OpenSearchResolver OpenSearchResolver
	OpenSearchInputIDs map[string]bool

	// OutputBaseURL rewrites a local run's file:// outputs onto
	// publicly-servable URLs; empty disables rewriting.
	OutputBaseURL string
}

// Dispatch executes pkg (a CommandLineTool or ExpressionTool package)
// against submitted inputs and returns its collected outputs.
func (d *Dispatcher) Dispatch(ctx context.Context, jobID string, pkg *pkgloader.Package, submitted map[string]any, report ProgressFunc) (map[string]any, error) {
	hint, err := SelectHint(pkg)
	if err != nil {
		return nil, err
	}

	resolved, err := ResolveOpenSearchInputs(ctx, pkg, submitted, d.OpenSearchInputIDs, d.OpenSearchResolver)
	if err != nil {
		return nil, err
	}

	marshalled, err := MarshalInputs(pkg, resolved)
	if err != nil {
		return nil, err
	}

	backend, err := d.backendFor(hint.Kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := backend.Run(ctx, pkg, marshalled, report)
	metrics.ObserveDispatch(string(hint.Kind), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return CollectOutputs(pkg, raw, jobID, d.OutputBaseURL), nil
}

func (d *Dispatcher) backendFor(kind pkgloader.HintKind) (Backend, error) {
	switch kind {
	case pkgloader.HintDocker:
		if d.Local == nil {
			return nil, &wperrors.PackageExecutionError{Reason: "no local backend configured"}
		}
		return d.Local, nil
	case pkgloader.HintRemoteWPS1:
		if d.WPS1 == nil {
			return nil, &wperrors.PackageExecutionError{Reason: "no WPS-1 backend configured"}
		}
		return d.WPS1, nil
	case pkgloader.HintRemoteESGF:
		if d.ESGF == nil {
			return nil, &wperrors.PackageExecutionError{Reason: "no ESGF backend configured"}
		}
		return d.ESGF, nil
	case pkgloader.HintBuiltin:
		if d.Builtin == nil {
			return nil, &wperrors.PackageExecutionError{Reason: "no builtin scripts registered"}
		}
		return d.Builtin, nil
	default:
		return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported application-execution hint kind %q", kind)}
	}
}
