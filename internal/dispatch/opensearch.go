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

	"github.com/crim-ca/weaver-engine/internal/iodesc"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// OpenSearchQuery is an EO-image input's area/time/collection query
// triple, resolved against a catalogue before dispatch (spec.md §4.4).
type OpenSearchQuery struct {
	AOI        string
	TOI        string
	Collection string
}

// OpenSearchResolver resolves one opensearch query to the list of file
// references its catalogue holds.
type OpenSearchResolver interface {
	Resolve(ctx context.Context, q OpenSearchQuery) ([]string, error)
}

// ResolveOpenSearchInputs replaces every input listed in opensearchIDs
// with the file references resolver.Resolve returns for its
// AOI/TOI/collection query, bounded by the input's declared MaxOccurs.
// submitted is not mutated; the returned map shares unrelated entries.
func ResolveOpenSearchInputs(ctx context.Context, pkg *pkgloader.Package, submitted map[string]any, opensearchIDs map[string]bool, resolver OpenSearchResolver) (map[string]any, error) {
	if resolver == nil || len(opensearchIDs) == 0 {
		return submitted, nil
	}

	out := make(map[string]any, len(submitted))
	for k, v := range submitted {
		out[k] = v
	}

	for _, d := range pkg.Inputs {
		if !opensearchIDs[d.ID] {
			continue
		}
		raw, ok := submitted[d.ID]
		if !ok {
			continue
		}
		q, err := parseOpenSearchQuery(raw)
		if err != nil {
			return nil, err
		}
		files, err := resolver.Resolve(ctx, q)
		if err != nil {
			return nil, &wperrors.PackageExecutionError{ProcessID: pkg.ID, Locator: d.ID, Reason: fmt.Sprintf("opensearch resolution failed: %v", err), Cause: err}
		}
		if d.MaxOccurs != iodesc.Unbounded && d.MaxOccurs > 0 && len(files) > d.MaxOccurs {
			files = files[:d.MaxOccurs]
		}

		locs := make([]any, 0, len(files))
		for _, f := range files {
			locs = append(locs, f)
		}
		if d.MaxOccurs == 1 {
			if len(locs) > 0 {
				out[d.ID] = locs[0]
			}
			continue
		}
		out[d.ID] = locs
	}
	return out, nil
}

func parseOpenSearchQuery(raw any) (OpenSearchQuery, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return OpenSearchQuery{}, &wperrors.PackageTypeError{Reason: "opensearch input must be an object with aoi/toi/collection"}
	}
	q := OpenSearchQuery{}
	if v, ok := m["aoi"].(string); ok {
		q.AOI = v
	}
	if v, ok := m["toi"].(string); ok {
		q.TOI = v
	}
	if v, ok := m["collection"].(string); ok {
		q.Collection = v
	}
	return q, nil
}
