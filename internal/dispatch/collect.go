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
	"path"
	"strings"

	"github.com/crim-ca/weaver-engine/internal/iodesc"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
)

// CollectOutputs reads a backend's raw result into the job's declared
// outputs: file:// locations are rewritten to URLs under outputBaseURL,
// and a single-valued output declared as a list is unwrapped to a
// scalar (spec.md §4.4).
func CollectOutputs(pkg *pkgloader.Package, result map[string]any, jobID, outputBaseURL string) map[string]any {
	out := make(map[string]any, len(pkg.Outputs))
	for _, d := range pkg.Outputs {
		raw, ok := result[d.ID]
		if !ok {
			continue
		}
		out[d.ID] = collectOne(d, raw, jobID, outputBaseURL)
	}
	return out
}

func collectOne(d *iodesc.IODescription, raw any, jobID, base string) any {
	list, ok := raw.([]any)
	if !ok {
		return collectScalar(d, raw, jobID, base)
	}
	items := make([]any, 0, len(list))
	for _, item := range list {
		items = append(items, collectScalar(d, item, jobID, base))
	}
	if d.MaxOccurs == 1 && len(items) == 1 {
		return items[0]
	}
	return items
}

func collectScalar(d *iodesc.IODescription, raw any, jobID, base string) any {
	switch val := raw.(type) {
	case map[string]any:
		loc, _ := val["location"].(string)
		return rewriteLocation(loc, jobID, base)
	case string:
		if d.Kind == iodesc.KindComplex {
			return rewriteLocation(val, jobID, base)
		}
		return val
	default:
		return raw
	}
}

// rewriteLocation maps a file:// URI produced by a local run onto a
// publicly-servable URL under base, named by the job that produced it;
// every other scheme (a remote backend's own http(s):// output
// reference) passes through unchanged.
func rewriteLocation(loc, jobID, base string) string {
	if base == "" || !strings.HasPrefix(loc, "file://") {
		return loc
	}
	name := path.Base(loc)
	return strings.TrimSuffix(base, "/") + "/" + jobID + "/" + name
}
