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

package iodesc

// MergeWithPayload merges package-derived I/O descriptions with
// deploy-payload-supplied ones, per §4.1: the package wins on type
// (Kind/DataType) and Formats; the payload wins on every other field.
// Payload-only ids are discarded. Package-only ids survive unchanged.
func MergeWithPayload(pkgDerived, payload []*IODescription) []*IODescription {
	payloadByID := make(map[string]*IODescription, len(payload))
	for _, p := range payload {
		payloadByID[p.ID] = p
	}

	out := make([]*IODescription, 0, len(pkgDerived))
	for _, pkg := range pkgDerived {
		merged := pkg.Clone()

		if pl, ok := payloadByID[pkg.ID]; ok {
			merged.Title = pl.Title
			merged.Abstract = pl.Abstract
			merged.Keywords = pl.Keywords
			merged.Metadata = pl.Metadata
			merged.MinOccurs = pl.MinOccurs
			merged.MaxOccurs = pl.MaxOccurs
			merged.Default = pl.Default
			merged.AllowedValues = pl.AllowedValues
		}

		out = append(out, merged)
	}

	return out
}
