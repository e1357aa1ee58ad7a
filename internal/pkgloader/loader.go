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

package pkgloader

import "net/http"

// WPS1Importer converts a WPS-1 DescribeProcess XML response into a
// synthetic application Package dispatching back to that provider. The
// Loader depends on this interface rather than the concrete importer
// package so that the two can be developed and tested independently;
// internal/wps1import provides the production implementation.
type WPS1Importer interface {
	ImportFromXML(data []byte) (*Package, error)
}

// Loader resolves package references, recursively co-locating workflow
// sub-packages under ScratchDir so the workflow step engine can treat
// them as local files.
type Loader struct {
	// HTTPClient fetches http(s) package references. Required only if
	// the engine is given such references; a nil client makes any
	// http(s) reference fail with a CommunicationFailureError.
	HTTPClient *http.Client

	// ScratchDir is the directory workflow sub-packages are written
	// into during recursive resolution.
	ScratchDir string

	// Importer handles WPS-1 DescribeProcess XML references. May be
	// nil if the engine never loads such references.
	Importer WPS1Importer
}

// NewLoader builds a Loader with the given collaborators.
func NewLoader(client *http.Client, scratchDir string, importer WPS1Importer) *Loader {
	return &Loader{HTTPClient: client, ScratchDir: scratchDir, Importer: importer}
}
