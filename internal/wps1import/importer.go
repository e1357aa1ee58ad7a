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

// Package wps1import implements the remote-provider importer (spec.md
// §4.6): given a WPS-1 DescribeProcess response, it synthesizes a
// CommandLineTool application package carrying a RemoteWPS1 hint, so
// the rest of the engine can deploy and dispatch a remote WPS-1
// process the same way it handles a locally-packaged one.
package wps1import

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/crim-ca/weaver-engine/internal/iodesc"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/wps1xml"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Importer implements pkgloader.WPS1Importer for one remote WPS-1
// provider. A Loader holds a single Importer, set when the Loader is
// built, so every DescribeProcess reference it resolves is stamped
// against that one provider's host (§4.6 step 4).
type Importer struct {
	ProviderURL string
}

// NewImporter builds an Importer for the given provider base URL.
func NewImporter(providerURL string) *Importer {
	return &Importer{ProviderURL: providerURL}
}

// ImportFromXML parses a WPS-1 DescribeProcess response and builds the
// synthetic CommandLineTool package it describes.
func (imp *Importer) ImportFromXML(data []byte) (*pkgloader.Package, error) {
	var docs wps1xml.ProcessDescriptions
	if err := xml.Unmarshal(data, &docs); err != nil {
		return nil, &wperrors.PackageRegistrationError{Reason: fmt.Sprintf("invalid DescribeProcess response: %v", err)}
	}
	if len(docs.ProcessDescription) != 1 {
		return nil, &wperrors.PackageRegistrationError{Reason: fmt.Sprintf("expected exactly one ProcessDescription, got %d", len(docs.ProcessDescription))}
	}
	pd := docs.ProcessDescription[0]
	if pd.Identifier == "" {
		return nil, &wperrors.PackageRegistrationError{Reason: "DescribeProcess response is missing a process Identifier"}
	}

	inputs := make([]any, 0, len(pd.DataInputs.Input))
	for _, in := range pd.DataInputs.Input {
		desc, err := iodesc.FromRemoteWPS1Input(in)
		if err != nil {
			return nil, &wperrors.PackageRegistrationError{Reason: fmt.Sprintf("input %s: %v", in.Identifier, err)}
		}
		inputs = append(inputs, iodesc.ToJSON(desc))
	}

	outputs := make([]any, 0, len(pd.ProcessOutputs.Output))
	for _, out := range pd.ProcessOutputs.Output {
		desc, err := iodesc.FromRemoteWPS1Output(out)
		if err != nil {
			return nil, &wperrors.PackageRegistrationError{Reason: fmt.Sprintf("output %s: %v", out.Identifier, err)}
		}
		outputs = append(outputs, iodesc.ToJSON(desc))
	}

	stamped := imp.stampIdentifier(pd.Identifier)

	doc := map[string]any{
		"class":   "CommandLineTool",
		"id":      stamped,
		"inputs":  inputs,
		"outputs": outputs,
		"hints": []any{
			map[string]any{
				"class":    "RemoteWPS1",
				"provider": imp.ProviderURL,
				"process":  pd.Identifier,
			},
		},
	}

	pkg, err := pkgloader.BuildPackage(doc)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// stampIdentifier builds the "{provider_host}_{process_id}" identifier
// spec.md §4.6 step 4 requires, sanitizing the provider host into a
// slug-safe token.
func (imp *Importer) stampIdentifier(processID string) string {
	host := imp.providerHost()
	if host == "" {
		return processID
	}
	return fmt.Sprintf("%s_%s", host, processID)
}

func (imp *Importer) providerHost() string {
	u, err := url.Parse(imp.ProviderURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Hostname()
	host = strings.ReplaceAll(host, ".", "_")
	host = strings.ReplaceAll(host, "-", "_")
	return host
}
