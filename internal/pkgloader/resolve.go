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

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load resolves reference into a fully-loaded Package, recursively
// resolving workflow sub-packages under l.ScratchDir. reference is
// either a literal document (map[string]any) or a string: a file
// path, an http(s) URL, or (transitively, via owsContext) a further
// reference.
func (l *Loader) Load(ctx context.Context, reference any) (*Package, StepMap, error) {
	pkg, err := l.resolveOne(ctx, reference)
	if err != nil {
		return nil, nil, err
	}

	if pkg.Kind != KindWorkflow {
		return pkg, StepMap{}, nil
	}

	steps, err := l.resolveSteps(ctx, pkg)
	if err != nil {
		return nil, nil, err
	}
	return pkg, steps, nil
}

// LoadSelf resolves reference into a Package without recursively
// resolving its workflow steps' sub-packages. It is for a caller that
// already has each step's sub-package available some other way (e.g.
// the engine re-loading a deployed workflow process whose steps were
// persisted as their own registry processes at deploy time) and only
// needs this package's own declared Class/Hints/Inputs/Outputs/Steps
// wiring, not a fresh worklist resolution of the step references
// themselves.
func (l *Loader) LoadSelf(ctx context.Context, reference any) (*Package, error) {
	pkg, err := l.resolveOne(ctx, reference)
	if err != nil {
		return nil, err
	}
	if pkg.Kind == KindWorkflow && pkg.Steps == nil {
		pkg.Steps = stepsFromSources(pkg.stepSources)
	}
	return pkg, nil
}

// stepsFromSources converts a workflow's raw step declarations into
// WorkflowStep records without resolving each step's "run" reference —
// suitable when the caller obtains each step's sub-package some other
// way and only needs this package's own id/wiring/out declarations.
func stepsFromSources(sources []stepSource) []WorkflowStep {
	steps := make([]WorkflowStep, 0, len(sources))
	for _, src := range sources {
		steps = append(steps, WorkflowStep{ID: src.ID, In: src.In, Out: src.Out})
	}
	return steps
}

// resolveOne fetches and parses a single document, without resolving
// any workflow steps it declares.
func (l *Loader) resolveOne(ctx context.Context, reference any) (*Package, error) {
	switch ref := reference.(type) {
	case map[string]any:
		return buildPackage(ref)
	case *Package:
		return ref, nil
	case string:
		return l.resolveString(ctx, ref)
	default:
		return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported package reference type %T", reference)}
	}
}

func (l *Loader) resolveString(ctx context.Context, ref string) (*Package, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.resolveURL(ctx, ref)
	}
	return l.resolveFile(ref)
}

func (l *Loader) resolveFile(path string) (*Package, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return nil, &wperrors.PackageRegistrationError{Reference: path, Reason: fmt.Sprintf("extension %q is not an allowed package document type", ext)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &wperrors.PackageNotFoundError{Reference: path}
		}
		return nil, &wperrors.PackageRegistrationError{Reference: path, Reason: "failed to read package document", Cause: err}
	}

	raw, err := parseDocument(data)
	if err != nil {
		return nil, &wperrors.PackageRegistrationError{Reference: path, Reason: "failed to parse package document", Cause: err}
	}
	return buildPackage(raw)
}

func (l *Loader) resolveURL(ctx context.Context, url string) (*Package, error) {
	if l.HTTPClient == nil {
		return nil, &wperrors.CommunicationFailureError{Provider: url, Attempts: 0}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &wperrors.PackageRegistrationError{Reference: url, Reason: "failed to build request", Cause: err}
	}

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, &wperrors.CommunicationFailureError{Provider: url, Attempts: 1, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &wperrors.PackageNotFoundError{Reference: url}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &wperrors.PackageRegistrationError{Reference: url, Reason: "failed to read response body", Cause: err}
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/xml"), strings.HasPrefix(contentType, "text/xml"):
		if l.Importer == nil {
			return nil, &wperrors.PackageRegistrationError{Reference: url, Reason: "no WPS-1 importer configured for an XML package reference"}
		}
		pkg, err := l.Importer.ImportFromXML(data)
		if err != nil {
			return nil, &wperrors.PackageRegistrationError{Reference: url, Reason: "failed to import WPS-1 DescribeProcess", Cause: err}
		}
		return pkg, nil
	default:
		return l.resolveJSONOrCWL(ctx, url, data)
	}
}

// resolveJSONOrCWL handles a fetched document that is either a process
// description whose owsContext.offering.content.href points further,
// or a literal package document (identified by the presence of
// cwlVersion or class).
func (l *Loader) resolveJSONOrCWL(ctx context.Context, ref string, data []byte) (*Package, error) {
	raw, err := parseDocument(data)
	if err != nil {
		return nil, &wperrors.PackageRegistrationError{Reference: ref, Reason: "failed to parse package document", Cause: err}
	}

	if href, ok := owsContextHref(raw); ok {
		return l.resolveString(ctx, href)
	}

	if _, hasCWL := raw["cwlVersion"]; !hasCWL {
		if _, hasClass := raw["class"]; !hasClass {
			return nil, &wperrors.PackageRegistrationError{Reference: ref, Reason: "document is neither an owsContext process description nor a literal package (missing cwlVersion/class)"}
		}
	}

	return buildPackage(raw)
}

// owsContextHref extracts owsContext.offering.content.href, if present.
func owsContextHref(raw map[string]any) (string, bool) {
	owsContext, ok := raw["owsContext"].(map[string]any)
	if !ok {
		return "", false
	}
	offering, ok := owsContext["offering"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := offering["content"].(map[string]any)
	if !ok {
		return "", false
	}
	href, ok := content["href"].(string)
	return href, ok
}

// parseDocument unmarshals bytes as YAML, a superset of JSON, so the
// same path handles .cwl/.yml/.yaml/.json/.job documents uniformly.
func parseDocument(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// resolveSteps recursively resolves every step of a workflow package,
// writing each resolved sub-package's document into l.ScratchDir and
// rewriting the step's Run reference to that local path.
func (l *Loader) resolveSteps(ctx context.Context, pkg *Package) (StepMap, error) {
	steps := make([]WorkflowStep, 0, len(pkg.stepSources))
	stepMap := make(StepMap, len(pkg.stepSources))

	for _, src := range pkg.stepSources {
		subPkg, err := l.resolveOne(ctx, src.RunRef)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", src.ID, err)
		}

		// Recurse into nested workflows before writing this step's
		// scratch file, so a sub-workflow's own steps are co-located
		// before the parent references it.
		if subPkg.Kind == KindWorkflow {
			if _, err := l.resolveSteps(ctx, subPkg); err != nil {
				return nil, fmt.Errorf("step %s: %w", src.ID, err)
			}
		}

		localPath, err := l.writeScratch(src.ID, subPkg)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", src.ID, err)
		}
		subPkg.SourcePath = localPath
		stepMap[src.ID] = localPath

		steps = append(steps, WorkflowStep{
			ID:  src.ID,
			Run: localPath,
			In:  src.In,
			Out: src.Out,
		})
	}

	pkg.Steps = steps
	return stepMap, nil
}

// writeScratch serializes a resolved sub-package's document as JSON
// into l.ScratchDir/<step_id>.json, returning the written path.
func (l *Loader) writeScratch(stepID string, pkg *Package) (string, error) {
	if l.ScratchDir == "" {
		return "", &wperrors.PackageRegistrationError{Reference: stepID, Reason: "no scratch directory configured for workflow sub-package resolution"}
	}
	if err := os.MkdirAll(l.ScratchDir, 0o755); err != nil {
		return "", &wperrors.PackageRegistrationError{Reference: stepID, Reason: "failed to create scratch directory", Cause: err}
	}

	data, err := json.Marshal(rawDocument(pkg))
	if err != nil {
		return "", &wperrors.PackageRegistrationError{Reference: stepID, Reason: "failed to serialize sub-package", Cause: err}
	}

	path := filepath.Join(l.ScratchDir, stepID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &wperrors.PackageRegistrationError{Reference: stepID, Reason: "failed to write sub-package to scratch directory", Cause: err}
	}
	return path, nil
}

// Document returns the raw document pkg was parsed from, or, for a
// package synthesized in memory (e.g. by the WPS-1 importer) with no
// backing document, a minimal equivalent reconstructed from its
// exported fields. Callers that need to persist or re-serve a package
// (e.g. the GET .../package endpoint) use this rather than reaching
// into package-private state.
func (pkg *Package) Document() map[string]any {
	return rawDocument(pkg)
}

// rawDocument returns the document a package was parsed from, or, for
// a package synthesized in memory (e.g. by the WPS-1 importer) with no
// backing document, reconstructs a minimal equivalent from its fields.
func rawDocument(pkg *Package) map[string]any {
	if pkg.raw != nil {
		return pkg.raw
	}

	doc := map[string]any{"class": string(pkg.Class)}
	if pkg.ID != "" {
		doc["id"] = pkg.ID
	}
	if len(pkg.Hints) > 0 {
		hints := make([]any, 0, len(pkg.Hints))
		for _, h := range pkg.Hints {
			hint := map[string]any{"class": string(h.Kind)}
			if h.Provider != "" {
				hint["provider"] = h.Provider
			}
			if h.Process != "" {
				hint["process"] = h.Process
			}
			if h.APIKey != "" {
				hint["api_key"] = h.APIKey
			}
			if h.Script != "" {
				hint["script"] = h.Script
			}
			hints = append(hints, hint)
		}
		doc["hints"] = hints
	}
	return doc
}
