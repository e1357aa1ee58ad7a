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
	"fmt"

	"github.com/crim-ca/weaver-engine/internal/iodesc"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

var validClasses = map[string]Class{
	"CommandLineTool": ClassCommandLineTool,
	"ExpressionTool":  ClassExpressionTool,
	"Workflow":        ClassWorkflow,
}

// BuildPackage validates and converts a raw CWL-ish document into a
// Package, without resolving any workflow sub-packages it declares.
// It is exported for collaborators that synthesize a package document
// in memory rather than fetching one — internal/wps1import builds the
// synthetic CommandLineTool document §4.6 describes and hands it here
// rather than duplicating buildPackage's validation.
func BuildPackage(raw map[string]any) (*Package, error) {
	return buildPackage(raw)
}

// buildPackage validates and converts a normalized-enough raw document
// into a Package. It does not resolve workflow sub-packages; that is
// resolve.go's job, since it needs the Loader to recurse.
func buildPackage(raw map[string]any) (*Package, error) {
	classRaw, _ := raw["class"].(string)
	class, ok := validClasses[classRaw]
	if !ok {
		return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported or missing class %q", classRaw)}
	}

	pkg := &Package{
		Kind:  classKind(class),
		Class: class,
		raw:   raw,
	}
	if id, ok := raw["id"].(string); ok {
		pkg.ID = id
	} else if id, ok := raw["identifier"].(string); ok {
		pkg.ID = id
	}

	inputs, err := buildIODescriptions(raw["inputs"])
	if err != nil {
		return nil, err
	}
	pkg.Inputs = inputs

	outputs, err := buildIODescriptions(raw["outputs"])
	if err != nil {
		return nil, err
	}
	pkg.Outputs = outputs

	if pkg.Kind == KindApplication {
		pkg.Hints = parseHints(raw)
		pkg.BaseCommand = parseBaseCommand(raw["baseCommand"])
		pkg.ExitCode = ExitCodePolicy{
			SuccessCodes:       parseIntList(raw["successCodes"]),
			TemporaryFailCodes: parseIntList(raw["temporaryFailCodes"]),
			PermanentFailCodes: parseIntList(raw["permanentFailCodes"]),
		}
	}

	if pkg.Kind == KindWorkflow {
		steps, err := parseSteps(raw["steps"])
		if err != nil {
			return nil, err
		}
		pkg.stepSources = steps
	}

	return pkg, nil
}

// buildIODescriptions accepts either the list form (each entry already
// carrying its own "identifier") or the map form (keyed by id, value
// is the rest of the description) that CWL-ish documents use
// interchangeably for inputs/outputs.
func buildIODescriptions(raw any) ([]*iodesc.IODescription, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]*iodesc.IODescription, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, &wperrors.PackageTypeError{Reason: "input/output list entries must be objects"}
			}
			d, err := iodesc.FromJSON(m)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	case map[string]any:
		out := make([]*iodesc.IODescription, 0, len(v))
		for id, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, &wperrors.PackageTypeError{FieldID: id, Reason: "input/output map entries must be objects"}
			}
			if _, hasID := m["identifier"]; !hasID {
				if _, hasID := m["id"]; !hasID {
					// copy to avoid mutating the caller's document
					withID := make(map[string]any, len(m)+1)
					for k, val := range m {
						withID[k] = val
					}
					withID["identifier"] = id
					m = withID
				}
			}
			d, err := iodesc.FromJSON(m)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	default:
		return nil, &wperrors.PackageTypeError{Reason: "inputs/outputs must be a list or a map"}
	}
}

// parseBaseCommand accepts either a single string or a list of
// strings/numbers, the two shapes a CWL-ish document uses for
// baseCommand.
func parseBaseCommand(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}

// parseIntList accepts a list of ints/floats, the shape exit-code
// policy lists take in a CWL-ish document.
func parseIntList(raw any) []int {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case int:
			out = append(out, n)
		case int64:
			out = append(out, int(n))
		case float64:
			out = append(out, int(n))
		}
	}
	return out
}

// parseSteps extracts a workflow's step list without yet resolving
// each step's "run" reference.
func parseSteps(raw any) ([]stepSource, error) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, &wperrors.PackageRegistrationError{Reason: "workflow package has no steps"}
		}
		return nil, &wperrors.PackageTypeError{Reason: "steps must be a list"}
	}

	steps := make([]stepSource, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &wperrors.PackageTypeError{Reason: "step entries must be objects"}
		}
		id, _ := m["id"].(string)
		if id == "" {
			return nil, &wperrors.PackageRegistrationError{Reason: "workflow step is missing an id"}
		}
		step := stepSource{ID: id, RunRef: m["run"]}
		if in, ok := m["in"].(map[string]any); ok {
			step.In = make(map[string]string, len(in))
			for k, v := range in {
				if s, ok := v.(string); ok {
					step.In[k] = s
				}
			}
		}
		if out, ok := m["out"].([]any); ok {
			for _, o := range out {
				if s, ok := o.(string); ok {
					step.Out = append(step.Out, s)
				}
			}
		}
		steps = append(steps, step)
	}
	return steps, nil
}
