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

package deploy

import (
	"context"
	"fmt"

	"github.com/crim-ca/weaver-engine/internal/iodesc"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/registry"
	"github.com/crim-ca/weaver-engine/internal/slug"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Request is a deploy payload (spec.md §6 `POST /processes`), shaped
// after the OGC API - Processes Part 2 deploy body: exactly one of
// ExecutionUnit or OwsContext identifies the application package;
// Inputs/Outputs carry deploy-supplied I/O metadata to merge over the
// package-derived descriptions.
type Request struct {
	ProcessID  string
	Title      string
	Abstract   string
	Keywords   []string
	Metadata   map[string]any
	Visibility registry.Visibility
	Overwrite  bool

	// ExecutionUnit holds the package reference: a URL/path string, or
	// an inline package document (map[string]any). Only its first
	// element is consulted; the field is a slice to mirror the wire
	// payload's array shape.
	ExecutionUnit []any

	// OwsContext, if set, is an owsContext.offering.content document
	// pointing at the package. Mutually exclusive with ExecutionUnit.
	OwsContext map[string]any

	Inputs          []*iodesc.IODescription
	Outputs         []*iodesc.IODescription
	ExecuteEndpoint string
	OwnerID         string
}

// Deployer resolves and persists deploy requests.
type Deployer struct {
	Loader *pkgloader.Loader
	Store  registry.ProcessBackend

	// Mode is the engine's configured role ("ems" or "ades"); only
	// "ems" may deploy a Workflow-class package (spec.md §1).
	Mode string
}

// Deploy validates req, resolves its application package (recursing
// into sub-packages for a workflow, each persisted as its own process
// named "<ProcessID>_<step_id>"), and persists the resulting process
// record.
func (d *Deployer) Deploy(ctx context.Context, req Request) (*registry.Process, error) {
	if err := slug.Validate(req.ProcessID); err != nil {
		return nil, err
	}

	ref, err := packageReference(req)
	if err != nil {
		return nil, err
	}

	pkg, stepMap, err := d.Loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	if pkg.Kind == pkgloader.KindWorkflow && d.Mode != "ems" {
		return nil, &wperrors.PackageRegistrationError{
			Reference: req.ProcessID,
			Reason:    "workflow-class packages may only be deployed in EMS mode",
		}
	}

	vis := req.Visibility
	if vis == "" {
		vis = registry.VisibilityPrivate
	}

	steps := map[string]string{}
	for _, step := range pkg.Steps {
		path, ok := stepMap[step.ID]
		if !ok {
			continue
		}
		subID := req.ProcessID + "_" + step.ID
		if _, err := d.deploySubPackage(ctx, subID, path, vis, req.OwnerID); err != nil {
			return nil, fmt.Errorf("step %s: %w", step.ID, err)
		}
		steps[step.ID] = subID
	}

	title := req.Title
	if title == "" {
		title = pkg.ID
	}

	proc := &registry.Process{
		ID:              req.ProcessID,
		Title:           title,
		Abstract:        req.Abstract,
		Keywords:        req.Keywords,
		Metadata:        req.Metadata,
		Inputs:          encodeFields(iodesc.MergeWithPayload(pkg.Inputs, req.Inputs)),
		Outputs:         encodeFields(iodesc.MergeWithPayload(pkg.Outputs, req.Outputs)),
		Visibility:      vis,
		Type:            processTypeOf(pkg),
		Package:         pkg.Document(),
		ExecuteEndpoint: req.ExecuteEndpoint,
		OwnerID:         req.OwnerID,
		Steps:           steps,
	}

	if err := d.Store.SaveProcess(ctx, proc, req.Overwrite); err != nil {
		return nil, err
	}
	return proc, nil
}

// Undeploy removes a deployed process, rejecting an attempt to remove
// a builtin process (enforced again here since a registry backend's
// own rejection may vary, but the canonical error must come from this
// layer so callers see a consistent error type).
func (d *Deployer) Undeploy(ctx context.Context, processID string) error {
	proc, err := d.Store.GetProcess(ctx, processID)
	if err != nil {
		return err
	}
	if proc.IsBuiltin() {
		return &wperrors.ProcessNotAccessibleError{ProcessID: processID}
	}
	return d.Store.DeleteProcess(ctx, processID)
}

// SetVisibility changes a deployed process's visibility, rejecting an
// attempt on a builtin process.
func (d *Deployer) SetVisibility(ctx context.Context, processID string, v registry.Visibility) error {
	proc, err := d.Store.GetProcess(ctx, processID)
	if err != nil {
		return err
	}
	if proc.IsBuiltin() {
		return &wperrors.ProcessNotAccessibleError{ProcessID: processID}
	}
	return d.Store.SetVisibility(ctx, processID, v)
}

// deploySubPackage recursively resolves and persists one workflow
// step's sub-package, descending into a nested workflow the same way.
func (d *Deployer) deploySubPackage(ctx context.Context, processID, path string, vis registry.Visibility, ownerID string) (*registry.Process, error) {
	pkg, stepMap, err := d.Loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	steps := map[string]string{}
	for _, step := range pkg.Steps {
		subPath, ok := stepMap[step.ID]
		if !ok {
			continue
		}
		subID := processID + "_" + step.ID
		if _, err := d.deploySubPackage(ctx, subID, subPath, vis, ownerID); err != nil {
			return nil, err
		}
		steps[step.ID] = subID
	}

	proc := &registry.Process{
		ID:         processID,
		Title:      pkg.ID,
		Inputs:     encodeFields(pkg.Inputs),
		Outputs:    encodeFields(pkg.Outputs),
		Visibility: vis,
		Type:       processTypeOf(pkg),
		Package:    pkg.Document(),
		OwnerID:    ownerID,
		Steps:      steps,
	}

	if err := d.Store.SaveProcess(ctx, proc, true); err != nil {
		return nil, err
	}
	return proc, nil
}

func packageReference(req Request) (any, error) {
	hasUnit := len(req.ExecutionUnit) > 0
	hasContext := len(req.OwsContext) > 0

	if hasUnit && hasContext {
		return nil, &wperrors.PackageRegistrationError{
			Reference: req.ProcessID,
			Reason:    "deploy payload must not supply both executionUnit and owsContext",
		}
	}
	if !hasUnit && !hasContext {
		return nil, &wperrors.PackageRegistrationError{
			Reference: req.ProcessID,
			Reason:    "deploy payload must supply one of executionUnit or owsContext",
		}
	}

	if hasContext {
		return map[string]any{"owsContext": req.OwsContext}, nil
	}
	return req.ExecutionUnit[0], nil
}

func processTypeOf(pkg *pkgloader.Package) registry.ProcessType {
	if pkg.Kind == pkgloader.KindWorkflow {
		return registry.ProcessTypeWorkflow
	}
	for _, h := range pkg.Hints {
		switch h.Kind {
		case pkgloader.HintRemoteWPS1:
			return registry.ProcessTypeRemoteWPS
		case pkgloader.HintRemoteESGF:
			return registry.ProcessTypeRemoteESGF
		case pkgloader.HintBuiltin:
			return registry.ProcessTypeBuiltin
		}
	}
	return registry.ProcessTypeApplication
}

func encodeFields(descs []*iodesc.IODescription) []registry.IOField {
	out := make([]registry.IOField, 0, len(descs))
	for _, d := range descs {
		out = append(out, registry.IOField{
			ID:       d.ID,
			Title:    d.Title,
			Abstract: d.Abstract,
			Kind:     string(d.Kind),
			DataType: d.DataType,
			Encoded:  iodesc.ToJSON(d),
		})
	}
	return out
}
