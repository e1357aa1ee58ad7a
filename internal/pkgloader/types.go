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

// Package pkgloader resolves a process definition — a literal document,
// a path to one, a URL returning one, or a URL returning a WPS-1
// DescribeProcess response — into a loaded, validated Package that the
// deployer and dispatcher can act on, recursively resolving workflow
// sub-packages along the way.
package pkgloader

import "github.com/crim-ca/weaver-engine/internal/iodesc"

// PackageKind distinguishes a directly-executable application package
// from a workflow package whose steps are themselves packages.
type PackageKind string

const (
	KindApplication PackageKind = "application"
	KindWorkflow    PackageKind = "workflow"
)

// Class is the document's declared `class` field.
type Class string

const (
	ClassCommandLineTool Class = "CommandLineTool"
	ClassExpressionTool  Class = "ExpressionTool"
	ClassWorkflow        Class = "Workflow"
)

// classKind maps a document class to the package kind the rest of the
// engine reasons about; CommandLineTool and ExpressionTool are both
// directly-executable application packages.
func classKind(c Class) PackageKind {
	if c == ClassWorkflow {
		return KindWorkflow
	}
	return KindApplication
}

// allowedExtensions is the set of file extensions §4.2 permits for a
// path-like package reference.
var allowedExtensions = map[string]bool{
	".cwl":  true,
	".yml":  true,
	".yaml": true,
	".json": true,
	".job":  true,
}

// HintKind identifies one of the four application-execution hints a
// CommandLineTool/ExpressionTool package may carry.
type HintKind string

const (
	HintDocker     HintKind = "Docker"
	HintRemoteWPS1 HintKind = "RemoteWPS1"
	HintRemoteESGF HintKind = "RemoteESGF"
	HintBuiltin    HintKind = "Builtin"
)

// ApplicationHint is one hint or requirement entry attached to an
// application-class package, selecting how the dispatcher executes it.
type ApplicationHint struct {
	Kind HintKind

	// Provider is the remote base URL (RemoteWPS1, RemoteESGF).
	Provider string

	// Process is the remote process identifier (RemoteWPS1, RemoteESGF).
	Process string

	// APIKey authenticates against the remote provider (RemoteESGF only).
	APIKey string

	// Script names the local builtin script to invoke (Builtin only).
	Script string
}

// WorkflowStep is one step of a Workflow-class package: a reference to
// a sub-package (rewritten to a scratch-local filename once resolved)
// plus its input/output wiring expressions.
type WorkflowStep struct {
	// ID is the step's unique identifier within the workflow.
	ID string

	// Run is the path, under the loader's scratch directory, of the
	// step's resolved sub-package document, co-locating every step's
	// package on local disk. Load fills it in when it resolves the
	// workflow's steps; the reference the document declared (inline
	// literal, path, or URL) is not kept in this field.
	Run string

	// In maps the step's input names to source expressions, either
	// `workflow.<input_id>` or `steps.<step_id>.outputs.<output_id>`.
	In map[string]string

	// Out lists the output ids this step exposes downstream.
	Out []string
}

// ExitCodePolicy is a CommandLineTool's declared success/fail exit-code
// classification (spec.md §4.4). A nil/empty SuccessCodes means "0 is
// success and anything else is permanent failure", the spec's default.
type ExitCodePolicy struct {
	SuccessCodes        []int
	TemporaryFailCodes  []int
	PermanentFailCodes  []int
}

// IsSuccess reports whether code counts as success under p, applying
// the "0 succeeds, anything else fails" default when p declares
// nothing.
func (p ExitCodePolicy) IsSuccess(code int) bool {
	if len(p.SuccessCodes) == 0 && len(p.TemporaryFailCodes) == 0 && len(p.PermanentFailCodes) == 0 {
		return code == 0
	}
	if len(p.SuccessCodes) == 0 {
		return code == 0
	}
	for _, c := range p.SuccessCodes {
		if c == code {
			return true
		}
	}
	return false
}

// IsTemporary reports whether code is declared as a transient failure.
func (p ExitCodePolicy) IsTemporary(code int) bool {
	for _, c := range p.TemporaryFailCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Package is a loaded, validated process definition.
type Package struct {
	// ID is the process identifier declared by the document, if any.
	ID string

	Kind  PackageKind
	Class Class

	// BaseCommand is the CommandLineTool's declared command: a single
	// string becomes a one-element list, a list is kept whole. The
	// Docker/local-CLI backend runs its first element with the rest as
	// leading arguments.
	BaseCommand []string

	// ExitCodePolicy classifies a CommandLineTool's process exit code.
	ExitCode ExitCodePolicy

	// Hints holds every application-execution hint/requirement entry
	// found on an application-class package. The dispatcher (not this
	// package) rejects more than one being present at once.
	Hints []ApplicationHint

	Inputs  []*iodesc.IODescription
	Outputs []*iodesc.IODescription

	// Steps holds the workflow's steps, in declaration order, only
	// populated when Kind == KindWorkflow.
	Steps []WorkflowStep

	// SourcePath is the scratch-directory path this package's document
	// was written to when it was resolved as a workflow sub-package.
	// Empty for a top-level load.
	SourcePath string

	// raw is the normalized document this package was built from,
	// retained so a workflow step can be re-serialized into the
	// scratch directory without re-fetching it.
	raw map[string]any

	// stepSources holds each step's unresolved "run" reference
	// (literal inline document, path, or URL) between buildPackage
	// and the Loader resolving it into pkg.Steps.
	stepSources []stepSource
}

// stepSource is a workflow step before its sub-package reference has
// been resolved.
type stepSource struct {
	ID     string
	RunRef any
	In     map[string]string
	Out    []string
}

// StepMap records, for a loaded workflow package, the scratch-local
// filename each step's sub-package was written to.
type StepMap map[string]string
