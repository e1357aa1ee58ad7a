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
	"testing"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPackage_CommandLineToolWithHint(t *testing.T) {
	raw := map[string]any{
		"class": "CommandLineTool",
		"id":    "echo",
		"inputs": []any{
			map[string]any{"identifier": "message", "type": "string"},
		},
		"outputs": []any{
			map[string]any{"identifier": "result", "type": "string"},
		},
		"hints": []any{
			map[string]any{"class": "Docker", "dockerPull": "alpine:3"},
		},
	}

	pkg, err := buildPackage(raw)
	require.NoError(t, err)
	assert.Equal(t, KindApplication, pkg.Kind)
	assert.Equal(t, ClassCommandLineTool, pkg.Class)
	assert.Equal(t, "echo", pkg.ID)
	require.Len(t, pkg.Inputs, 1)
	assert.Equal(t, "message", pkg.Inputs[0].ID)
	require.Len(t, pkg.Hints, 1)
	assert.Equal(t, HintDocker, pkg.Hints[0].Kind)
}

func TestBuildPackage_InputsAsMapInfersIdentifierFromKey(t *testing.T) {
	raw := map[string]any{
		"class": "CommandLineTool",
		"inputs": map[string]any{
			"message": map[string]any{"type": "string"},
		},
	}

	pkg, err := buildPackage(raw)
	require.NoError(t, err)
	require.Len(t, pkg.Inputs, 1)
	assert.Equal(t, "message", pkg.Inputs[0].ID)
}

func TestBuildPackage_RemoteWPS1Hint(t *testing.T) {
	raw := map[string]any{
		"class": "CommandLineTool",
		"hints": []any{
			map[string]any{"class": "RemoteWPS1", "provider": "https://provider.example/wps", "process": "hello"},
		},
	}

	pkg, err := buildPackage(raw)
	require.NoError(t, err)
	require.Len(t, pkg.Hints, 1)
	assert.Equal(t, HintRemoteWPS1, pkg.Hints[0].Kind)
	assert.Equal(t, "https://provider.example/wps", pkg.Hints[0].Provider)
	assert.Equal(t, "hello", pkg.Hints[0].Process)
}

func TestBuildPackage_MissingClassIsPackageTypeError(t *testing.T) {
	_, err := buildPackage(map[string]any{"id": "no-class"})
	require.Error(t, err)
	assert.IsType(t, &wperrors.PackageTypeError{}, err)
}

func TestBuildPackage_UnknownClassIsPackageTypeError(t *testing.T) {
	_, err := buildPackage(map[string]any{"class": "WidgetFactory"})
	require.Error(t, err)
	assert.IsType(t, &wperrors.PackageTypeError{}, err)
}

func TestBuildPackage_WorkflowParsesSteps(t *testing.T) {
	raw := map[string]any{
		"class": "Workflow",
		"steps": []any{
			map[string]any{
				"id":  "step1",
				"run": "./sub.cwl",
				"in":  map[string]any{"message": "workflow.greeting"},
				"out": []any{"result"},
			},
		},
	}

	pkg, err := buildPackage(raw)
	require.NoError(t, err)
	assert.Equal(t, KindWorkflow, pkg.Kind)
	require.Len(t, pkg.stepSources, 1)
	assert.Equal(t, "step1", pkg.stepSources[0].ID)
	assert.Equal(t, "./sub.cwl", pkg.stepSources[0].RunRef)
	assert.Equal(t, "workflow.greeting", pkg.stepSources[0].In["message"])
	assert.Equal(t, []string{"result"}, pkg.stepSources[0].Out)
}

func TestBuildPackage_WorkflowWithoutStepsIsPackageRegistrationError(t *testing.T) {
	_, err := buildPackage(map[string]any{"class": "Workflow"})
	assert.Error(t, err)
}
