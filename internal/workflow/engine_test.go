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

package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crim-ca/weaver-engine/internal/dispatch"
	"github.com/crim-ca/weaver-engine/internal/iodesc"
	"github.com/crim-ca/weaver-engine/internal/jq"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
)

func builtinPackage(id, script string, outputIDs ...string) *pkgloader.Package {
	outputs := make([]*iodesc.IODescription, len(outputIDs))
	for i, oid := range outputIDs {
		outputs[i] = &iodesc.IODescription{ID: oid, Kind: iodesc.KindLiteral}
	}
	return &pkgloader.Package{
		ID:      id,
		Kind:    pkgloader.KindApplication,
		Hints:   []pkgloader.ApplicationHint{{Kind: pkgloader.HintBuiltin, Script: script}},
		Inputs:  []*iodesc.IODescription{{ID: "x", Kind: iodesc.KindLiteral}},
		Outputs: outputs,
	}
}

func TestEngine_Run_LinearChainPropagatesOutputs(t *testing.T) {
	stepA := pkgloader.WorkflowStep{ID: "a", In: map[string]string{"x": "workflow.input1"}, Out: []string{"y"}}
	stepB := pkgloader.WorkflowStep{ID: "b", In: map[string]string{"x": "steps.a.outputs.y"}, Out: []string{"result"}}

	wf := &pkgloader.Package{
		ID:      "chain",
		Kind:    pkgloader.KindWorkflow,
		Steps:   []pkgloader.WorkflowStep{stepB, stepA},
		Outputs: []*iodesc.IODescription{{ID: "result", Kind: iodesc.KindLiteral}},
	}

	registry := dispatch.BuiltinRegistry{
		"double": func(ctx context.Context, inputs map[string]any, report dispatch.ProgressFunc) (dispatch.Result, error) {
			report(100, "done")
			return dispatch.Result{"y": fmt.Sprintf("%v-%v", inputs["x"], inputs["x"])}, nil
		},
		"finish": func(ctx context.Context, inputs map[string]any, report dispatch.ProgressFunc) (dispatch.Result, error) {
			return dispatch.Result{"result": fmt.Sprintf("final(%v)", inputs["x"])}, nil
		},
	}

	steps := StepPackages{
		"a": builtinPackage("a", "double", "y"),
		"b": builtinPackage("b", "finish", "result"),
	}

	e := &Engine{
		Dispatcher:  &dispatch.Dispatcher{Builtin: registry},
		JQ:          jq.NewExecutor(time.Second, 0),
		MaxParallel: 2,
	}

	var progressMu sync.Mutex
	var progressCalls int
	report := func(percent int, message string) {
		progressMu.Lock()
		progressCalls++
		progressMu.Unlock()
	}

	out, err := e.Run(context.Background(), "job-1", wf, steps, map[string]any{"input1": "v1"}, report)
	require.NoError(t, err)
	assert.Equal(t, "final(v1-v1)", out["result"])
	assert.Greater(t, progressCalls, 0)
}

func TestEngine_Run_IndependentStepsBothRun(t *testing.T) {
	stepA := pkgloader.WorkflowStep{ID: "a", In: map[string]string{"x": "workflow.input1"}, Out: []string{"y"}}
	stepB := pkgloader.WorkflowStep{ID: "b", In: map[string]string{"x": "workflow.input2"}, Out: []string{"z"}}

	wf := &pkgloader.Package{
		ID:    "fanout",
		Kind:  pkgloader.KindWorkflow,
		Steps: []pkgloader.WorkflowStep{stepA, stepB},
		Outputs: []*iodesc.IODescription{
			{ID: "y", Kind: iodesc.KindLiteral},
			{ID: "z", Kind: iodesc.KindLiteral},
		},
	}

	registry := dispatch.BuiltinRegistry{
		"echo": func(ctx context.Context, inputs map[string]any, report dispatch.ProgressFunc) (dispatch.Result, error) {
			return dispatch.Result{"y": inputs["x"], "z": inputs["x"]}, nil
		},
	}

	steps := StepPackages{
		"a": builtinPackage("a", "echo", "y"),
		"b": builtinPackage("b", "echo", "z"),
	}

	e := &Engine{
		Dispatcher:  &dispatch.Dispatcher{Builtin: registry},
		JQ:          jq.NewExecutor(time.Second, 0),
		MaxParallel: 4,
	}

	out, err := e.Run(context.Background(), "job-2", wf, steps, map[string]any{"input1": "v1", "input2": "v2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", out["y"])
	assert.Equal(t, "v2", out["z"])
}

func TestEngine_Run_StepFailurePropagates(t *testing.T) {
	stepA := pkgloader.WorkflowStep{ID: "a", In: map[string]string{"x": "workflow.input1"}, Out: []string{"y"}}

	wf := &pkgloader.Package{
		ID:      "failing",
		Kind:    pkgloader.KindWorkflow,
		Steps:   []pkgloader.WorkflowStep{stepA},
		Outputs: []*iodesc.IODescription{{ID: "y", Kind: iodesc.KindLiteral}},
	}

	registry := dispatch.BuiltinRegistry{
		"boom": func(ctx context.Context, inputs map[string]any, report dispatch.ProgressFunc) (dispatch.Result, error) {
			return nil, fmt.Errorf("boom")
		},
	}

	steps := StepPackages{"a": builtinPackage("a", "boom", "y")}

	e := &Engine{
		Dispatcher:  &dispatch.Dispatcher{Builtin: registry},
		JQ:          jq.NewExecutor(time.Second, 0),
		MaxParallel: 1,
	}

	_, err := e.Run(context.Background(), "job-3", wf, steps, nil, nil)
	require.Error(t, err)
}

func TestEngine_Run_MissingStepPackageErrors(t *testing.T) {
	stepA := pkgloader.WorkflowStep{ID: "a", In: map[string]string{"x": "workflow.input1"}}
	wf := &pkgloader.Package{ID: "missing", Kind: pkgloader.KindWorkflow, Steps: []pkgloader.WorkflowStep{stepA}}

	e := &Engine{
		Dispatcher:  &dispatch.Dispatcher{},
		JQ:          jq.NewExecutor(time.Second, 0),
		MaxParallel: 1,
	}

	_, err := e.Run(context.Background(), "job-4", wf, StepPackages{}, nil, nil)
	require.Error(t, err)
}
