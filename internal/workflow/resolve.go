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

	"github.com/crim-ca/weaver-engine/internal/jq"
)

// Context is the evaluation context a step's input expressions resolve
// against: the workflow's own submitted inputs, and every upstream
// step's collected outputs gathered so far.
type Context struct {
	Workflow map[string]any
	Steps    map[string]map[string]any
}

// Resolve evaluates one step input expression — "workflow.<input_id>"
// or "steps.<step_id>.outputs.<output_id>" — against wfCtx as a jq
// path query.
func Resolve(ctx context.Context, exec *jq.Executor, expr string, wfCtx Context) (any, error) {
	steps := make(map[string]any, len(wfCtx.Steps))
	for id, outputs := range wfCtx.Steps {
		steps[id] = map[string]any{"outputs": outputs}
	}
	data := map[string]any{"workflow": wfCtx.Workflow, "steps": steps}
	v, err := exec.Execute(ctx, "."+expr, data)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", expr, err)
	}
	return v, nil
}
