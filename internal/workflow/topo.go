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
	"sort"
	"strings"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// TopoSort orders steps so every step appears after every step its
// inputs depend on, rejecting a workflow whose step graph contains a
// cycle. Ties are broken by step id so the ordering is deterministic.
func TopoSort(steps []pkgloader.WorkflowStep) ([]pkgloader.WorkflowStep, error) {
	byID := make(map[string]pkgloader.WorkflowStep, len(steps))
	deps := make(map[string][]string, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
		deps[s.ID] = stepDependencies(s)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(steps))
	var order []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return &wperrors.PackageRegistrationError{Reference: id, Reason: "workflow step graph contains a cycle"}
		}
		state[id] = visiting

		depIDs := append([]string(nil), deps[id]...)
		sort.Strings(depIDs)
		for _, d := range depIDs {
			if _, ok := byID[d]; !ok {
				return &wperrors.PackageNotFoundError{Reference: "step " + d}
			}
			if err := visit(d); err != nil {
				return err
			}
		}

		state[id] = done
		order = append(order, id)
		return nil
	}

	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	out := make([]pkgloader.WorkflowStep, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}

// stepDependencies returns the distinct step ids a step's input
// expressions reference via "steps.<step_id>.outputs.<output_id>".
func stepDependencies(s pkgloader.WorkflowStep) []string {
	seen := map[string]bool{}
	var deps []string
	for _, expr := range s.In {
		if !strings.HasPrefix(expr, "steps.") {
			continue
		}
		rest := strings.TrimPrefix(expr, "steps.")
		id := rest
		if idx := strings.Index(rest, "."); idx >= 0 {
			id = rest[:idx]
		}
		if id != "" && !seen[id] {
			seen[id] = true
			deps = append(deps, id)
		}
	}
	return deps
}

// levelize groups an already topologically-sorted step list into
// waves: every step in a level has every dependency in an earlier
// level, so a caller may run an entire level's steps concurrently.
func levelize(ordered []pkgloader.WorkflowStep) [][]pkgloader.WorkflowStep {
	levelOf := make(map[string]int, len(ordered))
	var levels [][]pkgloader.WorkflowStep

	for _, step := range ordered {
		lvl := 0
		for _, dep := range stepDependencies(step) {
			if d, ok := levelOf[dep]; ok && d+1 > lvl {
				lvl = d + 1
			}
		}
		levelOf[step.ID] = lvl
		for len(levels) <= lvl {
			levels = append(levels, nil)
		}
		levels[lvl] = append(levels[lvl], step)
	}
	return levels
}
