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

// Package workflow implements the Workflow-class package step engine
// (spec.md §4.5/§9): a topological ordering of steps that rejects a
// cyclic step graph, per-step input resolution from the workflow's own
// submitted inputs or an upstream step's collected outputs, bounded
// concurrent execution of steps with no unresolved dependency on each
// other, and step_id-prefixed failure propagation.
//
// Step input expressions ("workflow.<input_id>" or
// "steps.<step_id>.outputs.<output_id>") are evaluated as jq path
// queries against a {workflow, steps} document via internal/jq, rather
// than a bespoke dotted-path parser, so the same expression language
// extends naturally if a future step ever needs a computed reference.
package workflow
