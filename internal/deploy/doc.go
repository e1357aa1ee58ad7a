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

// Package deploy implements the Process Deployer: validates a deploy
// payload's process identifier, resolves its application package (and,
// for a workflow, every sub-package) through an internal/pkgloader
// Loader, merges deploy-supplied I/O metadata with the package-derived
// descriptions, rejects a workflow-class package outside EMS mode, and
// persists the result through a registry.ProcessBackend.
package deploy
