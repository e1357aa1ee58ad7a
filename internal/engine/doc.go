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

// Package engine is the composition root wiring package-load, deploy,
// dispatch, the workflow step engine, and the job tracker into the
// four operations a host process (HTTP router, CLI) actually calls:
// Deploy, Execute, job status/logs/exceptions, and Dismiss.
//
// Engine owns no I/O of its own beyond what its collaborators already
// do; it resolves a deployed process's stored package document back
// into a pkgloader.Package, enforces the visibility rule private
// processes are invisible to a non-owner, and hands each accepted job
// to a fixed pool of workers (bounded by EngineConfig.MaxWorkers) that
// run it to completion, translating every collaborator error into a
// job failure rather than letting it escape unobserved.
package engine
