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

// Package memory is an in-memory job.Store, used by the demo CLI and
// the test suite in place of a real persistence layer — no database
// driver exists anywhere in the retrieval pack for this concern.
package memory

import (
	"context"
	"sync"

	"github.com/crim-ca/weaver-engine/internal/job"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Store is an in-memory job.Store.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*job.Snapshot
}

// New builds an empty Store.
func New() *Store {
	return &Store{jobs: make(map[string]*job.Snapshot)}
}

// Save stores a copy of snap, keyed by its ID.
func (s *Store) Save(_ context.Context, snap *job.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.jobs[snap.ID] = &cp
	return nil
}

// Get returns the stored snapshot for id.
func (s *Store) Get(_ context.Context, id string) (*job.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.jobs[id]
	if !ok {
		return nil, &wperrors.JobNotFoundError{JobID: id}
	}
	cp := *snap
	return &cp, nil
}

// List returns every stored snapshot matching filter.
func (s *Store) List(_ context.Context, filter job.ListFilter) ([]*job.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*job.Snapshot, 0, len(s.jobs))
	for _, snap := range s.jobs {
		if filter.ProcessID != "" && snap.ProcessID != filter.ProcessID {
			continue
		}
		if filter.Status != "" && snap.Status != filter.Status {
			continue
		}
		cp := *snap
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}
