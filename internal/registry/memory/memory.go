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

// Package memory provides an in-memory registry backend, a reference
// implementation for tests and the demo CLI.
package memory

import (
	"context"
	"sync"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
	"github.com/crim-ca/weaver-engine/internal/registry"
)

// Compile-time interface assertions.
var (
	_ registry.ProcessStore   = (*ProcessBackend)(nil)
	_ registry.ProcessBackend = (*ProcessBackend)(nil)
	_ registry.ServiceBackend = (*ServiceBackend)(nil)
)

// ProcessBackend is an in-memory registry.ProcessBackend.
type ProcessBackend struct {
	mu        sync.RWMutex
	processes map[string]*registry.Process
}

// NewProcessBackend creates an empty in-memory process registry.
func NewProcessBackend() *ProcessBackend {
	return &ProcessBackend{processes: make(map[string]*registry.Process)}
}

func (b *ProcessBackend) GetProcess(ctx context.Context, id string) (*registry.Process, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.processes[id]
	if !ok {
		return nil, &wperrors.ProcessNotFoundError{ProcessID: id}
	}
	return cloneProcess(p), nil
}

func (b *ProcessBackend) SaveProcess(ctx context.Context, p *registry.Process, overwrite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.processes[p.ID]; ok {
		if !overwrite {
			return &wperrors.ProcessRegistrationError{ProcessID: p.ID, Reason: "process already exists"}
		}
		if existing.IsBuiltin() {
			return &wperrors.ProcessRegistrationError{ProcessID: p.ID, Reason: "builtin processes cannot be overwritten"}
		}
	}
	b.processes[p.ID] = cloneProcess(p)
	return nil
}

func (b *ProcessBackend) ListProcesses(ctx context.Context, filter registry.ProcessFilter) ([]*registry.Process, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*registry.Process, 0, len(b.processes))
	for _, p := range b.processes {
		if filter.Visibility != "" && p.Visibility != filter.Visibility {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		out = append(out, cloneProcess(p))
	}

	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else if filter.Offset >= len(out) {
		out = nil
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (b *ProcessBackend) DeleteProcess(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.processes[id]
	if !ok {
		return &wperrors.ProcessNotFoundError{ProcessID: id}
	}
	if p.IsBuiltin() {
		return &wperrors.ProcessNotAccessibleError{ProcessID: id}
	}
	delete(b.processes, id)
	return nil
}

func (b *ProcessBackend) GetVisibility(ctx context.Context, id string) (registry.Visibility, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.processes[id]
	if !ok {
		return "", &wperrors.ProcessNotFoundError{ProcessID: id}
	}
	return p.Visibility, nil
}

func (b *ProcessBackend) SetVisibility(ctx context.Context, id string, v registry.Visibility) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.processes[id]
	if !ok {
		return &wperrors.ProcessNotFoundError{ProcessID: id}
	}
	if p.IsBuiltin() {
		return &wperrors.ProcessNotAccessibleError{ProcessID: id}
	}
	p.Visibility = v
	return nil
}

func (b *ProcessBackend) Close() error { return nil }

func cloneProcess(p *registry.Process) *registry.Process {
	clone := *p
	clone.Keywords = append([]string(nil), p.Keywords...)
	clone.Inputs = append([]registry.IOField(nil), p.Inputs...)
	clone.Outputs = append([]registry.IOField(nil), p.Outputs...)
	if p.Metadata != nil {
		clone.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			clone.Metadata[k] = v
		}
	}
	if p.Steps != nil {
		clone.Steps = make(map[string]string, len(p.Steps))
		for k, v := range p.Steps {
			clone.Steps[k] = v
		}
	}
	return &clone
}

// ServiceBackend is an in-memory registry.ServiceBackend.
type ServiceBackend struct {
	mu       sync.RWMutex
	services map[string]*registry.Service
}

// NewServiceBackend creates an empty in-memory service registry.
func NewServiceBackend() *ServiceBackend {
	return &ServiceBackend{services: make(map[string]*registry.Service)}
}

func (b *ServiceBackend) GetService(ctx context.Context, name string) (*registry.Service, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.services[name]
	if !ok {
		return nil, &wperrors.ServiceNotFoundError{ServiceID: name}
	}
	clone := *s
	return &clone, nil
}

func (b *ServiceBackend) SaveService(ctx context.Context, s *registry.Service) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	clone := *s
	b.services[s.Name] = &clone
	return nil
}

func (b *ServiceBackend) ListServices(ctx context.Context, publicOnly bool) ([]*registry.Service, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*registry.Service, 0, len(b.services))
	for _, s := range b.services {
		if publicOnly && !s.Public {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (b *ServiceBackend) DeleteService(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.services[name]; !ok {
		return &wperrors.ServiceNotFoundError{ServiceID: name}
	}
	delete(b.services, name)
	return nil
}

func (b *ServiceBackend) Close() error { return nil }
