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

package iodesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_AliasesCollapseToCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		key  string
	}{
		{"Id", map[string]any{"Id": "stacker"}, "identifier"},
		{"ID", map[string]any{"ID": "stacker"}, "identifier"},
		{"identifier passthrough", map[string]any{"identifier": "stacker"}, "identifier"},
		{"MinOccurs", map[string]any{"MinOccurs": 1}, "min_occurs"},
		{"Min_Occurs", map[string]any{"Min_Occurs": 1}, "min_occurs"},
		{"minoccurs", map[string]any{"minoccurs": 1}, "min_occurs"},
		{"formats", map[string]any{"formats": []any{}}, "supported_formats"},
		{"SupportedFormats", map[string]any{"SupportedFormats": []any{}}, "supported_formats"},
		{"type", map[string]any{"type": "string"}, "data_type"},
		{"DataType", map[string]any{"DataType": "string"}, "data_type"},
		{"mimeType", map[string]any{"mimeType": "text/plain"}, "mime_type"},
		{"Mime-Type", map[string]any{"Mime-Type": "text/plain"}, "mime_type"},
		{"allowedValues", map[string]any{"allowedValues": []any{"a"}}, "allowed_values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.in)
			_, ok := out[tt.key]
			assert.True(t, ok, "expected canonical key %q in %v", tt.key, out)
		})
	}
}

func TestNormalize_UnknownFieldPassesThrough(t *testing.T) {
	out := Normalize(map[string]any{"abstract": "a description"})
	assert.Equal(t, "a description", out["abstract"])
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{"Id": "stacker", "MinOccurs": 1, "mimeType": "text/plain"}
	once := Normalize(raw)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}
