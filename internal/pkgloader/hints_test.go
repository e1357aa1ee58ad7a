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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHints_BuiltinScript(t *testing.T) {
	raw := map[string]any{
		"hints": []any{
			map[string]any{"class": "Builtin", "script": "resample.py"},
		},
	}
	hints := parseHints(raw)
	require.Len(t, hints, 1)
	assert.Equal(t, HintBuiltin, hints[0].Kind)
	assert.Equal(t, "resample.py", hints[0].Script)
}

func TestParseHints_RemoteESGFWithAPIKeyAlias(t *testing.T) {
	raw := map[string]any{
		"requirements": []any{
			map[string]any{"class": "RemoteESGF", "provider": "https://esgf.example", "process": "subset", "api_key": "secret"},
		},
	}
	hints := parseHints(raw)
	require.Len(t, hints, 1)
	assert.Equal(t, HintRemoteESGF, hints[0].Kind)
	assert.Equal(t, "secret", hints[0].APIKey)
}

func TestParseHints_UnknownClassEntriesAreSkipped(t *testing.T) {
	raw := map[string]any{
		"hints": []any{
			map[string]any{"class": "ResourceRequirement", "ramMin": 1024},
		},
	}
	assert.Empty(t, parseHints(raw))
}

func TestParseHints_HintsPrecedeRequirements(t *testing.T) {
	raw := map[string]any{
		"hints":        []any{map[string]any{"class": "Docker"}},
		"requirements": []any{map[string]any{"class": "Builtin", "script": "x.py"}},
	}
	hints := parseHints(raw)
	require.Len(t, hints, 2)
	assert.Equal(t, HintDocker, hints[0].Kind)
	assert.Equal(t, HintBuiltin, hints[1].Kind)
}
