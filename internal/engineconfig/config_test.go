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

package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, len(cfg.Poll.Schedule))
	assert.Equal(t, 2, cfg.Poll.Schedule[0])
	assert.Equal(t, 20, cfg.Poll.Schedule[len(cfg.Poll.Schedule)-1])
	assert.Equal(t, 30, cfg.Poll.SteadyState)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().OutputDir, cfg.OutputDir)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	content := []byte("output_dir: /data/out\nmax_workers: 8\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, 8, cfg.MaxWorkers)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: /data/out\n"), 0o644))

	t.Setenv("WEAVER_OUTPUT_DIR", "/data/env-out")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/env-out", cfg.OutputDir)
}

func TestValidate_RejectsBadConfig(t *testing.T) {
	cfg := Default()
	cfg.MaxWorkers = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_workers")
}
