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

// Package engineconfig carries the engine's one piece of global state:
// an immutable EngineConfig value built once at startup and threaded
// explicitly through the engine's constructors, replacing the
// heterogeneous settings container the design this engine descends
// from passes implicitly through every call.
package engineconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

// newValidator names fields in validation errors after their yaml tag
// (e.g. "max_workers") rather than the Go field name, so an error
// message reads the same as the config key a caller would actually set.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// EngineConfig is the immutable configuration an engine is constructed
// with. Nothing in the engine mutates a *EngineConfig after Load
// returns it; callers that need different settings construct a new one.
type EngineConfig struct {
	// OutputDir is the base directory job outputs and status files are
	// written under: ${OutputDir}/<job-id>/<stem>.xml|.log.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// RestAPIBaseURL is the externally-visible base URL the engine uses
	// to rewrite file:// output locations into publicly-servable URLs.
	RestAPIBaseURL string `yaml:"restapi_base_url"`

	// DefaultWPSEndpoint is the WPS-1 endpoint used when a package's
	// RemoteWPS1 hint omits an explicit provider.
	DefaultWPSEndpoint string `yaml:"default_wps_endpoint"`

	// Retry holds the transient-failure retry policy (§4.4).
	Retry RetryPolicy `yaml:"retry"`

	// Poll holds the status-poller backoff schedule (§4.7).
	Poll PollPolicy `yaml:"poll"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// MaxWorkers bounds the job-worker pool (§5 tier 2).
	MaxWorkers int `yaml:"max_workers" validate:"min=1"`

	// MaxParallelSteps bounds how many of a workflow's dependency-ready
	// steps internal/workflow runs concurrently.
	MaxParallelSteps int `yaml:"max_parallel_steps" validate:"min=1"`

	// Mode selects which of the two roles (spec.md §1) this engine
	// instance plays: "ems" dispatches to remote providers and accepts
	// Workflow-class deploys; "ades" only executes locally and rejects
	// them.
	Mode string `yaml:"mode" validate:"oneof=ems ades"`
}

// RetryPolicy configures transient-failure retry for remote dispatch.
type RetryPolicy struct {
	// MaxAttempts is the number of retries after the initial attempt.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0"`

	// BaseBackoff is the initial exponential backoff delay.
	BaseBackoff time.Duration `yaml:"base_backoff" validate:"gt=0"`

	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// ConnectTimeout bounds establishing a remote HTTP connection.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// ReadTimeout bounds reading a remote HTTP response.
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// PollPolicy configures the status poller's wait-interval schedule.
type PollPolicy struct {
	// Schedule is the wait-interval sequence, in seconds, used before
	// the schedule is exhausted; after that SteadyState is used.
	Schedule []int `yaml:"schedule"`

	// SteadyState is the wait interval, in seconds, used once Schedule
	// is exhausted.
	SteadyState int `yaml:"steady_state" validate:"gt=0"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level" validate:"oneof=trace debug info warn warning error"`

	// Format sets the output format (json, text).
	Format string `yaml:"format" validate:"oneof=json text"`

	// AddSource adds source file and line information to logs.
	AddSource bool `yaml:"add_source"`
}

// Default returns an EngineConfig with the defaults spec.md §4.4/§4.7/§5
// specifies: 2s initial backoff, 10s connect / 60s read timeouts with 3
// retries, and the fixed poll schedule (2,2,2,2,2,5,5,5,5,5,10,10,10,10,10,20,20,20,20,20,30)s.
func Default() *EngineConfig {
	return &EngineConfig{
		OutputDir:          "/tmp/weaver-engine/output",
		RestAPIBaseURL:     "http://localhost:8080",
		DefaultWPSEndpoint: "",
		Retry: RetryPolicy{
			MaxAttempts:    3,
			BaseBackoff:    2 * time.Second,
			MaxBackoff:     30 * time.Second,
			ConnectTimeout: 10 * time.Second,
			ReadTimeout:    60 * time.Second,
		},
		Poll: PollPolicy{
			Schedule:    defaultPollSchedule(),
			SteadyState: 30,
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "json",
			AddSource: false,
		},
		MaxWorkers:       4,
		MaxParallelSteps: 4,
		Mode:             "ades",
	}
}

func defaultPollSchedule() []int {
	sched := make([]int, 0, 21)
	for _, step := range []struct {
		seconds int
		count   int
	}{
		{2, 5},
		{5, 5},
		{10, 5},
		{20, 5},
	} {
		for i := 0; i < step.count; i++ {
			sched = append(sched, step.seconds)
		}
	}
	return sched
}

// Load builds an EngineConfig starting from Default(), overlaying a
// YAML document at configPath (if non-empty and present), then
// overlaying environment variables, matching the file+env layering the
// engine's ambient stack uses elsewhere.
//
// Environment variables (highest precedence):
//   - WEAVER_OUTPUT_DIR
//   - WEAVER_RESTAPI_BASE_URL
//   - WEAVER_DEFAULT_WPS_ENDPOINT
//   - WEAVER_RETRY_MAX_ATTEMPTS
//   - WEAVER_MAX_WORKERS
//   - WEAVER_MODE
//   - LOG_LEVEL / LOG_FORMAT / LOG_SOURCE
func Load(configPath string) (*EngineConfig, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cfg.loadFromFile(configPath); err != nil {
				return nil, &wperrors.ConfigError{
					Key:    "config_file",
					Reason: fmt.Sprintf("failed to load from %s", configPath),
					Cause:  err,
				}
			}
		} else if !os.IsNotExist(err) {
			return nil, &wperrors.ConfigError{Key: "config_file", Reason: "cannot stat config file", Cause: err}
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &wperrors.ConfigError{Key: "validation", Reason: "configuration validation failed", Cause: err}
	}

	return cfg, nil
}

func (c *EngineConfig) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}

	return nil
}

func (c *EngineConfig) loadFromEnv() {
	if v := os.Getenv("WEAVER_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("WEAVER_RESTAPI_BASE_URL"); v != "" {
		c.RestAPIBaseURL = v
	}
	if v := os.Getenv("WEAVER_DEFAULT_WPS_ENDPOINT"); v != "" {
		c.DefaultWPSEndpoint = v
	}
	if v := os.Getenv("WEAVER_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("WEAVER_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxWorkers = n
		}
	}
	if v := os.Getenv("WEAVER_MODE"); v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_SOURCE"); v != "" {
		c.Log.AddSource = v == "1" || strings.ToLower(v) == "true"
	}
}

// Validate checks the configuration for internal consistency, driven by
// the `validate` struct tags declared on EngineConfig and its nested
// policy types.
func (c *EngineConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	errs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid engine config:\n  - %s", strings.Join(errs, "\n  - "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	field = strings.TrimPrefix(field, "engineconfig.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "min":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
