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

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// LocalRunner executes a CommandLineTool's baseCommand as a local OS
// process, standing in for the Docker-isolated container run (how
// container images are fetched or isolated is out of scope here).
// Inputs are appended as positional arguments in the package's
// declared input order.
type LocalRunner struct{}

func (LocalRunner) Run(ctx context.Context, pkg *pkgloader.Package, inputs map[string]any, report ProgressFunc) (Result, error) {
	if len(pkg.BaseCommand) == 0 {
		return nil, &wperrors.PackageExecutionError{ProcessID: pkg.ID, Reason: "permanentFail: no baseCommand declared", Permanent: true}
	}

	args := append([]string(nil), pkg.BaseCommand[1:]...)
	for _, d := range pkg.Inputs {
		v, ok := inputs[d.ID]
		if !ok {
			continue
		}
		args = append(args, argValue(v))
	}

	if report != nil {
		report(0, "launching "+pkg.BaseCommand[0])
	}

	cmd := exec.CommandContext(ctx, pkg.BaseCommand[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, &wperrors.PackageExecutionError{ProcessID: pkg.ID, Reason: fmt.Sprintf("permanentFail: command could not be launched: %v", err), Permanent: true, Cause: err}
		}
	}

	if !pkg.ExitCode.IsSuccess(exitCode) {
		class := ClassifyExitCode(pkg.ExitCode, exitCode)
		prefix := "permanentFail"
		if class == FailureTransient {
			prefix = "temporaryFail"
		}
		return nil, &wperrors.PackageExecutionError{
			ProcessID: pkg.ID,
			Reason:    fmt.Sprintf("%s: command exited %d: %s", prefix, exitCode, firstNonEmptyLine(stderr.String(), stdout.String())),
			Permanent: class == FailurePermanent,
		}
	}

	if report != nil {
		report(100, "command completed")
	}

	out := Result{}
	for _, d := range pkg.Outputs {
		out[d.ID] = stdout.String()
	}
	return out, nil
}

func argValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if loc, ok := val["location"].(string); ok {
			return loc
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func firstNonEmptyLine(candidates ...string) string {
	for _, c := range candidates {
		for _, line := range strings.Split(c, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				return trimmed
			}
		}
	}
	return "no output"
}
