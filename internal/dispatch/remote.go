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
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/poller"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/wps1xml"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// RemoteRunner dispatches a package to a remote WPS-1 (or ESGF, which
// speaks the same Execute/GetStatus dialect with an api_key parameter)
// provider: it submits an asynchronous Execute request and polls the
// returned statusLocation to completion.
type RemoteRunner struct {
	Client          *http.Client
	Poller          *poller.Poller
	DefaultEndpoint string

	// RequireAPIKey marks this runner as the ESGF variant, which adds
	// the hint's APIKey as an api_key query parameter.
	RequireAPIKey bool
}

func (r *RemoteRunner) Run(ctx context.Context, pkg *pkgloader.Package, inputs map[string]any, progress ProgressFunc) (Result, error) {
	hint, err := SelectHint(pkg)
	if err != nil {
		return nil, err
	}

	statusLocation, err := r.execute(ctx, hint, inputs)
	if err != nil {
		return nil, err
	}

	onUpdate := func(s poller.StatusReport) {
		if progress != nil {
			progress(s.Progress, s.Message)
		}
	}
	report, err := r.Poller.Run(ctx, statusLocation, nil, onUpdate)
	if err != nil {
		return nil, &wperrors.CommunicationFailureError{Provider: hint.Provider, Cause: err}
	}
	if report.Status == job.StateFailed {
		return nil, &wperrors.PackageExecutionError{ProcessID: pkg.ID, Reason: report.ErrMsg, Permanent: true}
	}
	return report.Outputs, nil
}

func (r *RemoteRunner) execute(ctx context.Context, hint *pkgloader.ApplicationHint, inputs map[string]any) (string, error) {
	base := hint.Provider
	if base == "" {
		base = r.DefaultEndpoint
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", &wperrors.PackageExecutionError{Reason: fmt.Sprintf("permanentFail: invalid provider URL: %v", err), Permanent: true}
	}

	q := u.Query()
	q.Set("service", "WPS")
	q.Set("request", "Execute")
	q.Set("version", "1.0.0")
	q.Set("identifier", hint.Process)
	q.Set("storeExecuteResponse", "true")
	q.Set("status", "true")
	q.Set("datainputs", encodeDataInputs(inputs))
	if r.RequireAPIKey && hint.APIKey != "" {
		q.Set("api_key", hint.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return "", &wperrors.CommunicationFailureError{Provider: base, Attempts: 1, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		class := ClassifyHTTPStatus(resp.StatusCode)
		return "", &wperrors.PackageExecutionError{
			ProcessID: hint.Process,
			Reason:    fmt.Sprintf("execute request failed with HTTP %d", resp.StatusCode),
			Permanent: class == FailurePermanent,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var execResp wps1xml.ExecuteResponse
	if err := xml.Unmarshal(data, &execResp); err != nil {
		return "", &wperrors.PackageExecutionError{Reason: fmt.Sprintf("parse Execute response: %v", err)}
	}
	if execResp.StatusLocation == "" {
		return "", &wperrors.PackageExecutionError{Reason: "permanentFail: Execute response carried no statusLocation", Permanent: true}
	}
	return execResp.StatusLocation, nil
}

// encodeDataInputs renders inputs as a WPS-1 KVP "id=value;id=value"
// datainputs parameter, in key order so requests are deterministic.
func encodeDataInputs(inputs map[string]any) string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, literalOf(inputs[k])))
	}
	return strings.Join(parts, ";")
}

func literalOf(v any) string {
	if m, ok := v.(map[string]any); ok {
		if loc, ok := m["location"].(string); ok {
			return loc
		}
	}
	return fmt.Sprintf("%v", v)
}
