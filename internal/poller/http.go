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

package poller

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/wps1xml"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// HTTPFetcher fetches a remote job's WPS-1 ExecuteResponse status
// document over HTTP and maps it onto a StatusReport.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) FetchStatus(ctx context.Context, statusLocation string) (StatusReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusLocation, nil)
	if err != nil {
		return StatusReport{}, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return StatusReport{}, &wperrors.CommunicationFailureError{Provider: statusLocation, Attempts: 1, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return StatusReport{}, &wperrors.CommunicationFailureError{Provider: statusLocation, Attempts: 1}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return StatusReport{}, err
	}

	var execResp wps1xml.ExecuteResponse
	if err := xml.Unmarshal(data, &execResp); err != nil {
		return StatusReport{}, &wperrors.PackageExecutionError{Reason: fmt.Sprintf("parse status document: %v", err)}
	}
	return reportFromExecuteResponse(execResp), nil
}

func reportFromExecuteResponse(resp wps1xml.ExecuteResponse) StatusReport {
	switch {
	case resp.Status.ProcessStarted != nil:
		pct, _ := strconv.Atoi(resp.Status.ProcessStarted.PercentCompleted)
		return StatusReport{Status: job.StateRunning, Progress: pct, Message: resp.Status.ProcessStarted.Value}

	case resp.Status.ProcessSucceeded != "":
		outputs := map[string]any{}
		if resp.ProcessOutputs != nil {
			for _, out := range resp.ProcessOutputs.Output {
				switch {
				case out.Reference != nil:
					outputs[out.Identifier] = out.Reference.Href
				case out.Data != nil:
					outputs[out.Identifier] = out.Data.Value
				}
			}
		}
		return StatusReport{Status: job.StateSucceeded, Progress: job.MilestoneDone, Outputs: outputs}

	case resp.Status.ProcessFailed != nil:
		var code, text string
		if excs := resp.Status.ProcessFailed.ExceptionReport.Exception; len(excs) > 0 {
			code, text = excs[0].ExceptionCode, excs[0].ExceptionText
		}
		return StatusReport{Status: job.StateFailed, ErrCode: code, ErrMsg: text}

	case resp.Status.ProcessAccepted != "":
		return StatusReport{Status: job.StateAccepted}

	default:
		return StatusReport{Status: job.StateRunning}
	}
}
