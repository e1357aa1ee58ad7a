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

// Package statusfile is the on-disk job.Store spec.md §4.3/§6 describes:
// each job gets a "<stem>.xml" WPS-1 ExecuteResponse document (the
// provider-facing status the engine's own /ows/wps surface and a
// polling client both read) and a "<stem>.log" trail of
// "{duration} {progress:3d}% {status:10} {message}" lines, one per
// update. It is also the fallback internal/poller reads from when a
// remote provider's transport is transiently unreachable but the job
// runs against a locally-addressable output directory.
package statusfile

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/wps1xml"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// Store persists job snapshots as a pair of files per job under Dir.
type Store struct {
	Dir string
}

// New builds a Store writing under dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &wperrors.ConfigError{Key: "output_dir", Reason: err.Error()}
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) stem(id string) string { return filepath.Join(s.Dir, id) }

// Save writes the job's current status document and appends one log
// line reflecting this snapshot.
func (s *Store) Save(_ context.Context, snap *job.Snapshot) error {
	if err := s.writeXML(snap); err != nil {
		return err
	}
	return s.appendLog(snap)
}

func (s *Store) writeXML(snap *job.Snapshot) error {
	resp := wps1xml.ExecuteResponse{
		Process: wps1xml.ProcessBrief{Identifier: snap.ProcessID},
		Status:  statusFor(snap),
	}
	if len(snap.Outputs) > 0 {
		resp.ProcessOutputs = &wps1xml.ExecuteOutputs{}
		for id, v := range snap.Outputs {
			out := wps1xml.ExecuteOutput{Identifier: id}
			if href, ok := v.(string); ok && (strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "file://")) {
				out.Reference = &wps1xml.OutputReference{Href: href}
			} else {
				out.Data = &wps1xml.OutputData{Value: fmt.Sprintf("%v", v)}
			}
			resp.ProcessOutputs.Output = append(resp.ProcessOutputs.Output, out)
		}
	}

	data, err := xml.MarshalIndent(resp, "", "  ")
	if err != nil {
		return &wperrors.PackageExecutionError{ProcessID: snap.ProcessID, Reason: fmt.Sprintf("marshal status document: %v", err)}
	}
	return os.WriteFile(s.stem(snap.ID)+".xml", append([]byte(xml.Header), data...), 0o644)
}

func statusFor(snap *job.Snapshot) wps1xml.Status {
	creation := snap.CreatedAt.UTC().Format(time.RFC3339)
	switch snap.Status {
	case job.StateAccepted:
		return wps1xml.NewAcceptedStatus(creation)
	case job.StateRunning:
		return wps1xml.NewRunningStatus(creation, snap.Progress, snap.Message)
	case job.StateSucceeded:
		return wps1xml.NewSucceededStatus(creation)
	case job.StateFailed:
		exc := wps1xml.Exception{ExceptionCode: snap.ErrorCode, ExceptionText: snap.ErrorMsg}
		return wps1xml.NewFailedStatus(creation, []wps1xml.Exception{exc})
	default:
		return wps1xml.NewRunningStatus(creation, snap.Progress, snap.Message)
	}
}

func (s *Store) appendLog(snap *job.Snapshot) error {
	f, err := os.OpenFile(s.stem(snap.ID)+".log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	duration := time.Since(snap.CreatedAt).Round(time.Second)
	line := fmt.Sprintf("%8s %3d%% %-10s %s\n", duration, snap.Progress, snap.Status, snap.Message)
	_, err = f.WriteString(line)
	return err
}

// Get reads back a job's status document, reconstructing a minimal
// Snapshot (status, progress, message, outputs) — the log trail and
// timestamps below creation aren't recoverable from the XML document
// alone, so callers needing the full history should keep their own
// job.Store alongside statusfile for the live tracker.
func (s *Store) Get(_ context.Context, id string) (*job.Snapshot, error) {
	data, err := os.ReadFile(s.stem(id) + ".xml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &wperrors.JobNotFoundError{JobID: id}
		}
		return nil, err
	}

	var resp wps1xml.ExecuteResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, &wperrors.PackageExecutionError{ProcessID: id, Reason: fmt.Sprintf("parse status document: %v", err)}
	}

	snap := &job.Snapshot{ID: id, ProcessID: resp.Process.Identifier}
	switch {
	case resp.Status.ProcessAccepted != "":
		snap.Status = job.StateAccepted
	case resp.Status.ProcessStarted != nil:
		snap.Status = job.StateRunning
		snap.Progress, _ = strconv.Atoi(resp.Status.ProcessStarted.PercentCompleted)
		snap.Message = resp.Status.ProcessStarted.Value
	case resp.Status.ProcessSucceeded != "":
		snap.Status = job.StateSucceeded
		snap.Progress = job.MilestoneDone
	case resp.Status.ProcessFailed != nil:
		snap.Status = job.StateFailed
		if len(resp.Status.ProcessFailed.ExceptionReport.Exception) > 0 {
			exc := resp.Status.ProcessFailed.ExceptionReport.Exception[0]
			snap.ErrorCode = exc.ExceptionCode
			snap.ErrorMsg = exc.ExceptionText
		}
	}
	if resp.Status.CreationTime != "" {
		if t, err := time.Parse(time.RFC3339, resp.Status.CreationTime); err == nil {
			snap.CreatedAt = t
		}
	}
	if resp.ProcessOutputs != nil {
		snap.Outputs = make(map[string]any, len(resp.ProcessOutputs.Output))
		for _, out := range resp.ProcessOutputs.Output {
			switch {
			case out.Reference != nil:
				snap.Outputs[out.Identifier] = out.Reference.Href
			case out.Data != nil:
				snap.Outputs[out.Identifier] = out.Data.Value
			}
		}
	}
	return snap, nil
}

// List enumerates every "<id>.xml" file under Dir. The ProcessID/Status
// filters apply after each document is parsed, so List over a large
// directory does a full read-back; callers wanting a fast index should
// keep a job.memory.Store as their primary Store.
func (s *Store) List(ctx context.Context, filter job.ListFilter) ([]*job.Snapshot, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []*job.Snapshot
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".xml" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".xml")
		snap, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		if filter.ProcessID != "" && snap.ProcessID != filter.ProcessID {
			continue
		}
		if filter.Status != "" && snap.Status != filter.Status {
			continue
		}
		out = append(out, snap)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// ReadLog returns the raw trail lines recorded for a job, scanning the
// "<id>.log" file.
func (s *Store) ReadLog(id string) ([]string, error) {
	f, err := os.Open(s.stem(id) + ".log")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &wperrors.JobNotFoundError{JobID: id}
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
