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

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crim-ca/weaver-engine/internal/dispatch"
	"github.com/crim-ca/weaver-engine/internal/engine"
	"github.com/crim-ca/weaver-engine/internal/engineconfig"
	"github.com/crim-ca/weaver-engine/internal/job"
	"github.com/crim-ca/weaver-engine/internal/job/memory"
	weaverlog "github.com/crim-ca/weaver-engine/internal/log"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	"github.com/crim-ca/weaver-engine/internal/poller"
	registrymemory "github.com/crim-ca/weaver-engine/internal/registry/memory"
	"github.com/crim-ca/weaver-engine/internal/wps1import"
	"github.com/crim-ca/weaver-engine/pkg/httpclient"
)

func newRootCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:           "weaverctl",
		Short:         "Drive a weaver-engine process through deploy, execute, and status in one shot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&mode, "mode", "ades", "engine role: ems or ades")

	cmd.AddCommand(newRunCommand(&mode))
	cmd.AddCommand(newDeployCommand(&mode))

	return cmd
}

// newEngine wires a fresh Engine against the in-memory registry/job
// reference backends: weaverctl has no server process behind it, so
// every invocation starts from empty state, exactly the "let the
// engine run end-to-end without an external document store" role
// internal/registry/memory and internal/job/memory are for.
func newEngine(mode string) (*engine.Engine, error) {
	cfg := engineconfig.Default()
	cfg.Mode = mode
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := weaverlog.New(weaverlog.FromEnv())

	httpClient, err := httpclient.New(httpclient.DefaultConfig())
	if err != nil {
		return nil, err
	}

	store := registrymemory.NewProcessBackend()
	jobStore := memory.New()
	loader := pkgloader.NewLoader(httpClient, os.TempDir(), wps1import.NewImporter(cfg.DefaultWPSEndpoint))
	remotePoller := poller.New(&poller.HTTPFetcher{Client: httpClient}, nil, 0, nil)
	dispatcher := &dispatch.Dispatcher{
		Local: dispatch.LocalRunner{},
		WPS1: &dispatch.RemoteRunner{
			Client: httpClient,
			Poller: remotePoller,
		},
		ESGF: &dispatch.ESGFRunner{
			Remote: &dispatch.RemoteRunner{
				Client:        httpClient,
				Poller:        remotePoller,
				RequireAPIKey: true,
			},
		},
		Builtin: dispatch.BuiltinRegistry{},
	}
	tracker := job.NewTracker(jobStore, weaverlog.WithComponent(log, "tracker"))

	return engine.New(cfg, store, loader, dispatcher, tracker, weaverlog.WithComponent(log, "engine")), nil
}
