// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"time"

	"github.com/go-arcade/pluginctl/internal/app"
	"github.com/go-arcade/pluginctl/internal/offline"
	"github.com/spf13/cobra"
)

const (
	waitAttempts = 30
	waitInterval = 2 * time.Second
)

type restartOptions struct {
	restart bool
	wait    bool
}

func (r *restartOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&r.restart, "restart", "r", false, "safe-restart the server afterwards")
	cmd.Flags().BoolVar(&r.wait, "wait", false, "with --restart, wait until the server answers again")
}

func (r *restartOptions) apply(ctx context.Context, a *app.App) error {
	if !r.restart {
		return nil
	}
	if err := a.Server.Restart(ctx); err != nil {
		return err
	}
	if !r.wait {
		return nil
	}
	if err := a.Server.WaitReady(ctx, waitAttempts, waitInterval); err != nil {
		return err
	}
	a.Logger.Infow("server is ready")
	return nil
}

func newInstallCmd(o *rootOptions) *cobra.Command {
	var (
		plugin     string
		offlineRun bool
		restart    restartOptions
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a plugin",
		Long: "Install a plugin. By default the server downloads it itself; with --offline " +
			"the plugin and its dependencies are downloaded here and uploaded to the server.",
		Example: "  pluginctl install -P git --offline -r --wait",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				if !offlineRun {
					if err := a.Server.InstallPlugin(ctx, plugin); err != nil {
						return err
					}
					return restart.apply(ctx, a)
				}

				report, err := a.Installer.Install(ctx, plugin)
				logReport(a, report)
				if err != nil {
					return err
				}
				if report.Outcome != offline.OutcomeCompleted {
					return nil
				}
				return restart.apply(ctx, a)
			})
		},
	}
	cmd.Flags().StringVarP(&plugin, "plugin", "P", "", "plugin name")
	cmd.Flags().BoolVar(&offlineRun, "offline", false, "download locally and upload to the server")
	restart.addFlags(cmd)
	_ = cmd.MarkFlagRequired("plugin")
	return cmd
}

func logReport(a *app.App, r *offline.Report) {
	if r == nil {
		return
	}
	a.Logger.Infow("operation finished",
		"operation", r.Operation,
		"plugin", r.Plugin,
		"outcome", r.Outcome,
		"uploaded", r.Count(offline.StateUploaded),
		"alreadyInstalled", r.Count(offline.StateSkippedAlreadyInstalled),
		"metadataMissing", r.Count(offline.StateSkippedMetadataMissing),
		"pending", r.Count(offline.StatePending),
	)
}
