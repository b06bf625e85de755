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
	"github.com/go-arcade/pluginctl/internal/app"
	"github.com/go-arcade/pluginctl/internal/offline"
	"github.com/spf13/cobra"
)

func newUpgradeCmd(o *rootOptions) *cobra.Command {
	var (
		plugin  string
		restart restartOptions
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade one plugin, or every plugin with an update",
		Long: "Upgrade re-uploads the plugin and all of its dependencies through the local " +
			"machine. Without --plugin every plugin with an available update is upgraded.",
		Example: "  pluginctl upgrade -P git -r\n  pluginctl upgrade",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(a *app.App) error {
				ctx := cmd.Context()

				var reports []*offline.Report
				if plugin != "" {
					report, err := a.Installer.Upgrade(ctx, plugin)
					logReport(a, report)
					if err != nil {
						return err
					}
					reports = append(reports, report)
				} else {
					all, err := a.Installer.UpgradeAll(ctx)
					for _, r := range all {
						logReport(a, r)
					}
					if err != nil {
						return err
					}
					reports = all
				}

				for _, r := range reports {
					if r.Outcome == offline.OutcomeCompleted {
						return restart.apply(ctx, a)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&plugin, "plugin", "P", "", "plugin name; all plugins with updates when empty")
	restart.addFlags(cmd)
	return cmd
}
