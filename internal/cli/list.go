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
	"sort"

	"github.com/go-arcade/pluginctl/internal/app"
	"github.com/spf13/cobra"
)

func newListCmd(o *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(a *app.App) error {
				installed, err := a.Server.InstalledPlugins(cmd.Context())
				if err != nil {
					return err
				}
				return printVersions(cmd.OutOrStdout(), a, output, " - %s = %s", installed)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputLog, "output format: log, json, yaml or table")
	return cmd
}

func newUpdatesCmd(o *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "updates",
		Short: "List plugins with an available update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(a *app.App) error {
				updates, err := a.Server.AvailableUpdates(cmd.Context())
				if err != nil {
					return err
				}
				return printVersions(cmd.OutOrStdout(), a, output, " - %s has new available version %s", updates)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputLog, "output format: log, json, yaml or table")
	return cmd
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
