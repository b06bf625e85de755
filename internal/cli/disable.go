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
	"github.com/spf13/cobra"
)

func newDisableCmd(o *rootOptions) *cobra.Command {
	var plugins []string

	cmd := &cobra.Command{
		Use:     "disable",
		Short:   "Disable plugins",
		Example: "  pluginctl disable --plugins git,workflow-aggregator",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(a *app.App) error {
				return a.Server.DisablePlugins(cmd.Context(), plugins)
			})
		},
	}
	cmd.Flags().StringSliceVar(&plugins, "plugins", nil, "comma separated plugin names")
	_ = cmd.MarkFlagRequired("plugins")
	return cmd
}
