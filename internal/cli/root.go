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
	"github.com/go-arcade/pluginctl/internal/conf"
	"github.com/go-arcade/pluginctl/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// InitAppFunc builds the application from a loaded configuration.
type InitAppFunc func(appConf *conf.AppConfig) (*app.App, func(), error)

type rootOptions struct {
	configFile string
	initApp    InitAppFunc
}

// NewRootCmd returns the pluginctl command tree.
func NewRootCmd(initApp InitAppFunc) *cobra.Command {
	o := &rootOptions{initApp: initApp}

	cmd := &cobra.Command{
		Use:           "pluginctl",
		Short:         "Manage the plugins of a Jenkins server",
		Long:          "pluginctl lists, disables, installs and upgrades Jenkins plugins, including offline transfers through the local machine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "config file path (default ./conf.d/config.toml)")
	flags.String("server", "", "Jenkins base URL")
	flags.String("user", "", "Jenkins username")
	flags.String("token", "", "Jenkins API token")
	flags.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")

	cmd.AddCommand(
		newListCmd(o),
		newUpdatesCmd(o),
		newDisableCmd(o),
		newInstallCmd(o),
		newUpgradeCmd(o),
		version.NewVersionCmd(),
	)
	return cmd
}

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"server":    "server.url",
	"user":      "server.username",
	"token":     "server.token",
	"log-level": "log.level",
}

func (o *rootOptions) loadConf(cmd *cobra.Command) (*conf.AppConfig, error) {
	v := conf.NewViper(o.configFile)
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, errors.Wrapf(err, "bind flag --%s", name)
		}
	}
	return conf.Load(v)
}

// run loads the configuration, builds the app and hands it to fn.
func (o *rootOptions) run(cmd *cobra.Command, fn func(a *app.App) error) error {
	appConf, err := o.loadConf(cmd)
	if err != nil {
		return err
	}
	a, cleanup, err := o.initApp(appConf)
	if err != nil {
		return errors.Wrap(err, "initialize")
	}
	defer cleanup()
	return fn(a)
}
