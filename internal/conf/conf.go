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

package conf

import (
	"strings"
	"time"

	"github.com/go-arcade/pluginctl/internal/jenkins"
	"github.com/go-arcade/pluginctl/internal/offline"
	"github.com/go-arcade/pluginctl/pkg/httpx"
	"github.com/go-arcade/pluginctl/pkg/log"
	"github.com/go-arcade/pluginctl/pkg/storage"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "PLUGINCTL"
	defaultConfDir = "./conf.d"
	defaultName    = "config"
)

// AppConfig holds all configuration settings
type AppConfig struct {
	Server  jenkins.Conf `mapstructure:"server"`
	Offline offline.Conf `mapstructure:"offline"`
	Log     log.Conf     `mapstructure:"log"`
	Mirror  storage.Conf `mapstructure:"mirror"`
}

// NewViper returns a viper instance with defaults and environment overrides
// registered. configFile may be empty, in which case ./conf.d/config.toml is
// used when present.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(defaultConfDir)
		v.SetConfigName(defaultName)
	}
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// keys must be registered with a default so AutomaticEnv can override them
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "")
	v.SetDefault("server.username", "")
	v.SetDefault("server.token", "")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.updateCenterURL", jenkins.DefaultUpdateCenterURL)
	v.SetDefault("server.updateCenterCacheDir", "")
	v.SetDefault("server.updateCenterCacheTTL", time.Hour)

	v.SetDefault("offline.tempDir", "")
	v.SetDefault("offline.redirectLimit", httpx.DefaultRedirectLimit)
	v.SetDefault("offline.userAgent", httpx.DefaultUserAgent)
	v.SetDefault("offline.recursive", false)
	v.SetDefault("offline.isolate", false)
	v.SetDefault("offline.verifyChecksum", false)

	logDefaults := log.SetDefaults()
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.path", logDefaults.Path)
	v.SetDefault("log.filename", logDefaults.Filename)
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.keepDays", logDefaults.KeepDays)
	v.SetDefault("log.rotateSize", logDefaults.RotateSize)
	v.SetDefault("log.rotateNum", logDefaults.RotateNum)

	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.provider", storage.StorageMinio)
	v.SetDefault("mirror.endpoint", "")
	v.SetDefault("mirror.accessKey", "")
	v.SetDefault("mirror.secretKey", "")
	v.SetDefault("mirror.bucket", "")
	v.SetDefault("mirror.region", "")
	v.SetDefault("mirror.basePath", "")
	v.SetDefault("mirror.useTLS", false)
}

// Load reads the config file, if any, and decodes the merged settings.
// A missing default file is not an error; a missing explicit file is.
func Load(v *viper.Viper) (*AppConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read configuration file")
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Offline.RedirectLimit <= 0 {
		return errors.Errorf("offline.redirectLimit must be positive, got %d", c.Offline.RedirectLimit)
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Wrap(err, "log")
	}
	return errors.Wrap(c.Mirror.Validate(), "mirror")
}
