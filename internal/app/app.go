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

package app

import (
	"github.com/go-arcade/pluginctl/internal/conf"
	"github.com/go-arcade/pluginctl/internal/jenkins"
	"github.com/go-arcade/pluginctl/internal/offline"
	"github.com/go-arcade/pluginctl/pkg/httpx"
	"github.com/go-arcade/pluginctl/pkg/log"
	"github.com/go-arcade/pluginctl/pkg/storage"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// ProviderSet wires the installer and its collaborators.
var ProviderSet = wire.NewSet(
	NewApp,
	ProvideILogger,
	ProvideFetcher,
	ProvideArtifactStore,
	offline.NewInstaller,
	wire.Bind(new(offline.Server), new(*jenkins.Client)),
	wire.Bind(new(offline.Downloader), new(*httpx.Fetcher)),
)

// App is everything a command needs to talk to the server.
type App struct {
	Conf      *conf.AppConfig
	Logger    *zap.SugaredLogger
	Server    *jenkins.Client
	Installer *offline.Installer
}

func NewApp(
	appConf *conf.AppConfig,
	logger *zap.SugaredLogger,
	server *jenkins.Client,
	installer *offline.Installer,
) *App {
	return &App{
		Conf:      appConf,
		Logger:    logger,
		Server:    server,
		Installer: installer,
	}
}

func ProvideILogger(logger *zap.SugaredLogger) log.ILogger {
	return logger
}

// ProvideFetcher builds the artifact downloader from the offline settings.
func ProvideFetcher(c *offline.Conf, server *jenkins.Conf) *httpx.Fetcher {
	return httpx.NewFetcher(httpx.FetcherConf{
		RedirectLimit: c.RedirectLimit,
		UserAgent:     c.UserAgent,
		Timeout:       server.Timeout,
	})
}

// ProvideArtifactStore returns a nil store when the mirror is disabled.
func ProvideArtifactStore(c *storage.Conf, logger log.ILogger) (offline.ArtifactStore, error) {
	if !c.Enabled {
		return nil, nil
	}
	s, err := storage.NewStorage(c)
	if err != nil {
		return nil, err
	}
	logger.Infow("artifact mirror enabled", "provider", c.Provider, "endpoint", c.Endpoint, "bucket", c.Bucket, "basePath", c.BasePath)
	return s, nil
}
