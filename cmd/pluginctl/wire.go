//go:build wireinject
// +build wireinject

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

package main

import (
	"github.com/go-arcade/pluginctl/internal/app"
	"github.com/go-arcade/pluginctl/internal/conf"
	"github.com/go-arcade/pluginctl/internal/jenkins"
	"github.com/go-arcade/pluginctl/pkg/log"
	"github.com/google/wire"
)

func initApp(appConf *conf.AppConfig) (*app.App, func(), error) {
	panic(wire.Build(
		// 配置层
		conf.ProviderSet,
		// 日志
		log.ProviderSet,
		// 服务端客户端
		jenkins.ProviderSet,
		// 应用层
		app.ProviderSet,
	))
}
