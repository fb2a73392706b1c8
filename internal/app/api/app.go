// Copyright 2026 fanjia1024
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

package api

import (
	"context"
	"fmt"
	nethttp "net/http"

	"uav-platform/internal/agent/executor"
	"uav-platform/internal/agent/pipeline"
	"uav-platform/internal/agent/planner"
	"uav-platform/internal/agent/validator"
	"uav-platform/internal/api/http"
	"uav-platform/internal/api/http/middleware"
	"uav-platform/internal/app"
	"uav-platform/internal/tool/builtin"
)

// App API 应用（装配工具目录、A/B 流水线与 HTTP Router）
type App struct {
	bootstrap *app.Bootstrap
	router    *http.Router
	server    *nethttp.Server
}

// NewApp 创建 API 应用（由 cmd/api 调用）
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	llmClient, err := app.NewLLMClientFromConfig(bootstrap.Config)
	if err != nil {
		return nil, fmt.Errorf("初始化 LLM 客户端失败: %w", err)
	}
	if llmClient == nil {
		return nil, fmt.Errorf("未配置默认 LLM（model.defaults.llm），无法启动流水线")
	}

	catalog := builtin.NewCatalog(bootstrap.Fleet)
	plannerAgent := planner.NewLLMPlanner(llmClient, catalog, bootstrap.Logger)
	validatorAgent := validator.New(catalog, bootstrap.Fleet, bootstrap.Logger)
	executorAgent := executor.New(catalog, bootstrap.Logger)
	coordinator := pipeline.New(plannerAgent, validatorAgent, executorAgent, bootstrap.History, bootstrap.Logger)

	handler := http.NewHandler(coordinator, bootstrap.Fleet, bootstrap.History, bootstrap.Logger)
	router := http.NewRouter(handler, middleware.NewMiddleware())
	router.SetupRoutes()

	return &App{
		bootstrap: bootstrap,
		router:    router,
	}, nil
}

// Run 启动 HTTP 服务，addr 如 ":8080"
func (a *App) Run(addr string) error {
	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)
	a.server = &nethttp.Server{
		Addr:    addr,
		Handler: a.router.Engine(),
	}
	return a.server.ListenAndServe()
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.bootstrap.History != nil {
		if err := a.bootstrap.History.Close(); err != nil {
			return err
		}
	}
	return nil
}
