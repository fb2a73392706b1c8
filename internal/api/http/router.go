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

package http

import (
	"github.com/gin-gonic/gin"

	"uav-platform/internal/api/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	engine     *gin.Engine
	handler    *Handler
	middleware *middleware.Middleware
}

// NewRouter 创建新的 HTTP 路由器
func NewRouter(handler *Handler, middleware *middleware.Middleware) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	return &Router{
		engine:     engine,
		handler:    handler,
		middleware: middleware,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	api := r.engine.Group("/api")

	api.GET("/health", r.handler.HealthCheck)

	commands := api.Group("/commands")
	{
		commands.POST("", r.middleware.CORS(), r.handler.ExecuteCommand)
	}

	api.GET("/history", r.middleware.CORS(), r.handler.ListHistory)
	api.GET("/summary", r.middleware.CORS(), r.handler.SessionSummary)

	system := api.Group("/system")
	{
		system.GET("/metrics", r.middleware.CORS(), r.handler.SystemMetrics)
	}
}

// Engine 获取 Gin 引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run 启动 HTTP 服务
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
