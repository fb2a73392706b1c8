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
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"uav-platform/internal/agent/pipeline"
	"uav-platform/internal/storage/history"
	"uav-platform/internal/uav"
	"uav-platform/pkg/log"
	"uav-platform/pkg/metrics"
)

// Handler HTTP 处理器
type Handler struct {
	coordinator *pipeline.Coordinator
	fleet       *uav.Client
	history     history.Store
	logger      *log.Logger
}

// NewHandler 创建新的 HTTP 处理器
func NewHandler(coordinator *pipeline.Coordinator, fleet *uav.Client, store history.Store, logger *log.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		fleet:       fleet,
		history:     store,
		logger:      logger,
	}
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "uav-api",
	})
}

// ExecuteCommand 执行自然语言指令，走完整 A/B 流水线
func (h *Handler) ExecuteCommand(c *gin.Context) {
	var request struct {
		Command string `json:"command" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误",
		})
		return
	}

	result := h.coordinator.Run(c.Request.Context(), request.Command)
	c.JSON(http.StatusOK, result)
}

// ListHistory 返回最近的指令历史
func (h *Handler) ListHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit 必须为非负整数",
			})
			return
		}
		limit = n
	}

	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"records": []history.Record{}, "total": 0})
		return
	}

	records, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("读取历史失败", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "读取历史失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}

// SessionSummary 会话总结：任务、进度与机队概况
func (h *Handler) SessionSummary(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.fleet.GetCurrentSession(ctx)
	if err != nil {
		h.logger.Error("获取会话信息失败", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "获取会话信息失败",
			"details": err.Error(),
		})
		return
	}
	progress, err := h.fleet.GetTaskProgress(ctx, "")
	if err != nil {
		h.logger.Error("获取任务进度失败", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "获取任务进度失败",
			"details": err.Error(),
		})
		return
	}
	drones, err := h.fleet.ListDrones(ctx)
	if err != nil {
		h.logger.Error("获取机队列表失败", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "获取机队列表失败",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"progress": progress,
		"drones":   len(drones),
		"summary":  formatSummary(session, progress, len(drones)),
	})
}

// SystemMetrics Prometheus 指标
func (h *Handler) SystemMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	if err := metrics.WritePrometheus(c.Writer); err != nil {
		h.logger.Error("导出指标失败", "error", err)
		c.Status(http.StatusInternalServerError)
	}
}

// formatSummary 人类可读的会话总结
func formatSummary(session, progress map[string]any, droneCount int) string {
	var b strings.Builder
	b.WriteString("=== UAV Session Summary ===\n")
	fmt.Fprintf(&b, "Session: %v\n", valueOr(session, "name", "Unknown"))
	fmt.Fprintf(&b, "Task: %v\n", valueOr(session, "task", "Unknown"))
	fmt.Fprintf(&b, "Status: %v\n", valueOr(session, "status", "Unknown"))
	fmt.Fprintf(&b, "Progress: %v%%\n", valueOr(progress, "progress_percentage", 0))
	fmt.Fprintf(&b, "Completed: %v\n", valueOr(progress, "is_completed", false))
	fmt.Fprintf(&b, "Drones: %d available", droneCount)
	return b.String()
}

func valueOr(m map[string]any, key string, def any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return def
}
