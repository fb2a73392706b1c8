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

// Package pipeline A/B 流水线协调器：Plan -> Validate -> Execute 严格串行，
// 同一协调器上的调用互斥，任何一次调用的 panic 都被转成失败结果。
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"uav-platform/internal/agent/plan"
	"uav-platform/internal/storage/history"
	"uav-platform/pkg/log"
	"uav-platform/pkg/metrics"
)

// Planner Agent A：自然语言指令 -> 计划
type Planner interface {
	Plan(ctx context.Context, userInput string) (*plan.Plan, error)
}

// Validator 校验与修复
type Validator interface {
	ValidateAndFix(ctx context.Context, p *plan.Plan) *plan.ValidatedPlan
}

// Executor 执行已校验计划
type Executor interface {
	Execute(ctx context.Context, vp *plan.ValidatedPlan) *plan.ExecutionReport
}

// Result 返回给展示层的完整结果，全部字段可 JSON 序列化
type Result struct {
	Success    bool                  `json:"success"`
	Output     string                `json:"output"`
	Plan       *plan.Plan            `json:"plan,omitempty"`
	Validation *plan.ValidatedPlan   `json:"validation,omitempty"`
	Execution  *plan.ExecutionReport `json:"execution,omitempty"`
}

// 历史记录里的流水线级状态（执行未开始时）
const (
	statusPlanningFailed   = "planning_failed"
	statusValidationFailed = "validation_failed"
)

// Coordinator 串起三个阶段；机队 API 没有并发契约，Run 内部用互斥串行化
type Coordinator struct {
	mu        sync.Mutex
	planner   Planner
	validator Validator
	executor  Executor
	history   history.Store
	logger    *log.Logger
}

// New 创建协调器；store 可为 nil（不留历史）
func New(p Planner, v Validator, e Executor, store history.Store, logger *log.Logger) *Coordinator {
	return &Coordinator{planner: p, validator: v, executor: e, history: store, logger: logger}
}

// Run 执行一条自然语言指令，走完整流水线
func (c *Coordinator) Run(ctx context.Context, command string) (result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("pipeline panic recovered", "panic", r)
			metrics.PipelineTotal.WithLabelValues("panic").Inc()
			result = &Result{
				Success: false,
				Output:  fmt.Sprintf("Error in pipeline execution: %v", r),
			}
		}
	}()

	start := time.Now()
	p, err := c.planner.Plan(ctx, command)
	metrics.PipelineDuration.WithLabelValues("plan").Observe(time.Since(start).Seconds())
	if err != nil || p == nil || p.Status == plan.PlanFailed || len(p.Steps) == 0 {
		reason := "the planner produced no steps"
		if err != nil {
			reason = err.Error()
		} else if p != nil && p.Rationale != "" {
			reason = p.Rationale
		}
		c.record(ctx, command, p, statusPlanningFailed)
		metrics.PipelineTotal.WithLabelValues(statusPlanningFailed).Inc()
		return &Result{
			Success: false,
			Output:  fmt.Sprintf("Failed to generate a plan: %s", reason),
			Plan:    p,
		}
	}

	start = time.Now()
	vp := c.validator.ValidateAndFix(ctx, p)
	metrics.PipelineDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())
	if !vp.IsValid {
		c.record(ctx, command, p, statusValidationFailed)
		metrics.PipelineTotal.WithLabelValues(statusValidationFailed).Inc()
		return &Result{
			Success:    false,
			Output:     "Plan validation failed: " + strings.Join(vp.ValidationWarnings, "; "),
			Plan:       p,
			Validation: vp,
		}
	}

	start = time.Now()
	report := c.executor.Execute(ctx, vp)
	metrics.PipelineDuration.WithLabelValues("execute").Observe(time.Since(start).Seconds())

	success := (report.FinalStatus == plan.ExecCompleted || report.FinalStatus == plan.ExecPartial) &&
		len(report.Errors) == 0

	c.record(ctx, command, p, report.FinalStatus)
	metrics.PipelineTotal.WithLabelValues(report.FinalStatus).Inc()

	return &Result{
		Success:    success,
		Output:     buildOutput(p, vp, report),
		Plan:       p,
		Validation: vp,
		Execution:  report,
	}
}

// record 写历史；历史失败只记日志，不影响结果
func (c *Coordinator) record(ctx context.Context, command string, p *plan.Plan, status string) {
	if c.history == nil {
		return
	}
	rec := history.Record{
		ID:          uuid.NewString(),
		Input:       command,
		FinalStatus: status,
		Timestamp:   time.Now(),
	}
	if p != nil {
		rec.PlanID = p.PlanID
	}
	if err := c.history.Append(ctx, rec); err != nil {
		c.logger.Warn("history append failed", "error", err)
	}
}

// buildOutput 汇总为用户可读文本：计划理由、修复数、执行总结、逐步错误明细
func buildOutput(p *plan.Plan, vp *plan.ValidatedPlan, report *plan.ExecutionReport) string {
	var b strings.Builder
	if p.Rationale != "" {
		b.WriteString(p.Rationale)
		b.WriteString("\n")
	}
	if len(vp.Fixes) > 0 {
		fmt.Fprintf(&b, "Validation fixes applied: %d\n", len(vp.Fixes))
	}
	b.WriteString(report.Summary)
	if len(report.Errors) > 0 {
		b.WriteString("\nErrors:")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "\n- %s: %s", e.StepID, e.Error)
		}
	}
	return b.String()
}
