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

// Package executor 无状态执行节点（Node B 的执行半边）：
// 按计划顺序单遍执行已校验步骤，尊重依赖，不重试，调用之间不保留任何记忆。
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"uav-platform/internal/agent/plan"
	"uav-platform/internal/tool/registry"
	"uav-platform/pkg/log"
	"uav-platform/pkg/metrics"
)

// Executor 对照工具目录执行 ValidatedPlan。
// 结构体本身不含可变字段，每次 Execute 的跟踪集合都是局部的，
// 调用彼此独立且与调用顺序无关。
type Executor struct {
	catalog *registry.Registry
	logger  *log.Logger
}

// New 创建 Executor
func New(catalog *registry.Registry, logger *log.Logger) *Executor {
	return &Executor{catalog: catalog, logger: logger}
}

// Execute 单遍执行计划并返回完整报告
func (e *Executor) Execute(ctx context.Context, vp *plan.ValidatedPlan) *plan.ExecutionReport {
	report := &plan.ExecutionReport{
		PlanID:           vp.PlanID,
		ExecutionResults: []plan.ExecutionResult{},
		Errors:           []plan.StepError{},
		StartedAt:        time.Now(),
	}

	// 本次调用的跟踪状态，返回前全部丢弃
	allStepIDs := make(map[string]struct{}, len(vp.NormalizedSteps))
	for _, s := range vp.NormalizedSteps {
		allStepIDs[s.StepID] = struct{}{}
	}
	completed := make(map[string]struct{})
	failed := make(map[string]struct{})
	skipped := make(map[string]struct{})

	for _, step := range vp.NormalizedSteps {
		if step.Status == plan.StepSkipped {
			skipped[step.StepID] = struct{}{}
			metrics.StepTotal.WithLabelValues("skipped").Inc()
			continue
		}

		if errMsg := dependencyError(step, allStepIDs, completed, failed, skipped); errMsg != "" {
			report.ExecutionResults = append(report.ExecutionResults, plan.ExecutionResult{
				StepID:    step.StepID,
				Success:   false,
				Error:     errMsg,
				Timestamp: time.Now(),
			})
			report.Errors = append(report.Errors, plan.StepError{StepID: step.StepID, Error: errMsg})
			skipped[step.StepID] = struct{}{}
			metrics.StepTotal.WithLabelValues("blocked").Inc()
			continue
		}

		result := e.runStep(ctx, step)
		report.ExecutionResults = append(report.ExecutionResults, result)
		if result.Success {
			completed[step.StepID] = struct{}{}
			metrics.StepTotal.WithLabelValues("completed").Inc()
		} else {
			report.Errors = append(report.Errors, plan.StepError{StepID: step.StepID, Error: result.Error})
			failed[step.StepID] = struct{}{}
			metrics.StepTotal.WithLabelValues("failed").Inc()
		}
	}

	report.FinalStatus = finalStatus(report.ExecutionResults)
	report.Summary = summarize(report.ExecutionResults)
	report.MarkCompleted()

	e.logger.Info("plan executed",
		"plan_id", vp.PlanID,
		"final_status", report.FinalStatus,
		"results", len(report.ExecutionResults),
		"errors", len(report.Errors))

	return report
}

// runStep 执行单步并计时
func (e *Executor) runStep(ctx context.Context, step plan.PlanStep) plan.ExecutionResult {
	start := time.Now()
	result := plan.ExecutionResult{
		StepID:    step.StepID,
		Timestamp: start,
	}

	t, ok := e.catalog.Get(step.ToolName)
	if !ok {
		// 校验后不应出现，防御处理为失败步骤
		result.Error = fmt.Sprintf("Tool '%s' not found", step.ToolName)
		result.DurationMS = float64(time.Since(start)) / float64(time.Millisecond)
		return result
	}

	output, err := t.Invoke(ctx, plan.ArgsToAny(step.Args))
	result.DurationMS = float64(time.Since(start)) / float64(time.Millisecond)
	metrics.ToolDuration.WithLabelValues(step.ToolName).Observe(time.Since(start).Seconds())
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Output = output
	return result
}

// dependencyError 依赖检查；全部满足时返回空串
func dependencyError(step plan.PlanStep, all, completed, failed, skipped map[string]struct{}) string {
	if len(step.Dependencies) == 0 {
		return ""
	}

	var missing, blocked, pending []string
	for _, dep := range step.Dependencies {
		if _, known := all[dep]; !known {
			missing = append(missing, dep)
			continue
		}
		if _, isFailed := failed[dep]; isFailed {
			blocked = append(blocked, dep)
			continue
		}
		if _, isSkipped := skipped[dep]; isSkipped {
			blocked = append(blocked, dep)
			continue
		}
		if _, done := completed[dep]; !done {
			pending = append(pending, dep)
		}
	}

	if len(missing) == 0 && len(blocked) == 0 && len(pending) == 0 {
		return ""
	}

	var reasons []string
	if len(missing) > 0 {
		reasons = append(reasons, "missing dependencies: "+strings.Join(missing, ", "))
	}
	if len(blocked) > 0 {
		reasons = append(reasons, "failed/skipped dependencies: "+strings.Join(blocked, ", "))
	}
	if len(pending) > 0 {
		reasons = append(reasons, "unmet dependencies (not completed): "+strings.Join(pending, ", "))
	}
	return "Unmet dependencies: " + strings.Join(reasons, "; ")
}

// finalStatus 由步骤结果聚合整体状态
func finalStatus(results []plan.ExecutionResult) string {
	anyFailed := false
	anySucceeded := false
	for _, r := range results {
		if r.Success {
			anySucceeded = true
		} else {
			anyFailed = true
		}
	}
	if anyFailed {
		if anySucceeded {
			return plan.ExecPartial
		}
		return plan.ExecFailed
	}
	return plan.ExecCompleted
}

// summarize 人类可读的执行摘要
func summarize(results []plan.ExecutionResult) string {
	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	total := len(results)
	switch {
	case successful == total:
		return fmt.Sprintf("Successfully executed all %d steps.", total)
	case successful == 0:
		return fmt.Sprintf("Failed to execute any of the %d steps.", total)
	default:
		return fmt.Sprintf("Completed %d/%d steps successfully.", successful, total)
	}
}
