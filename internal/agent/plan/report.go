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

package plan

import "time"

// 修复类型
const (
	FixToolNotFound           = "tool_not_found"
	FixResolvedReference      = "resolved_reference"
	FixInvalidRange           = "invalid_range"
	FixInvalidType            = "invalid_type"
	FixPhysicallyUnreasonable = "physically_unreasonable"
)

// ValidationFix 校验期间应用的单次修复记录
type ValidationFix struct {
	StepID        string `json:"step_id"`
	FixType       string `json:"fix_type"`
	OriginalValue Value  `json:"original_value"`
	FixedValue    Value  `json:"fixed_value"`
	Reason        string `json:"reason"`
}

// ValidatedPlan 校验后的计划；NormalizedSteps 为修复后的步骤副本
type ValidatedPlan struct {
	PlanID             string          `json:"plan_id"`
	NormalizedSteps    []PlanStep      `json:"normalized_steps"`
	Fixes              []ValidationFix `json:"fixes"`
	ValidationWarnings []string        `json:"validation_warnings"`
	IsValid            bool            `json:"is_valid"`
}

// ExecutionResult 单步执行结果
type ExecutionResult struct {
	StepID     string    `json:"step_id"`
	Success    bool      `json:"success"`
	Output     any       `json:"output"`
	Error      string    `json:"error,omitempty"`
	DurationMS float64   `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// StepError 执行报告中的步骤错误条目
type StepError struct {
	StepID string `json:"step_id"`
	Error  string `json:"error"`
}

// 执行报告最终状态
const (
	ExecCompleted = "completed"
	ExecPartial   = "partial"
	ExecFailed    = "failed"
)

// ExecutionReport 整个计划的执行报告
type ExecutionReport struct {
	PlanID           string            `json:"plan_id"`
	ExecutionResults []ExecutionResult `json:"execution_results"`
	Errors           []StepError       `json:"errors"`
	FinalStatus      string            `json:"final_status"`
	Summary          string            `json:"summary"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      time.Time         `json:"completed_at"`
}

// MarkCompleted 写入完成时间
func (r *ExecutionReport) MarkCompleted() {
	r.CompletedAt = time.Now()
}

// HasErrors 是否存在错误（含失败的步骤结果）
func (r *ExecutionReport) HasErrors() bool {
	if len(r.Errors) > 0 {
		return true
	}
	for _, res := range r.ExecutionResults {
		if !res.Success {
			return true
		}
	}
	return false
}
