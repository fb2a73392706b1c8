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

// Package plan 定义 A/B 流水线的数据模型：计划、步骤、校验修复与执行报告。
// 所有类型均为纯数据，可 JSON 序列化供展示层与日志使用。
package plan

import (
	"time"

	"github.com/google/uuid"
)

// 步骤状态
const (
	StepPending   = "pending"
	StepValidated = "validated"
	StepExecuting = "executing"
	StepCompleted = "completed"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
)

// 计划状态
const (
	PlanDraft     = "draft"
	PlanValidated = "validated"
	PlanExecuting = "executing"
	PlanCompleted = "completed"
	PlanFailed    = "failed"
)

// PlanStep 计划中的单步：要调用的工具、参数与依赖
type PlanStep struct {
	StepID         string   `json:"step_id"`
	ToolName       string   `json:"tool_name"`
	Args           Args     `json:"args"`
	Rationale      string   `json:"rationale"`
	ExpectedEffect string   `json:"expected_effect"`
	Dependencies   []string `json:"dependencies"`
	Status         string   `json:"status"`
	ErrorMessage   string   `json:"error_message,omitempty"`
}

// Clone 深拷贝步骤；校验层在副本上修复，原计划不被改动
func (s PlanStep) Clone() PlanStep {
	out := s
	out.Args = CloneArgs(s.Args)
	if s.Dependencies != nil {
		out.Dependencies = make([]string, len(s.Dependencies))
		copy(out.Dependencies, s.Dependencies)
	}
	return out
}

// Plan 未校验的完整执行计划
type Plan struct {
	PlanID     string     `json:"plan_id"`
	UserIntent string     `json:"user_intent"`
	Steps      []PlanStep `json:"steps"`
	Rationale  string     `json:"rationale"`
	CreatedAt  time.Time  `json:"created_at"`
	Status     string     `json:"status"`
}

// NewPlan 创建空计划，分配 plan_id
func NewPlan(userIntent string) *Plan {
	return &Plan{
		PlanID:     uuid.NewString(),
		UserIntent: userIntent,
		CreatedAt:  time.Now(),
		Status:     PlanDraft,
	}
}

// StepIDs 返回计划内全部 step_id 集合
func (p *Plan) StepIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(p.Steps))
	for _, s := range p.Steps {
		ids[s.StepID] = struct{}{}
	}
	return ids
}
