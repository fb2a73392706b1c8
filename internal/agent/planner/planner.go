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

// Package planner Agent A：对话理解与计划生成。只产出 JSON 计划，不执行工具。
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"uav-platform/internal/agent/plan"
	"uav-platform/internal/model/llm"
	"uav-platform/internal/tool/registry"
	"uav-platform/pkg/log"
)

// LLMPlanner 基于 LLM 的 Planner：把自然语言指令转为结构化计划
type LLMPlanner struct {
	client  llm.Client
	catalog *registry.Registry
	logger  *log.Logger
}

// NewLLMPlanner 创建 Planner；catalog 只用于生成工具文档，不执行
func NewLLMPlanner(client llm.Client, catalog *registry.Registry, logger *log.Logger) *LLMPlanner {
	return &LLMPlanner{client: client, catalog: catalog, logger: logger}
}

// Plan 生成执行计划。LLM 调用或解析失败时返回 status=failed 的空计划，不返回 error
func (p *LLMPlanner) Plan(ctx context.Context, userInput string) (*plan.Plan, error) {
	out := plan.NewPlan(userInput)
	if p.client == nil {
		out.Status = plan.PlanFailed
		out.Rationale = "Failed to generate plan: no LLM configured"
		return out, nil
	}

	prompt := p.buildPrompt(userInput)
	opts := llm.GenerateOptions{MaxTokens: 4096, Temperature: 0.2}
	reply, err := p.client.GenerateWithContext(ctx, prompt, opts)
	if err != nil {
		p.logger.Warn("planner LLM call failed", "error", err)
		out.Status = plan.PlanFailed
		out.Rationale = fmt.Sprintf("Failed to generate plan: %v", err)
		return out, nil
	}

	raw, err := extractJSON(reply)
	if err != nil {
		p.logger.Warn("planner output not parseable", "error", err)
		out.Status = plan.PlanFailed
		out.Rationale = fmt.Sprintf("Failed to generate plan: %v", err)
		return out, nil
	}

	var decoded struct {
		UserIntent string `json:"user_intent"`
		Rationale  string `json:"rationale"`
		Steps      []struct {
			StepID         string    `json:"step_id"`
			ToolName       string    `json:"tool_name"`
			Args           plan.Args `json:"args"`
			Rationale      string    `json:"rationale"`
			ExpectedEffect string    `json:"expected_effect"`
			Dependencies   []string  `json:"dependencies"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		p.logger.Warn("planner output JSON invalid", "error", err)
		out.Status = plan.PlanFailed
		out.Rationale = fmt.Sprintf("Failed to generate plan: %v", err)
		return out, nil
	}

	out.Rationale = decoded.Rationale
	for i, s := range decoded.Steps {
		stepID := s.StepID
		if stepID == "" {
			stepID = fmt.Sprintf("step_%d", i+1)
		}
		args := s.Args
		if args == nil {
			args = plan.Args{}
		}
		out.Steps = append(out.Steps, plan.PlanStep{
			StepID:         stepID,
			ToolName:       s.ToolName,
			Args:           args,
			Rationale:      s.Rationale,
			ExpectedEffect: s.ExpectedEffect,
			Dependencies:   s.Dependencies,
			Status:         plan.StepPending,
		})
	}

	p.logger.Info("plan generated", "plan_id", out.PlanID, "steps", len(out.Steps))
	return out, nil
}

func (p *LLMPlanner) buildPrompt(userInput string) string {
	var toolsDoc strings.Builder
	for _, s := range p.catalog.SchemasForLLM() {
		fmt.Fprintf(&toolsDoc, "**%s**: %s\n", s.Name, s.Description)
		if len(s.Parameters.Properties) > 0 {
			params, _ := json.Marshal(s.Parameters)
			fmt.Fprintf(&toolsDoc, "  parameters: %s\n", params)
		}
	}

	return `You are the Planner Agent (Agent A) for a UAV (drone) control system.

Your primary responsibilities:
1. Engage in conversation with the user
2. Parse and understand the user's intent
3. Generate a structured execution plan as JSON
4. DO NOT execute any tools - only plan what should be done

## Available Tools

` + toolsDoc.String() + `

## Output Format

You must output a JSON object with this exact structure:

` + "```json" + `
{
  "user_intent": "Brief description of what the user wants to accomplish",
  "rationale": "Explanation of your planned approach",
  "steps": [
    {
      "step_id": "step_1",
      "tool_name": "name_of_tool",
      "args": {"param1": "value1"},
      "rationale": "Why this step is needed",
      "expected_effect": "What you expect to happen",
      "dependencies": []
    }
  ]
}
` + "```" + `

## Important Rules

1. Output ONLY valid JSON - no conversational text outside the JSON
2. Use exact tool names from the list above
3. Provide all required parameters for each tool call
4. Order steps logically - use dependencies if a step needs results from another
5. Be specific - use concrete values (drone IDs, coordinates, etc.)

## Current Task

User input: ` + userInput + `

Generate the execution plan as JSON:`
}
