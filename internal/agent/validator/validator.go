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

// Package validator 计划校验与修复：工具存在性、参数合法性、物理合理性。
// 所有修复都作用在步骤副本上，传入的 Plan 不被改动；校验本身从不报错，
// 问题退化为 warning 与 skipped 步骤。
package validator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"uav-platform/internal/agent/plan"
	"uav-platform/internal/tool/registry"
	"uav-platform/pkg/log"
	"uav-platform/pkg/metrics"
)

// 物理合理性阈值
const (
	minAltitude   = 5.0
	maxAltitude   = 500.0
	cappedAlt     = 120.0
	maxCoordinate = 10000.0
	minSpeed      = 5.0
	maxSpeed      = 50.0
	cruiseSpeed   = 10.0
)

// DroneLister 解析 drone_id 占位符时查询机队
type DroneLister interface {
	ListDrones(ctx context.Context) ([]map[string]any, error)
}

// Validator 对照工具目录校验计划
type Validator struct {
	catalog *registry.Registry
	drones  DroneLister
	logger  *log.Logger
}

// New 创建 Validator；drones 可为 nil（占位符解析将被跳过）
func New(catalog *registry.Registry, drones DroneLister, logger *log.Logger) *Validator {
	return &Validator{catalog: catalog, drones: drones, logger: logger}
}

// ValidateAndFix 校验并修复计划。
// is_valid 仅在存在未能解析的 tool_not_found 时为 false；
// 通过相似名建议解析掉的缺失工具不影响有效性。
func (v *Validator) ValidateAndFix(ctx context.Context, p *plan.Plan) *plan.ValidatedPlan {
	out := &plan.ValidatedPlan{
		PlanID:             p.PlanID,
		NormalizedSteps:    make([]plan.PlanStep, 0, len(p.Steps)),
		Fixes:              []plan.ValidationFix{},
		ValidationWarnings: []string{},
		IsValid:            true,
	}

	for _, step := range p.Steps {
		normalized := step.Clone()

		if _, ok := v.catalog.Get(step.ToolName); !ok {
			fix := plan.ValidationFix{
				StepID:        step.StepID,
				FixType:       plan.FixToolNotFound,
				OriginalValue: plan.StringValue(step.ToolName),
				FixedValue:    plan.NullValue(),
				Reason:        fmt.Sprintf("Tool '%s' not found in available tools", step.ToolName),
			}
			metrics.ValidationFixTotal.WithLabelValues(plan.FixToolNotFound).Inc()

			suggested := v.suggestAlternative(step.ToolName)
			if suggested != "" {
				normalized.ToolName = suggested
				fix.FixedValue = plan.StringValue(suggested)
				fix.Reason += fmt.Sprintf(" -> Suggested alternative: %s", suggested)
				out.Fixes = append(out.Fixes, fix)
				out.ValidationWarnings = append(out.ValidationWarnings,
					fmt.Sprintf("Step %s: Tool '%s' not found, using '%s' instead", step.StepID, step.ToolName, suggested))
			} else {
				normalized.Status = plan.StepSkipped
				out.Fixes = append(out.Fixes, fix)
				out.ValidationWarnings = append(out.ValidationWarnings,
					fmt.Sprintf("Step %s: Tool '%s' not found, skipping step", step.StepID, step.ToolName))
				out.IsValid = false
				out.NormalizedSteps = append(out.NormalizedSteps, normalized)
				continue
			}
		}

		fixes, warnings := v.fixParameters(ctx, &normalized)
		out.Fixes = append(out.Fixes, fixes...)
		out.ValidationWarnings = append(out.ValidationWarnings, warnings...)
		out.Fixes = append(out.Fixes, v.fixPhysicalMeaning(&normalized)...)

		normalized.Status = plan.StepValidated
		out.NormalizedSteps = append(out.NormalizedSteps, normalized)
	}

	v.logger.Info("plan validated",
		"plan_id", p.PlanID,
		"is_valid", out.IsValid,
		"fixes", len(out.Fixes),
		"warnings", len(out.ValidationWarnings))
	return out
}

// fixParameters 通用参数修复：占位符 drone_id、高度范围、坐标类型。
// 解析不掉的占位符不算修复，但要给出 warning
func (v *Validator) fixParameters(ctx context.Context, step *plan.PlanStep) ([]plan.ValidationFix, []string) {
	var fixes []plan.ValidationFix
	var warnings []string

	if droneID, ok := step.Args["drone_id"]; ok && droneID.Kind == plan.KindString && strings.HasPrefix(droneID.Str, "$") {
		if resolved, ok := v.resolveDroneRef(ctx); ok {
			step.Args["drone_id"] = plan.StringValue(resolved)
			fixes = append(fixes, plan.ValidationFix{
				StepID:        step.StepID,
				FixType:       plan.FixResolvedReference,
				OriginalValue: droneID,
				FixedValue:    plan.StringValue(resolved),
				Reason:        "Resolved drone_id reference",
			})
			metrics.ValidationFixTotal.WithLabelValues(plan.FixResolvedReference).Inc()
		} else {
			warnings = append(warnings,
				fmt.Sprintf("Step %s: could not resolve drone_id placeholder '%s'", step.StepID, droneID.Str))
		}
	}

	if altitude, ok := step.Args["altitude"]; ok {
		if a, isNum := altitude.AsNumber(); isNum {
			switch {
			case a < 0:
				step.Args["altitude"] = plan.NumberValue(minAltitude)
				fixes = append(fixes, plan.ValidationFix{
					StepID:        step.StepID,
					FixType:       plan.FixInvalidRange,
					OriginalValue: altitude,
					FixedValue:    plan.NumberValue(minAltitude),
					Reason:        "Altitude cannot be negative, set to minimum",
				})
				metrics.ValidationFixTotal.WithLabelValues(plan.FixInvalidRange).Inc()
			case a > maxAltitude:
				step.Args["altitude"] = plan.NumberValue(cappedAlt)
				fixes = append(fixes, plan.ValidationFix{
					StepID:        step.StepID,
					FixType:       plan.FixInvalidRange,
					OriginalValue: altitude,
					FixedValue:    plan.NumberValue(cappedAlt),
					Reason:        "Altitude exceeds reasonable maximum, capped",
				})
				metrics.ValidationFixTotal.WithLabelValues(plan.FixInvalidRange).Inc()
			}
		}
	}

	for _, key := range []string{"x", "y", "z"} {
		coord, ok := step.Args[key]
		if !ok || coord.Kind != plan.KindString {
			continue
		}
		if f, err := strconv.ParseFloat(coord.Str, 64); err == nil {
			// 数字字符串静默转为数值，不记修复
			step.Args[key] = plan.NumberValue(f)
		} else {
			step.Args[key] = plan.NumberValue(0)
			fixes = append(fixes, plan.ValidationFix{
				StepID:        step.StepID,
				FixType:       plan.FixInvalidType,
				OriginalValue: coord,
				FixedValue:    plan.NumberValue(0),
				Reason:        fmt.Sprintf("Could not convert %s to number, set to 0", key),
			})
			metrics.ValidationFixTotal.WithLabelValues(plan.FixInvalidType).Inc()
		}
	}

	return fixes, warnings
}

// resolveDroneRef 取机队第一架无人机的 id（或 name）。
// 查询失败或机队为空时放弃解析，占位符原样保留交给执行期报错。
func (v *Validator) resolveDroneRef(ctx context.Context) (string, bool) {
	if v.drones == nil {
		return "", false
	}
	drones, err := v.drones.ListDrones(ctx)
	if err != nil {
		v.logger.Debug("drone_id reference unresolved, fleet query failed", "error", err)
		return "", false
	}
	if len(drones) == 0 {
		return "", false
	}
	if id, ok := drones[0]["id"].(string); ok && id != "" {
		return id, true
	}
	if name, ok := drones[0]["name"].(string); ok && name != "" {
		return name, true
	}
	return "", false
}

// fixPhysicalMeaning 物理合理性：移动类工具的超远坐标、速度安全带
func (v *Validator) fixPhysicalMeaning(step *plan.PlanStep) []plan.ValidationFix {
	var fixes []plan.ValidationFix

	if step.ToolName == "move_to" || step.ToolName == "move_towards" {
		for _, key := range []string{"x", "y", "z"} {
			coord, ok := step.Args[key]
			if !ok {
				continue
			}
			if f, isNum := coord.AsNumber(); isNum && math.Abs(f) > maxCoordinate {
				step.Args[key] = plan.NumberValue(0)
				fixes = append(fixes, plan.ValidationFix{
					StepID:        step.StepID,
					FixType:       plan.FixPhysicallyUnreasonable,
					OriginalValue: coord,
					FixedValue:    plan.NumberValue(0),
					Reason:        fmt.Sprintf("%s coordinate too large, likely error", strings.ToUpper(key)),
				})
				metrics.ValidationFixTotal.WithLabelValues(plan.FixPhysicallyUnreasonable).Inc()
			}
		}
	}

	if speed, ok := step.Args["speed"]; ok {
		if s, isNum := speed.AsNumber(); isNum {
			switch {
			case s > maxSpeed:
				step.Args["speed"] = plan.NumberValue(cruiseSpeed)
				fixes = append(fixes, plan.ValidationFix{
					StepID:        step.StepID,
					FixType:       plan.FixPhysicallyUnreasonable,
					OriginalValue: speed,
					FixedValue:    plan.NumberValue(cruiseSpeed),
					Reason:        "Speed too high, capped to safe value",
				})
				metrics.ValidationFixTotal.WithLabelValues(plan.FixPhysicallyUnreasonable).Inc()
			case s <= 0:
				step.Args["speed"] = plan.NumberValue(minSpeed)
				fixes = append(fixes, plan.ValidationFix{
					StepID:        step.StepID,
					FixType:       plan.FixPhysicallyUnreasonable,
					OriginalValue: speed,
					FixedValue:    plan.NumberValue(minSpeed),
					Reason:        "Speed must be positive, set to minimum",
				})
				metrics.ValidationFixTotal.WithLabelValues(plan.FixPhysicallyUnreasonable).Inc()
			}
		}
	}

	return fixes
}

// suggestAlternative 相似名建议：先双向子串匹配，再 5 字符前缀匹配。
// 比较前统一小写并去掉下划线，让 "takeoff" 能命中 "take_off" 这类写法差异
func (v *Validator) suggestAlternative(toolName string) string {
	needle := normalizeToolName(toolName)
	names := v.catalog.Names()

	for _, name := range names {
		candidate := normalizeToolName(name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return name
		}
	}

	prefix := needle
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	for _, name := range names {
		if strings.HasPrefix(normalizeToolName(name), prefix) {
			return name
		}
	}

	return ""
}

func normalizeToolName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}
