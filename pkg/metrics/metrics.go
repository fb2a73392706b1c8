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

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API/CLI 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		PipelineDuration, PipelineTotal,
		ValidationFixTotal, StepTotal, ToolDuration,
	)
}

// PipelineDuration 流水线各阶段耗时（秒）
var PipelineDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "uav_pipeline_duration_seconds",
		Help:    "流水线阶段耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"stage"}, // plan | validate | execute
)

// PipelineTotal 流水线调用总数（按最终状态）
var PipelineTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uav_pipeline_total",
		Help: "流水线调用总数（按最终状态）",
	},
	[]string{"status"}, // completed | partial | failed | planning_failed | validation_failed
)

// ValidationFixTotal 校验修复总数（按修复类型）
var ValidationFixTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uav_validation_fix_total",
		Help: "校验修复总数（按修复类型）",
	},
	[]string{"fix_type"},
)

// StepTotal 步骤执行总数（按结果）
var StepTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uav_step_total",
		Help: "计划步骤执行总数（按结果）",
	},
	[]string{"status"}, // completed | failed | skipped
)

// ToolDuration 工具调用耗时（秒）
var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "uav_tool_duration_seconds",
		Help:    "工具调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 HTTP 层复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
