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

// Package builtin 内置无人机工具目录：飞控、信息查询、机间通信。
// 每个工具把参数包转成一次机队 API 调用；目录在会话启动时一次注册，运行期不变。
package builtin

import (
	"context"
	"fmt"

	"uav-platform/internal/tool"
	"uav-platform/pkg/errors"
)

// apiTool 绑定机队 API 的工具实现；invoke 闭包持有共享客户端
type apiTool struct {
	name        string
	description string
	schema      tool.Schema
	invoke      func(ctx context.Context, args map[string]any) (any, error)
}

// Name 实现 tool.Tool
func (t *apiTool) Name() string { return t.name }

// Description 实现 tool.Tool
func (t *apiTool) Description() string { return t.description }

// Schema 实现 tool.Tool
func (t *apiTool) Schema() tool.Schema { return t.schema }

// Invoke 实现 tool.Tool
func (t *apiTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return t.invoke(ctx, args)
}

// requireString 取必填字符串参数，空或缺失报错
func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", errors.Wrapf(errors.ErrInvalidArg, "%s is required", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.Wrapf(errors.ErrInvalidArg, "%s is required", key)
	}
	return s, nil
}

// requireFloat 取必填数值参数
func requireFloat(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, errors.Wrapf(errors.ErrInvalidArg, "%s is required", key)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidArg, "%s must be a number", key)
	}
	return f, nil
}

// optionalFloat 取可选数值参数；缺失返回 nil
func optionalFloat(args map[string]any, key string) (*float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidArg, "%s must be a number", key)
	}
	return &f, nil
}

// floatOrDefault 取数值参数，缺失时用默认值
func floatOrDefault(args map[string]any, key string, def float64) float64 {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	f, err := toFloat(v)
	if err != nil {
		return def
	}
	return f
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

var droneIDProp = tool.SchemaProperty{Type: "string", Description: "The ID of the drone"}

func droneOnlySchema(description string) tool.Schema {
	return tool.Schema{
		Type:        "object",
		Description: description,
		Properties:  map[string]tool.SchemaProperty{"drone_id": droneIDProp},
		Required:    []string{"drone_id"},
	}
}
