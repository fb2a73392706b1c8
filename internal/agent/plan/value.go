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

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind Value 的类型标签
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value 步骤参数的带标签联合类型：string | number | bool | null | list | map。
// Planner 输出的参数包是异构的，用显式标签代替 any，便于校验层按类型穷举处理。
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	List []Value
	Map  map[string]Value
}

// StringValue 构造字符串 Value
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue 构造数值 Value
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// BoolValue 构造布尔 Value
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NullValue 构造 null Value
func NullValue() Value { return Value{Kind: KindNull} }

// FromAny 从任意 JSON 兼容值构造 Value
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return NullValue()
	case Value:
		return x
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case json.Number:
		f, _ := x.Float64()
		return NumberValue(f)
	case []any:
		list := make([]Value, 0, len(x))
		for _, item := range x {
			list = append(list, FromAny(item))
		}
		return Value{Kind: KindList, List: list}
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			m[k] = FromAny(item)
		}
		return Value{Kind: KindMap, Map: m}
	default:
		return StringValue(fmt.Sprintf("%v", x))
	}
}

// Interface 还原为 JSON 兼容的 any 值（供工具调用）
func (v Value) Interface() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindList:
		list := make([]any, 0, len(v.List))
		for _, item := range v.List {
			list = append(list, item.Interface())
		}
		return list
	case KindMap:
		m := make(map[string]any, len(v.Map))
		for k, item := range v.Map {
			m[k] = item.Interface()
		}
		return m
	default:
		return nil
	}
}

// Clone 深拷贝
func (v Value) Clone() Value {
	switch v.Kind {
	case KindList:
		list := make([]Value, len(v.List))
		for i, item := range v.List {
			list[i] = item.Clone()
		}
		return Value{Kind: KindList, List: list}
	case KindMap:
		m := make(map[string]Value, len(v.Map))
		for k, item := range v.Map {
			m[k] = item.Clone()
		}
		return Value{Kind: KindMap, Map: m}
	default:
		return v
	}
}

// AsNumber 仅当 Kind 为 number 时返回数值
func (v Value) AsNumber() (float64, bool) {
	if v.Kind == KindNumber {
		return v.Num, true
	}
	return 0, false
}

// Text 人类可读形式（供修复原因与日志）
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		b, _ := json.Marshal(v.Num)
		return string(b)
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindNull:
		return "null"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// MarshalJSON 实现 json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON 实现 json.Unmarshaler：按 JSON 字面类型打标签
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = NullValue()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '{':
		var m map[string]Value
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = Value{Kind: KindMap, Map: m}
	case '[':
		var list []Value
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = Value{Kind: KindList, List: list}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case 'n':
		*v = NullValue()
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = NumberValue(f)
	}
	return nil
}

// Args 步骤参数包
type Args map[string]Value

// CloneArgs 深拷贝参数包
func CloneArgs(args Args) Args {
	if args == nil {
		return nil
	}
	out := make(Args, len(args))
	for k, v := range args {
		out[k] = v.Clone()
	}
	return out
}

// ArgsToAny 将参数包还原为 map[string]any（供工具调用）
func ArgsToAny(args Args) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v.Interface()
	}
	return out
}
