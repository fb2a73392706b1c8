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

// Package history 指令历史存储：有界、只追加，供会话总结与审计查询。
package history

import (
	"context"
	"time"
)

// Record 一次流水线调用的留痕
type Record struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	PlanID      string    `json:"plan_id"`
	FinalStatus string    `json:"final_status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Store 历史存储接口
type Store interface {
	// Append 追加一条记录；超过容量时淘汰最旧的
	Append(ctx context.Context, rec Record) error
	// Recent 返回最近 n 条记录，新的在前；n<=0 返回全部
	Recent(ctx context.Context, n int) ([]Record, error)
	// Clear 清空历史
	Clear(ctx context.Context) error
	// Close 关闭存储连接
	Close() error
}
