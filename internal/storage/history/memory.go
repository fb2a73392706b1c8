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

package history

import (
	"context"
	"sync"
)

// MemoryStore 内存历史存储实现，容量满后丢弃最旧记录
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	maxSize int
}

// NewMemoryStore 创建内存历史存储；maxSize<=0 时用默认 100
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &MemoryStore{maxSize: maxSize}
}

// Append 追加记录
func (s *MemoryStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > s.maxSize {
		s.records = s.records[len(s.records)-s.maxSize:]
	}
	return nil
}

// Recent 返回最近 n 条，新的在前
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.records)
	if n <= 0 || n > total {
		n = total
	}
	out := make([]Record, 0, n)
	for i := total - 1; i >= total-n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Clear 清空历史
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Close 关闭存储
func (s *MemoryStore) Close() error {
	return nil
}
