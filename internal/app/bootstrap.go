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

package app

import (
	"context"
	"fmt"
	"time"

	"uav-platform/internal/storage/history"
	"uav-platform/internal/uav"
	"uav-platform/pkg/config"
	"uav-platform/pkg/log"
)

// Bootstrap 统一初始化：供 api 与 cli 复用，避免在 cmd 内写装配逻辑
type Bootstrap struct {
	Config  *config.Config
	Logger  *log.Logger
	Fleet   *uav.Client
	History history.Store
}

// NewBootstrap 根据配置创建 Bootstrap（日志/编队客户端/历史存储）
func NewBootstrap(cfg *config.Config) (*Bootstrap, error) {
	logCfg := &log.Config{}
	if cfg != nil {
		logCfg.Level = cfg.Log.Level
		logCfg.Format = cfg.Log.Format
		logCfg.File = cfg.Log.File
	}
	logger, err := log.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化日志failed: %w", err)
	}

	fleetCfg := uav.Config{}
	if cfg != nil {
		fleetCfg.BaseURL = cfg.UAV.BaseURL
		fleetCfg.APIKey = cfg.UAV.APIKey
		fleetCfg.QPS = cfg.UAV.QPS
		fleetCfg.Burst = cfg.UAV.Burst
		if cfg.UAV.Timeout != "" {
			if d, err := time.ParseDuration(cfg.UAV.Timeout); err == nil && d > 0 {
				fleetCfg.Timeout = d
			}
		}
	}
	fleet := uav.NewClient(fleetCfg)

	// type=memory 或空时用进程内历史；type=redis 时连接 Redis
	var store history.Store
	if cfg != nil && cfg.History.Type == "redis" {
		store, err = history.NewRedisStore(context.Background(), history.RedisConfig{
			Addr:     cfg.History.Addr,
			DB:       cfg.History.DB,
			Password: cfg.History.Password,
			Key:      cfg.History.Key,
			MaxSize:  cfg.History.MaxSize,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化历史存储failed: %w", err)
		}
	} else {
		maxSize := 0
		if cfg != nil {
			maxSize = cfg.History.MaxSize
		}
		store = history.NewMemoryStore(maxSize)
	}

	return &Bootstrap{
		Config:  cfg,
		Logger:  logger,
		Fleet:   fleet,
		History: store,
	}, nil
}
