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

package builtin

import (
	"uav-platform/internal/tool"
	"uav-platform/internal/tool/registry"
	"uav-platform/internal/uav"
)

// RegisterAll 把全部内置工具注册进目录；client 为共享的机队 API 客户端
func RegisterAll(r *registry.Registry, client *uav.Client) {
	for _, t := range allTools(client) {
		r.Register(t)
	}
}

// NewCatalog 构建并填充一个新目录
func NewCatalog(client *uav.Client) *registry.Registry {
	r := registry.NewRegistry()
	RegisterAll(r, client)
	return r
}

func allTools(client *uav.Client) []tool.Tool {
	return []tool.Tool{
		// 信息查询
		newListDronesTool(client),
		newGetSessionInfoTool(client),
		newGetTaskProgressTool(client),
		newGetWeatherTool(client),
		newGetDroneStatusTool(client),
		newGetNearbyEntitiesTool(client),
		// 飞行控制
		newTakeOffTool(client),
		newLandTool(client),
		newMoveToTool(client),
		newMoveTowardsTool(client),
		newChangeAltitudeTool(client),
		newHoverTool(client),
		newRotateTool(client),
		newReturnHomeTool(client),
		// 维护
		newSetHomeTool(client),
		newCalibrateTool(client),
		newTakePhotoTool(client),
		newChargeTool(client),
		// 通信
		newSendMessageTool(client),
		newBroadcastTool(client),
	}
}
