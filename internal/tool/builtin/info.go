package builtin

import (
	"context"

	"uav-platform/internal/tool"
	"uav-platform/internal/uav"
)

// newListDronesTool list_drones：列出会话内全部无人机
func newListDronesTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "list_drones",
		description: "List all available drones in the current session with their status, battery level, and position.",
		schema:      tool.Schema{Type: "object"},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			return client.ListDrones(ctx)
		},
	}
}

// newGetSessionInfoTool get_session_info：当前会话信息
func newGetSessionInfoTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "get_session_info",
		description: "Get current session information including task type, statistics, and status.",
		schema:      tool.Schema{Type: "object"},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			return client.GetCurrentSession(ctx)
		},
	}
}

// newGetTaskProgressTool get_task_progress：任务进度
func newGetTaskProgressTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "get_task_progress",
		description: "Get mission task progress including completion percentage and status.",
		schema:      tool.Schema{Type: "object"},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			return client.GetTaskProgress(ctx, "")
		},
	}
}

// newGetWeatherTool get_weather：天气状况
func newGetWeatherTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "get_weather",
		description: "Get current weather conditions including wind speed, visibility, and weather type.",
		schema:      tool.Schema{Type: "object"},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			return client.GetWeather(ctx)
		},
	}
}

// newGetDroneStatusTool get_drone_status：单机详细状态
func newGetDroneStatusTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "get_drone_status",
		description: "Get detailed status of a specific drone including position, battery, heading, and visited targets.",
		schema:      droneOnlySchema("Query drone status"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.GetDroneStatus(ctx, droneID)
		},
	}
}

// newGetNearbyEntitiesTool get_nearby_entities：感知半径内的实体
func newGetNearbyEntitiesTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "get_nearby_entities",
		description: "Get drones, targets, and obstacles near a specific drone (within its perception radius).",
		schema:      droneOnlySchema("Query nearby entities"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.GetNearbyEntities(ctx, droneID)
		},
	}
}
