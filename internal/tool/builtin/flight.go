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
	"context"

	"uav-platform/internal/tool"
	"uav-platform/internal/uav"
)

// newTakeOffTool take_off：起飞到指定高度，altitude 缺省 10.0
func newTakeOffTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "take_off",
		description: "Command a drone to take off to a specified altitude. Drone must be on ground.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": droneIDProp,
				"altitude": {Type: "number", Description: "Target altitude in meters (optional, default: 10.0)"},
			},
			Required: []string{"drone_id"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			altitude := floatOrDefault(args, "altitude", 10.0)
			return client.TakeOff(ctx, droneID, altitude)
		},
	}
}

// newLandTool land：原地降落
func newLandTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "land",
		description: "Command a drone to land at its current position.",
		schema:      droneOnlySchema("Land the drone"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.Land(ctx, droneID)
		},
	}
}

// newMoveToTool move_to：飞到绝对坐标 (x, y, z)
func newMoveToTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "move_to",
		description: "Move a drone to specific 3D coordinates (x, y, z).",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": droneIDProp,
				"x":        {Type: "number", Description: "Target X coordinate in meters"},
				"y":        {Type: "number", Description: "Target Y coordinate in meters"},
				"z":        {Type: "number", Description: "Target Z coordinate (altitude) in meters"},
			},
			Required: []string{"drone_id", "x", "y", "z"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			x, err := requireFloat(args, "x")
			if err != nil {
				return nil, err
			}
			y, err := requireFloat(args, "y")
			if err != nil {
				return nil, err
			}
			z, err := requireFloat(args, "z")
			if err != nil {
				return nil, err
			}
			return client.MoveTo(ctx, droneID, x, y, z)
		},
	}
}

// newMoveTowardsTool move_towards：按航向相对移动
func newMoveTowardsTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "move_towards",
		description: "Move a drone a specific distance in a direction.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": droneIDProp,
				"distance": {Type: "number", Description: "Distance to move in meters"},
				"heading":  {Type: "number", Description: "Heading direction in degrees 0-360 (optional)"},
				"dz":       {Type: "number", Description: "Vertical component in meters (optional)"},
			},
			Required: []string{"drone_id", "distance"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			distance, err := requireFloat(args, "distance")
			if err != nil {
				return nil, err
			}
			heading, err := optionalFloat(args, "heading")
			if err != nil {
				return nil, err
			}
			dz, err := optionalFloat(args, "dz")
			if err != nil {
				return nil, err
			}
			return client.MoveTowards(ctx, droneID, distance, heading, dz)
		},
	}
}

// newChangeAltitudeTool change_altitude：保持水平位置改变高度
func newChangeAltitudeTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "change_altitude",
		description: "Change a drone's altitude while maintaining X/Y position.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": droneIDProp,
				"altitude": {Type: "number", Description: "Target altitude in meters"},
			},
			Required: []string{"drone_id", "altitude"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			altitude, err := requireFloat(args, "altitude")
			if err != nil {
				return nil, err
			}
			return client.ChangeAltitude(ctx, droneID, altitude)
		},
	}
}

// newHoverTool hover：悬停，可选时长
func newHoverTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "hover",
		description: "Command a drone to hover at its current position.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": droneIDProp,
				"duration": {Type: "number", Description: "Duration in seconds to hover (optional)"},
			},
			Required: []string{"drone_id"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			duration, err := optionalFloat(args, "duration")
			if err != nil {
				return nil, err
			}
			return client.Hover(ctx, droneID, duration)
		},
	}
}

// newRotateTool rotate：转向指定航向，0=北 90=东
func newRotateTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "rotate",
		description: "Rotate a drone to face a specific direction. 0=North, 90=East, 180=South, 270=West.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": droneIDProp,
				"heading":  {Type: "number", Description: "Target heading in degrees 0-360"},
			},
			Required: []string{"drone_id", "heading"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			heading, err := requireFloat(args, "heading")
			if err != nil {
				return nil, err
			}
			return client.Rotate(ctx, droneID, heading)
		},
	}
}

// newReturnHomeTool return_home：返航
func newReturnHomeTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "return_home",
		description: "Command a drone to return to its home position.",
		schema:      droneOnlySchema("Return the drone to home"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.ReturnHome(ctx, droneID)
		},
	}
}

// newSetHomeTool set_home：把当前位置设为新的 home
func newSetHomeTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "set_home",
		description: "Set the drone's current position as its new home position.",
		schema:      droneOnlySchema("Set home position"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.SetHome(ctx, droneID)
		},
	}
}

// newCalibrateTool calibrate：传感器校准
func newCalibrateTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "calibrate",
		description: "Calibrate the drone's sensors.",
		schema:      droneOnlySchema("Calibrate sensors"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.Calibrate(ctx, droneID)
		},
	}
}

// newTakePhotoTool take_photo：拍照
func newTakePhotoTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "take_photo",
		description: "Command a drone to take a photo.",
		schema:      droneOnlySchema("Take a photo"),
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			return client.TakePhoto(ctx, droneID)
		},
	}
}

// newChargeTool charge：充电，需已降落在充电站
func newChargeTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "charge",
		description: "Command a drone to charge its battery. Drone must be landed at a charging station.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id":      droneIDProp,
				"charge_amount": {Type: "number", Description: "Amount to charge in percent"},
			},
			Required: []string{"drone_id", "charge_amount"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			amount, err := requireFloat(args, "charge_amount")
			if err != nil {
				return nil, err
			}
			return client.Charge(ctx, droneID, amount)
		},
	}
}
