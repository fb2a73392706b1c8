package builtin

import (
	"context"

	"uav-platform/internal/tool"
	"uav-platform/internal/uav"
)

// newSendMessageTool send_message：机间单播
func newSendMessageTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "send_message",
		description: "Send a message from one drone to another.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id":        {Type: "string", Description: "The ID of the sender drone"},
				"target_drone_id": {Type: "string", Description: "The ID of the recipient drone"},
				"message":         {Type: "string", Description: "The message content"},
			},
			Required: []string{"drone_id", "target_drone_id", "message"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			targetID, err := requireString(args, "target_drone_id")
			if err != nil {
				return nil, err
			}
			message, err := requireString(args, "message")
			if err != nil {
				return nil, err
			}
			return client.SendMessage(ctx, droneID, targetID, message)
		},
	}
}

// newBroadcastTool broadcast：机间广播
func newBroadcastTool(client *uav.Client) tool.Tool {
	return &apiTool{
		name:        "broadcast",
		description: "Broadcast a message from one drone to all other drones.",
		schema: tool.Schema{
			Type: "object",
			Properties: map[string]tool.SchemaProperty{
				"drone_id": {Type: "string", Description: "The ID of the sender drone"},
				"message":  {Type: "string", Description: "The message content"},
			},
			Required: []string{"drone_id", "message"},
		},
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			droneID, err := requireString(args, "drone_id")
			if err != nil {
				return nil, err
			}
			message, err := requireString(args, "message")
			if err != nil {
				return nil, err
			}
			return client.Broadcast(ctx, droneID, message)
		},
	}
}
