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

// Package uav 封装无人机编队管理 API 的 HTTP 客户端。
// 所有写操作均为 POST /drones/{id}/command/{name}，参数走 query string。
package uav

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Config 客户端配置
type Config struct {
	BaseURL string
	APIKey  string        // 空则以 USER 角色访问
	Timeout time.Duration // 单次调用超时，0 用默认 30s
	QPS     float64       // 客户端限流，<=0 不限
	Burst   int           // 限流突发额度，<=0 用默认 1
}

// Client 编队 API 客户端；构造后只读，可跨顺序调用复用
type Client struct {
	base    string
	apiKey  string
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient 创建编队 API 客户端
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New()
	httpClient.SetTimeout(timeout)

	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), burst)
	}

	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		limiter: limiter,
	}
}

// request 发送请求并解析 JSON 响应到 out（out 为 nil 时丢弃响应体）
func (c *Client) request(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	r := c.http.R().SetContext(ctx)
	if c.apiKey != "" {
		r.SetHeader("X-API-Key", c.apiKey)
	}
	if len(query) > 0 {
		r.SetQueryParams(query)
	}
	if body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}
	resp, err := r.Execute(method, c.base+path)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("authentication failed: invalid API key")
	case resp.StatusCode() == http.StatusForbidden:
		detail := "Access denied"
		var payload struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Detail != "" {
			detail = payload.Detail
		}
		return fmt.Errorf("permission denied: %s", detail)
	case resp.StatusCode() >= 400:
		return fmt.Errorf("API request failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out == nil || resp.StatusCode() == http.StatusNoContent || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("解析编队 API 响应失败: %w", err)
	}
	return nil
}

func (c *Client) command(ctx context.Context, droneID, name string, query map[string]string) (map[string]any, error) {
	var out map[string]any
	err := c.request(ctx, http.MethodPost, "/drones/"+droneID+"/command/"+name, query, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ListDrones 列出当前会话内所有无人机
func (c *Client) ListDrones(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.request(ctx, http.MethodGet, "/drones", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDroneStatus 查询单架无人机详细状态
func (c *Client) GetDroneStatus(ctx context.Context, droneID string) (map[string]any, error) {
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "/drones/"+droneID, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TakeOff 起飞到指定高度
func (c *Client) TakeOff(ctx context.Context, droneID string, altitude float64) (map[string]any, error) {
	return c.command(ctx, droneID, "take_off", map[string]string{"altitude": formatFloat(altitude)})
}

// Land 原地降落
func (c *Client) Land(ctx context.Context, droneID string) (map[string]any, error) {
	return c.command(ctx, droneID, "land", nil)
}

// MoveTo 移动到绝对坐标
func (c *Client) MoveTo(ctx context.Context, droneID string, x, y, z float64) (map[string]any, error) {
	return c.command(ctx, droneID, "move_to", map[string]string{
		"x": formatFloat(x), "y": formatFloat(y), "z": formatFloat(z),
	})
}

// MoveAlongPath 沿途经点移动
func (c *Client) MoveAlongPath(ctx context.Context, droneID string, waypoints []map[string]float64) (map[string]any, error) {
	var out map[string]any
	err := c.request(ctx, http.MethodPost, "/drones/"+droneID+"/command/move_along_path", nil,
		map[string]any{"waypoints": waypoints}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeAltitude 仅改变高度，保持水平位置
func (c *Client) ChangeAltitude(ctx context.Context, droneID string, altitude float64) (map[string]any, error) {
	return c.command(ctx, droneID, "change_altitude", map[string]string{"altitude": formatFloat(altitude)})
}

// Hover 悬停；duration 为 nil 时持续悬停
func (c *Client) Hover(ctx context.Context, droneID string, duration *float64) (map[string]any, error) {
	query := map[string]string{}
	if duration != nil {
		query["duration"] = formatFloat(*duration)
	}
	return c.command(ctx, droneID, "hover", query)
}

// Rotate 旋转到指定朝向（0-360 度）
func (c *Client) Rotate(ctx context.Context, droneID string, heading float64) (map[string]any, error) {
	return c.command(ctx, droneID, "rotate", map[string]string{"heading": formatFloat(heading)})
}

// MoveTowards 沿方向移动指定距离；heading 为 nil 时用当前朝向，dz 为可选垂直分量
func (c *Client) MoveTowards(ctx context.Context, droneID string, distance float64, heading, dz *float64) (map[string]any, error) {
	query := map[string]string{"distance": formatFloat(distance)}
	if heading != nil {
		query["heading"] = formatFloat(*heading)
	}
	if dz != nil {
		query["dz"] = formatFloat(*dz)
	}
	return c.command(ctx, droneID, "move_towards", query)
}

// ReturnHome 返回 home 位置
func (c *Client) ReturnHome(ctx context.Context, droneID string) (map[string]any, error) {
	return c.command(ctx, droneID, "return_home", nil)
}

// SetHome 将当前位置设为 home
func (c *Client) SetHome(ctx context.Context, droneID string) (map[string]any, error) {
	return c.command(ctx, droneID, "set_home", nil)
}

// Calibrate 校准传感器
func (c *Client) Calibrate(ctx context.Context, droneID string) (map[string]any, error) {
	return c.command(ctx, droneID, "calibrate", nil)
}

// Charge 充电（需已降落）
func (c *Client) Charge(ctx context.Context, droneID string, chargeAmount float64) (map[string]any, error) {
	return c.command(ctx, droneID, "charge", map[string]string{"charge_amount": formatFloat(chargeAmount)})
}

// TakePhoto 拍照
func (c *Client) TakePhoto(ctx context.Context, droneID string) (map[string]any, error) {
	return c.command(ctx, droneID, "take_photo", nil)
}

// SendMessage 向另一架无人机发送消息
func (c *Client) SendMessage(ctx context.Context, droneID, targetDroneID, message string) (map[string]any, error) {
	return c.command(ctx, droneID, "send_message", map[string]string{
		"target_drone_id": targetDroneID, "message": message,
	})
}

// Broadcast 向所有其他无人机广播消息
func (c *Client) Broadcast(ctx context.Context, droneID, message string) (map[string]any, error) {
	return c.command(ctx, droneID, "broadcast", map[string]string{"message": message})
}

// GetCurrentSession 查询当前任务会话
func (c *Client) GetCurrentSession(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "/sessions/current", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSessionData 查询会话内全部实体（无人机、目标、障碍、环境）
func (c *Client) GetSessionData(ctx context.Context, sessionID string) (map[string]any, error) {
	if sessionID == "" {
		sessionID = "current"
	}
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "/sessions/"+sessionID+"/data", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTaskProgress 查询任务完成进度
func (c *Client) GetTaskProgress(ctx context.Context, sessionID string) (map[string]any, error) {
	if sessionID == "" {
		sessionID = "current"
	}
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "/sessions/"+sessionID+"/task-progress", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWeather 查询当前天气
func (c *Client) GetWeather(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "/environments/current", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTargets 查询全部目标
func (c *Client) GetTargets(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.request(ctx, http.MethodGet, "/targets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWaypoints 查询充电站途经点
func (c *Client) GetWaypoints(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.request(ctx, http.MethodGet, "/targets/waypoints", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetObstacles 查询全部障碍物
func (c *Client) GetObstacles(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.request(ctx, http.MethodGet, "/obstacles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNearbyEntities 查询无人机感知半径内的实体
func (c *Client) GetNearbyEntities(ctx context.Context, droneID string) (map[string]any, error) {
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "/drones/"+droneID+"/nearby", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckPointCollision 检测某点是否与障碍物碰撞
func (c *Client) CheckPointCollision(ctx context.Context, x, y, z, safetyMargin float64) (map[string]any, error) {
	var out map[string]any
	err := c.request(ctx, http.MethodPost, "/obstacles/collision/check", nil, map[string]any{
		"point":         map[string]float64{"x": x, "y": y, "z": z},
		"safety_margin": safetyMargin,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckPathCollision 检测路径是否穿过障碍物
func (c *Client) CheckPathCollision(ctx context.Context, startX, startY, startZ, endX, endY, endZ, safetyMargin float64) (map[string]any, error) {
	var out map[string]any
	err := c.request(ctx, http.MethodPost, "/obstacles/collision/path", nil, map[string]any{
		"start":         map[string]float64{"x": startX, "y": startY, "z": startZ},
		"end":           map[string]float64{"x": endX, "y": endY, "z": endZ},
		"safety_margin": safetyMargin,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
