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

package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"uav-platform/pkg/utils"
)

var (
	codeFenceRe    = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")
	jsonObjectRe   = regexp.MustCompile(`(?s)\{.*\}`)
	lineCommentRe  = regexp.MustCompile(`//.*?\n`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON 从 LLM 回复中提取 JSON 对象。
// 依次尝试：markdown 代码块内容、首个花括号包围的片段、整段文本；
// 清理行/块注释，解析失败时再去掉尾逗号重试一次。
func extractJSON(text string) (json.RawMessage, error) {
	var jsonStr string
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		jsonStr = m[1]
	} else if m := jsonObjectRe.FindString(text); m != "" {
		jsonStr = m
	} else {
		jsonStr = text
	}

	jsonStr = strings.TrimSpace(jsonStr)
	jsonStr = lineCommentRe.ReplaceAllString(jsonStr, "\n")
	jsonStr = blockCommentRe.ReplaceAllString(jsonStr, "")

	if json.Valid([]byte(jsonStr)) {
		return json.RawMessage(jsonStr), nil
	}

	repaired := trailingComma.ReplaceAllString(jsonStr, "$1")
	if json.Valid([]byte(repaired)) {
		return json.RawMessage(repaired), nil
	}

	return nil, fmt.Errorf("failed to parse JSON from LLM output: %s", utils.Truncate(jsonStr, 503))
}
