package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSONObject 清洗并解析 LLM 返回的 JSON 对象。
// 模型偶尔会在对象前后附带 markdown 围栏或说明文字，这里截取
// 首个 '{' 到最后一个 '}' 之间的内容再做严格解析。
func decodeJSONObject(response string, v interface{}) error {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || start > end {
		return fmt.Errorf("no JSON object found in completion")
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to unmarshal completion JSON: %w", err)
	}
	return nil
}
