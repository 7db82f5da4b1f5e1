package extract

import (
	"docuflow/types"
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ParseResponse pulls the JSON object out of a model reply: the first tool
// call's arguments when present, else the outermost {...} span of the text.
func ParseResponse(msg *schema.Message) ([]byte, error) {
	if msg == nil {
		return nil, types.ErrUnparseableResponse
	}
	if len(msg.ToolCalls) > 0 {
		args := strings.TrimSpace(msg.ToolCalls[0].Function.Arguments)
		if isObject(args) {
			return []byte(args), nil
		}
	}

	content := msg.Content
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		if candidate := content[start : end+1]; isObject(candidate) {
			return []byte(candidate), nil
		}
	}
	return nil, types.ErrUnparseableResponse
}

func isObject(s string) bool {
	if !strings.HasPrefix(s, "{") {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &obj) == nil
}
