package schema

import (
	"encoding/json"
	"strings"

	"github.com/BaSui01/schemaforge/llm"
)

// envelope 是模型被要求输出的顶层结构。
type envelope struct {
	Schemas []map[string]any `json:"schemas"`
}

// ExtractSchemas 从模型原始文本中恢复 schemas 数组。
// 依次尝试：纯 JSON → markdown 代码围栏内的 JSON → 散文中第一个
// 配平的 {...} 片段。恢复不出合法 JSON 时返回 ErrParseFailure；
// schemas 数组为空时返回 ErrEmptyResult。两者都不可重试。
//
// 解析失败绝不向下游传播半成品：要么得到完整的候选列表，要么报错。
func ExtractSchemas(raw string, provider string) ([]Schema, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, llm.NewError(llm.ErrParseFailure, provider, 0, false)
	}

	candidates := []string{raw}
	if fenced := extractFenced(raw); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if braced := extractBalanced(raw); braced != "" {
		candidates = append(candidates, braced)
	}

	for _, c := range candidates {
		var env envelope
		if err := json.Unmarshal([]byte(c), &env); err != nil {
			continue
		}
		if env.Schemas == nil {
			continue
		}
		if len(env.Schemas) == 0 {
			return nil, llm.NewError(llm.ErrEmptyResult, provider, 0, false)
		}
		out := make([]Schema, 0, len(env.Schemas))
		for _, m := range env.Schemas {
			out = append(out, Schema(m))
		}
		return out, nil
	}

	return nil, llm.NewError(llm.ErrParseFailure, provider, 0, false)
}

// extractFenced 取第一个 markdown 代码围栏内的内容。
// 围栏语言标记（```json 等）被忽略。
func extractFenced(raw string) string {
	start := strings.Index(raw, "```")
	if start < 0 {
		return ""
	}
	rest := raw[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// 跳过围栏行剩余部分（语言标记）
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// extractBalanced 从第一个 '{' 起扫描配平的大括号片段。
// 字符串字面量内的大括号与转义符被正确跳过。
func extractBalanced(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1]
				}
			}
		}
	}
	return ""
}
