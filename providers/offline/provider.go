// 包 offline 提供无凭证环境下的确定性 Provider。
// 它不访问网络，根据用户提示词中的标记字段拼出最小可用的
// schemas 响应，供本地开发、CLI 演示与测试使用。
package offline

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/BaSui01/schemaforge/llm"
)

type OfflineProvider struct{}

func New() *OfflineProvider { return &OfflineProvider{} }

func (p *OfflineProvider) Name() string { return "offline" }

func (p *OfflineProvider) Available() bool { return true }

func (p *OfflineProvider) HealthCheck(_ context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true, Latency: time.Microsecond}, nil
}

// Generate 返回由提示词字段拼装的固定响应。输出刻意包裹在
// markdown 代码围栏里，使离线路径也覆盖解析器的围栏分支。
func (p *OfflineProvider) Generate(_ context.Context, req *llm.GenerateRequest) (string, error) {
	schema := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebPage",
	}
	if title := promptField(req.User, "Title:"); title != "" {
		schema["name"] = title
		schema["headline"] = title
	}
	if url := promptField(req.User, "URL:"); url != "" {
		schema["url"] = url
	}
	if desc := promptField(req.User, "Description:"); desc != "" {
		schema["description"] = desc
	}

	payload, _ := json.Marshal(map[string]any{"schemas": []any{schema}})
	return "```json\n" + string(payload) + "\n```", nil
}

// promptField 提取用户提示词中 "Label: value" 形式的一行。
func promptField(prompt, label string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}
