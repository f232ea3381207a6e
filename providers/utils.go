package providers

import "github.com/BaSui01/schemaforge/llm"

// ChooseModel selects the model to use based on priority:
// 1. Request model (if specified in GenerateRequest)
// 2. Config model (if specified in provider configuration)
// 3. Default model (provider-specific default)
func ChooseModel(req *llm.GenerateRequest, configModel string, defaultModel string) string {
	// Priority 1: Request model
	if req != nil && req.Model != "" {
		return req.Model
	}

	// Priority 2: Config model
	if configModel != "" {
		return configModel
	}

	// Priority 3: Default model
	return defaultModel
}

// ChooseMaxTokens 返回生成上限；未指定时用缺省值。
func ChooseMaxTokens(req *llm.GenerateRequest) int {
	if req != nil && req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return 4096
}

// ChooseTemperature 返回采样温度。为最大化确定性，缺省固定为接近零的低值。
func ChooseTemperature(req *llm.GenerateRequest) float32 {
	if req != nil && req.Temperature > 0 {
		return req.Temperature
	}
	return 0.1
}
