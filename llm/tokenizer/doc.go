// 包 tokenizer 提供 token 计数能力，供内容预算器控制提示词体积。
// 支持 tiktoken 精确计数与 CJK 估算器回退。
package tokenizer
