package tokenizer

// Tokenizer 是统一的 token 计数接口。
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数。
	CountTokens(text string) (int, error)

	// Name 返回分词器的名称。
	Name() string
}

// ForEncoding 返回指定编码的 tiktoken 分词器；
// 编码数据无法加载时回退到估算器，保证预算器永不报错。
func ForEncoding(encoding string) Tokenizer {
	t := NewTiktokenTokenizer(encoding)
	if _, err := t.CountTokens("probe"); err != nil {
		return NewEstimatorTokenizer()
	}
	return t
}
