package llm

// 每个错误类别的固定用户文案。管线对外只暴露这些文案，
// 上游返回的原始错误体仅进入日志。
var userMessages = map[ErrorCode]string{
	ErrUnauthorized:    "The AI provider rejected our credentials. Please contact support.",
	ErrForbidden:       "The AI provider denied this request. Please contact support.",
	ErrNotFound:        "The configured AI model could not be found. Please contact support.",
	ErrPayloadTooLarge: "The page content is too large to process. Try a shorter page.",
	ErrRateLimited:     "The generation service is receiving too many requests. Please try again shortly.",
	ErrUpstreamError:   "The AI provider returned an unexpected error. Please try again.",
	ErrModelOverloaded: "The AI provider is temporarily overloaded. Please try again in a few minutes.",
	ErrParseFailure:    "The AI response could not be understood. Please try again.",
	ErrEmptyResult:     "No structured data could be generated for this page.",
	ErrUnavailable:     "Structured data generation is not configured. Please contact support.",
	ErrUnknown:         "The generation request failed unexpectedly. Please try again.",
}

// UserMessage 返回错误码对应的固定用户文案。
func UserMessage(code ErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[ErrUnknown]
}

// NewError 构造携带固定用户文案的错误。
func NewError(code ErrorCode, provider string, status int, retryable bool) *Error {
	return &Error{
		Code:       code,
		Message:    UserMessage(code),
		HTTPStatus: status,
		Retryable:  retryable,
		Provider:   provider,
	}
}
