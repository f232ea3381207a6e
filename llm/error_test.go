package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError_CarriesFixedUserMessage(t *testing.T) {
	e := NewError(ErrModelOverloaded, "anthropic", 529, true)

	assert.Equal(t, ErrModelOverloaded, e.Code)
	assert.Equal(t, "anthropic", e.Provider)
	assert.Equal(t, 529, e.HTTPStatus)
	assert.True(t, e.Retryable)
	// 文案固定，不携带上游细节
	assert.Equal(t, UserMessage(ErrModelOverloaded), e.Error())
	assert.NotContains(t, e.Error(), "529")
}

func TestUserMessage_UnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, UserMessage(ErrUnknown), UserMessage(ErrorCode("NOPE")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrRateLimited, CodeOf(NewError(ErrRateLimited, "", 429, true)))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(NewError(ErrRateLimited, "", 429, true)))
}

// 每个错误码都必须有对应的用户文案。
func TestUserMessages_CoverAllCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrUnauthorized, ErrForbidden, ErrNotFound, ErrPayloadTooLarge,
		ErrRateLimited, ErrUpstreamError, ErrModelOverloaded,
		ErrParseFailure, ErrEmptyResult, ErrUnavailable, ErrUnknown,
	}
	for _, code := range codes {
		msg, ok := userMessages[code]
		assert.True(t, ok, string(code))
		assert.NotEmpty(t, msg, string(code))
	}
}
