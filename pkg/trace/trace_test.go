package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestGenerateTraceIDUnique(t *testing.T) {
	a, b := GenerateTraceID(), GenerateTraceID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestFromHeaderPrefersTraceHeader(t *testing.T) {
	assert.Equal(t, "t1", FromHeader("t1", "r1"))
	assert.Equal(t, "r1", FromHeader("", "r1"))
	assert.Equal(t, "", FromHeader("", ""))
}
