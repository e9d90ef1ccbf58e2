package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMQHeaderCarrier(t *testing.T) {
	c := NewMQHeaderCarrier(nil)
	c.Set("traceparent", "00-abc-def-01")

	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent"}, c.Keys())
}

func TestMQHeaderCarrier_IgnoresNonStringValues(t *testing.T) {
	c := NewMQHeaderCarrier(map[string]interface{}{"x-retry": int32(3)})
	assert.Equal(t, "", c.Get("x-retry"))
}
