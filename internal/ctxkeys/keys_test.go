package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))

	// Values of another type under the same key are ignored.
	ctx = context.WithValue(context.Background(), KeyRequestID, 42)
	assert.Empty(t, RequestID(ctx))
}
