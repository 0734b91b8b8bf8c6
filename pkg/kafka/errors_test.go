package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("store down", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", errors.New("x")), ErrorTypePermanent},
		{"wrapped permanent", fmt.Errorf("handler: %w", NewPermanentError("bad", nil)), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"io timeout", errors.New("read: i/o timeout"), ErrorTypeTransient},
		{"unknown", errors.New("json: cannot unmarshal"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("flaky", nil)

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.True(t, ShouldRetry(transient, 2, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestKafkaError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := NewTransientError("wrapped", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "wrapped: root", err.Error())
	assert.Equal(t, "transient", ErrorTypeTransient.String())
}
