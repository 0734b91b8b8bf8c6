package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookingOperations.WithLabelValues("create", OutcomeSuccess).Inc()
	m.BookingOperations.WithLabelValues("create", OutcomeSuccess).Inc()
	m.RateLimited.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingOperations.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))

	// a second set on a fresh registry must not collide
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}

func TestOutcome(t *testing.T) {
	clientErr := errors.New("bad input")
	isClient := func(err error) bool { return errors.Is(err, clientErr) }

	assert.Equal(t, OutcomeSuccess, Outcome(nil, isClient))
	assert.Equal(t, OutcomeRejected, Outcome(clientErr, isClient))
	assert.Equal(t, OutcomeError, Outcome(errors.New("db down"), isClient))
	assert.Equal(t, OutcomeError, Outcome(clientErr, nil))
}
