package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCompletion(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCompletion("reply", 200*time.Millisecond, nil)
	m.ObserveCompletion("reply", time.Second, errors.New("boom"))
	m.ObserveCompletion("analysis", 100*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("reply", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("reply", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("analysis", "ok")))
}

func TestSessionsAndExchanges(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetSessions(3)
	m.IncExchanges()
	m.IncExchanges()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exchanges))
}
