package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandlerReady(t *testing.T) {
	h := NewHealthHandler(nil, pingerStub{})
	c, w := newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewHealthHandler(nil, pingerStub{err: errors.New("down")})
	c, w = newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Len(t, c.Errors, 1)
}

func TestHealthHandlerMetricsUnavailable(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	c, _ := newTestContext(http.MethodGet, "/metrics", "")
	h.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
