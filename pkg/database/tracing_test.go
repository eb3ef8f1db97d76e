package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTraceQuery_CompletionIsSafeWithoutTracer(t *testing.T) {
	ctx, done := TraceQuery(context.Background(), "GetProduct", "SELECT FROM products")
	assert.NotNil(t, ctx)

	done(nil)
	done(errors.New("second call must not panic"))
}

func TestTraceQuery_LogsSlowQueries(t *testing.T) {
	var buf bytes.Buffer
	SetSlowQueryLogging(time.Nanosecond, slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetSlowQueryLogging(0, nil)

	_, done := TraceQuery(context.Background(), "ListOrders", "SELECT FROM orders")
	time.Sleep(time.Millisecond)
	done(nil)

	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "ListOrders")
}

func TestTraceQuery_ThresholdDisabled(t *testing.T) {
	var buf bytes.Buffer
	SetSlowQueryLogging(0, slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetSlowQueryLogging(0, nil)

	_, done := TraceQuery(context.Background(), "GetUser", "SELECT FROM users")
	done(nil)

	assert.Empty(t, buf.String())
}
