package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rststore/storefront/pkg/errors"
)

func upstreamResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func envelopeBody(code, message string) string {
	return `{"error":{"code":"` + code + `","message":"` + message + `"}}`
}

func TestParseResponseError_MapsEnvelopeToAppError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		sentinel error
	}{
		{"not found", http.StatusNotFound, "NOT_FOUND", apperrors.ErrNotFound},
		{"bad request", http.StatusBadRequest, "INVALID_INPUT", apperrors.ErrInvalidInput},
		{"conflict", http.StatusConflict, "CONFLICT", apperrors.ErrConflict},
		{"unauthorized", http.StatusUnauthorized, "UNAUTHORIZED", apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "FORBIDDEN", apperrors.ErrForbidden},
		{"gone", http.StatusGone, "GONE", apperrors.ErrGone},
		{"payment failed", http.StatusUnprocessableEntity, "PAYMENT_FAILED", apperrors.ErrPaymentFailed},
		{"unavailable", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", apperrors.ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upstreamResponse(tt.status, envelopeBody(tt.code, "upstream detail"))
			err := ParseResponseError(resp, "inventory")

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.status, appErr.Status)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, appErr.Message, "inventory")
		})
	}
}

func TestParseResponseError_ServerErrorsStayGeneric(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway} {
		resp := upstreamResponse(status, envelopeBody("INTERNAL_ERROR", "db down"))
		err := ParseResponseError(resp, "orders")
		require.Error(t, err)

		var appErr *apperrors.AppError
		assert.NotErrorAs(t, err, &appErr, "5xx should not map to AppError")
		assert.Contains(t, err.Error(), "orders")
		assert.Contains(t, err.Error(), "db down")
	}
}

func TestParseResponseError_UnmappedStatusKeepsCode(t *testing.T) {
	resp := upstreamResponse(http.StatusTooManyRequests, envelopeBody("RATE_LIMITED", "slow down"))
	err := ParseResponseError(resp, "gateway")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
}

func TestParseResponseError_UnstructuredBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain text", "upstream connection refused"},
		{"html", "<html><body><h1>502 Bad Gateway</h1></body></html>"},
		{"empty", ""},
		{"null error field", `{"error":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upstreamResponse(http.StatusBadGateway, tt.body)
			err := ParseResponseError(resp, "image-host")
			require.Error(t, err)

			var appErr *apperrors.AppError
			assert.NotErrorAs(t, err, &appErr)
			assert.Contains(t, err.Error(), "image-host")
			assert.Contains(t, err.Error(), "502")
		})
	}
}
