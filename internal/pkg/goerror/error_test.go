package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := NewBusiness("login required", CodeLoginRequired)

	assert.True(t, HasCode(err, CodeLoginRequired))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeLoginRequired))
	assert.False(t, HasCode(nil, CodeLoginRequired))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, HasCode(wrapped, CodeLoginRequired))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusUnprocessableEntity},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeLoginRequired, http.StatusUnauthorized},
		{CodeSignatureRejected, http.StatusForbidden},
		{CodeRemoteHTTP, http.StatusBadGateway},
		{CodeDataParse, http.StatusBadGateway},
		{CodeRemoteProtocol, http.StatusBadGateway},
		{CodeMalformedResponse, http.StatusBadGateway},
		{CodeNetworkFailure, http.StatusServiceUnavailable},
		{CodeRevokeUnsupported, http.StatusNotImplemented},
		{CodeMissingSecret, http.StatusUnprocessableEntity},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.code.String(), func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, NewBusiness("msg", tc.code), &gerr)
			assert.Equal(t, tc.want, gerr.StatusCode())
		})
	}
}

func TestNewRemote(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewRemote(cause, "time sync failed", CodeNetworkFailure)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, TypeRemote, gerr.Type())
	assert.Equal(t, CodeNetworkFailure, gerr.Code())
	assert.Equal(t, "time sync failed", gerr.Msg())
	assert.ErrorIs(t, err, cause)
}

func TestNewInvalidInput(t *testing.T) {
	t.Run("WithFields", func(t *testing.T) {
		err := NewInvalidInput(nil, "op", "must be allow or cancel")

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, CodeInvalidInput, gerr.Code())
		assert.Equal(t, map[string]string{"op": "must be allow or cancel"}, gerr.Fields())
	})

	t.Run("WithUnderlying", func(t *testing.T) {
		cause := errors.New("field required")
		err := NewInvalidInput(cause)

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, CodeInvalidInput, gerr.Code())
		assert.ErrorIs(t, err, cause)
	})
}
