package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/stretchr/testify/require"
)

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{e.ErrMissingFields, http.StatusBadRequest},
		{e.Wrap("row 3", e.ErrUnknownCategory), http.StatusBadRequest},
		{e.ErrInvalidCredentials, http.StatusUnauthorized},
		{e.Wrap("token expired", e.ErrUnauthorized), http.StatusUnauthorized},
		{e.Wrap("id 9", e.ErrProductNotFound), http.StatusNotFound},
		{e.ErrProductAlreadyExists, http.StatusConflict},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.Wrap("sheetdb: 502", e.ErrCatalogUnavailable), http.StatusServiceUnavailable},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, msg := ToHTTPResponse(tt.err)
			require.Equal(t, tt.code, code)
			require.NotContains(t, msg, ":")
		})
	}
}
