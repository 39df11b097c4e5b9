package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDomainError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{fmt.Errorf("%w: organizer only", domain.ErrForbidden), http.StatusForbidden, ErrCodeForbidden},
		{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{domain.ErrAlreadyRegistered, http.StatusConflict, ErrCodeConflict},
		{domain.ErrInvalidSpeakers, http.StatusConflict, ErrCodeConflict},
		{domain.ErrInvalidTime, http.StatusBadRequest, ErrCodeBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			var body APIResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Nil(t, body.Data)
		})
	}
}

type form struct {
	Name string `json:"name"`
}

func (f *form) Validate() []string {
	if f.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{"valid", `{"name":"x"}`, true},
		{"unknown field", `{"name":"x","other":1}`, false},
		{"malformed", `{`, false},
		{"fails validation", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var f form
			assert.Equal(t, tt.wantOK, DecodeAndValidate(rec, req, &f))
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
