package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeValid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		status int
	}{
		{"valid", `{"name":"Weekly","email":"a@b.co"}`, true, 0},
		{"bad json", `{"name":`, false, http.StatusBadRequest},
		{"missing name", `{"email":"a@b.co"}`, false, http.StatusBadRequest},
		{"bad email", `{"name":"x","email":"nope"}`, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst createReq
			assert.Equal(t, tt.ok, DecodeValid(w, r, &dst))
			if !tt.ok {
				assert.Equal(t, tt.status, w.Code)
			}
		})
	}
}

func TestDecodeValid_ListsFields(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	var dst createReq
	require.False(t, DecodeValid(w, r, &dst))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, []any{"createreq.name: required"}, resp.Details)
}

func TestInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
}
