package httputil_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/limbo/habitrack/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.WriteErrorResponse(rec, http.StatusNotFound, "habit not found", errors.New("no rows"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp httputil.ErrorResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, httputil.ErrorResponse{Code: 404, Message: "habit not found", Details: "no rows"}, resp)

	rec = httptest.NewRecorder()
	httputil.WriteErrorResponse(rec, http.StatusUnauthorized, "unauthorized", nil)
	assert.NotContains(t, rec.Body.String(), "details")
}

func TestWriteJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.WriteJSONResponse(rec, http.StatusCreated, map[string]int{"current_streak": 3})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"current_streak":3}`, rec.Body.String())

	rec = httptest.NewRecorder()
	httputil.WriteJSONResponse(rec, http.StatusNoContent, nil)
	assert.Empty(t, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		HabitID string `json:"habitId"`
	}
	testCases := []struct {
		Desc  string
		Body  string
		Error bool
	}{
		{Desc: "valid", Body: `{"habitId":"x"}`},
		{Desc: "empty", Body: ``, Error: true},
		{Desc: "malformed", Body: `{"habitId":`, Error: true},
		{Desc: "too large", Body: `{"habitId":"` + strings.Repeat("a", httputil.MaxBodyBytes) + `"}`, Error: true},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.Body))
			var dst body
			err := httputil.DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tc.Error {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "x", dst.HabitID)
		})
	}
}
