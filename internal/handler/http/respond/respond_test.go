package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-reminder/internal/domain/entity"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
}

func TestSafeError(t *testing.T) {
	t.Run("validation error passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()

		SafeError(rec, http.StatusBadRequest, &entity.ValidationError{Field: "endpoint", Message: "endpoint is required"})

		body := decodeBody(t, rec)
		assert.Contains(t, body["error"], "endpoint is required")
	})

	t.Run("not found passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()

		SafeError(rec, http.StatusNotFound, entity.ErrNotFound)

		body := decodeBody(t, rec)
		assert.Contains(t, body["error"], "not found")
	})

	t.Run("internal detail is masked", func(t *testing.T) {
		rec := httptest.NewRecorder()

		SafeError(rec, http.StatusInternalServerError,
			errors.New(`connect to postgres://app:hunter2@db:5432/contests refused`))

		body := decodeBody(t, rec)
		assert.Equal(t, "internal server error", body["error"])
	})

	t.Run("safe message at 500 is still masked", func(t *testing.T) {
		rec := httptest.NewRecorder()

		SafeError(rec, http.StatusInternalServerError, errors.New("field is required"))

		body := decodeBody(t, rec)
		assert.Equal(t, "internal server error", body["error"])
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", entity.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("Get: %w", entity.ErrNotFound), http.StatusNotFound},
		{"invalid input", entity.ErrInvalidInput, http.StatusBadRequest},
		{"validation error", &entity.ValidationError{Field: "x", Message: "y"}, http.StatusBadRequest},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"dsn password",
			"dial postgres://app:hunter2@db:5432/contests: refused",
			"dial postgres://app:****@db:5432/contests: refused",
		},
		{
			"clist api key",
			`request with ApiKey alice:3fa8deadbeef rejected`,
			"request with ApiKey **** rejected",
		},
		{
			"bearer token",
			"Bearer eyJhbGciOi.secret.sig rejected",
			"Bearer **** rejected",
		},
		{"plain message", "plain failure", "plain failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(errors.New(tt.in)))
		})
	}
}
