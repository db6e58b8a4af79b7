package responsewriter

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRecordsStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(201)
	n, err := w.Write([]byte("hello"))

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 201, w.StatusCode())
	assert.Equal(t, 5, w.BytesWritten())
	assert.Equal(t, 201, rec.Code)
}

func TestWrapDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	_, err := w.Write([]byte("ok"))

	require.NoError(t, err)
	assert.Equal(t, 200, w.StatusCode())
}

func TestWrapIgnoresRepeatedWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	w.WriteHeader(404)
	w.WriteHeader(500)

	assert.Equal(t, 404, w.StatusCode())
	assert.Equal(t, 404, rec.Code)
}

func TestWrapAccumulatesBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("defg"))

	assert.Equal(t, 7, w.BytesWritten())
}
