package zorya

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawResponse_IsEmpty(t *testing.T) {
	assert.True(t, (&RawResponse{}).IsEmpty())
	assert.False(t, (&RawResponse{Once: "x"}).IsEmpty())
	assert.False(t, (&RawResponse{Chunks: [][]byte{[]byte("a")}}).IsEmpty())
	assert.False(t, (&RawResponse{Stream: bytes.NewReader(nil)}).IsEmpty())
	assert.False(t, (&RawResponse{Err: errors.New("boom")}).IsEmpty())
}

func TestRender_OnceNegotiatesJSON(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(api, r, w, &RawResponse{Once: map[string]string{"hello": "world"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func TestRender_DefaultsStatusToOK(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(api, r, w, &RawResponse{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestRender_Chunks(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(api, r, w, &RawResponse{Status: http.StatusCreated, Chunks: [][]byte{[]byte("foo"), []byte("bar")}})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "foobar", w.Body.String())
}

func TestRender_Stream(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(api, r, w, &RawResponse{Stream: bytes.NewReader([]byte("streamed"))})

	assert.Equal(t, "streamed", w.Body.String())
}

func TestRender_Channel(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	ch := make(chan []byte, 2)
	ch <- []byte("a")
	ch <- []byte("b")
	close(ch)

	Render(api, r, w, &RawResponse{Channel: ch})

	assert.Equal(t, "ab", w.Body.String())
}

func TestRender_ErrRendersErrorModel(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(api, r, w, &RawResponse{Err: errors.New("disk on fire")})

	assert.Equal(t, http.StatusOK, w.Code, "RawResponse.Err doesn't itself pick a status; caller sets Status")
	assert.Contains(t, w.Body.String(), "disk on fire")
}

func TestRender_Headers(t *testing.T) {
	api := NewAPI(newTestRouterAdapter())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(api, r, w, &RawResponse{Headers: http.Header{"X-Trace-Id": []string{"abc123"}}, Once: "ok"})

	assert.Equal(t, "abc123", w.Header().Get("X-Trace-Id"))
}

// rawResponseOutput exercises the *RawResponse escape hatch end to end
// through Register[I, O], rather than calling Render directly.
type rawResponseOutput struct {
	Body *RawResponse `body:"structured"`
}

func TestCreateRequestHandler_RawResponseBody(t *testing.T) {
	adapter := newTestRouterAdapter()
	api := NewAPI(adapter)

	err := Get(api, "/stream", func(ctx context.Context, input *struct{}) (*rawResponseOutput, error) {
		return &rawResponseOutput{Body: &RawResponse{
			Status: http.StatusAccepted,
			Chunks: [][]byte{[]byte("chunk-1"), []byte("chunk-2")},
		}}, nil
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/stream", nil)
	w := httptest.NewRecorder()
	adapter.ServeHTTP(w, r)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "chunk-1chunk-2", w.Body.String())
}
