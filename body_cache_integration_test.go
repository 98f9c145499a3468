package zorya

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createWidgetInput struct {
	Body struct {
		Name string `json:"name"`
	} `body:"structured"`
}

type createWidgetOutput struct {
	Body struct {
		Name string `json:"name"`
	} `body:"structured"`
}

func TestCreateRequestHandler_BodyCacheEnforcesSizeCap(t *testing.T) {
	adapter := newTestRouterAdapter()
	cfg := DefaultConfig()
	cfg.BodySizeCap = 16
	api := NewAPI(adapter, WithConfig(cfg))

	Post(api, "/widgets", func(ctx context.Context, input *createWidgetInput) (*createWidgetOutput, error) {
		out := &createWidgetOutput{}
		out.Body.Name = input.Body.Name
		return out, nil
	})

	oversized := `{"name":"` + strings.Repeat("x", 64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewBufferString(oversized))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	adapter.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
}

func TestCreateRequestHandler_BodyCacheAllowsWithinCap(t *testing.T) {
	adapter := newTestRouterAdapter()
	api := NewAPI(adapter)

	Post(api, "/widgets", func(ctx context.Context, input *createWidgetInput) (*createWidgetOutput, error) {
		out := &createWidgetOutput{}
		out.Body.Name = input.Body.Name
		return out, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewBufferString(`{"name":"gizmo"}`))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	adapter.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "gizmo")
}

func TestFormValues_ReusesRequestBodyCache(t *testing.T) {
	body := "a=1&b=2"
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	cache := newBodyCache(0)
	payload, err := cache.Payload(req)
	require.NoError(t, err)
	req.ContentLength = int64(len(payload))
	req.Body = io.NopCloser(bytes.NewReader(payload))
	req = withBodyCache(req, cache)

	values, err := FormValues(req)
	require.NoError(t, err)
	assert.Equal(t, "1", values.Get("a"))
	assert.Equal(t, "2", values.Get("b"))
}
