package zorya

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyCache_PayloadReadOnce(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello world"))
	c := newBodyCache(0)

	first, err := c.Payload(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(first))

	second, err := c.Payload(r)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBodyCache_PayloadOverSizeCap(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	c := newBodyCache(5)

	_, err := c.Payload(r)
	require.Error(t, err)
	statusErr, ok := err.(StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusErr.GetStatus())
}

func TestBodyCache_FormDataURLEncoded(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=1&b=2"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c := newBodyCache(0)

	values, err := c.FormData(r)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"2"}}, values)
}

func TestBodyCache_FormDataUnsupportedMediaType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json")
	c := newBodyCache(0)

	_, err := c.FormData(r)
	require.Error(t, err)
	statusErr, ok := err.(StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnsupportedMediaType, statusErr.GetStatus())
}

func TestSniffContentType(t *testing.T) {
	assert.NotEmpty(t, sniffContentType([]byte(`{"a":1}`)))
	assert.Contains(t, sniffContentType([]byte("%PDF-1.4")), "application/pdf")
}
