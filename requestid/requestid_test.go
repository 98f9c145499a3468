package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/zorya/depot"
	"github.com/talav/zorya/router"
)

func TestMiddleware_GeneratesID(t *testing.T) {
	chain := []router.HandlerFunc{Middleware()}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	d := depot.New()

	router.NewFlowCtrl(chain).Run(w, r, d)

	id := w.Header().Get(HeaderName)
	assert.NotEmpty(t, id)

	stored, ok := FromDepot(d)
	require.True(t, ok)
	assert.Equal(t, id, stored)
}

func TestMiddleware_PreservesIncomingID(t *testing.T) {
	chain := []router.HandlerFunc{Middleware()}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderName, "upstream-id")
	w := httptest.NewRecorder()
	d := depot.New()

	router.NewFlowCtrl(chain).Run(w, r, d)

	assert.Equal(t, "upstream-id", w.Header().Get(HeaderName))
	stored, ok := FromDepot(d)
	require.True(t, ok)
	assert.Equal(t, "upstream-id", stored)
}

func TestFromDepot_Missing(t *testing.T) {
	_, ok := FromDepot(depot.New())
	assert.False(t, ok)
}
