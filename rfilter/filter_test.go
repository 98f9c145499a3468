package rfilter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/zorya/routepath"
)

func TestPathFilter_Matches(t *testing.T) {
	f := NewPath("/users/{id}/emails")
	r := httptest.NewRequest(http.MethodGet, "/users/29/emails", nil)
	state := routepath.New(r.URL.Path)
	require.True(t, f.Filter(r, state))
	assert.Equal(t, "29", state.Params()["id"])
}

func TestPathFilter_NoMatchRestores(t *testing.T) {
	f := NewPath("/users/{id}/emails")
	r := httptest.NewRequest(http.MethodGet, "/users/29/phones", nil)
	state := routepath.New(r.URL.Path)
	snap := state.Save()
	require.False(t, f.Filter(r, state))
	assert.Equal(t, snap, state.Save())
}

func TestMethodFilter(t *testing.T) {
	f := MethodFilter("GET")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, f.Filter(r, nil))

	r2 := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, f.Filter(r2, nil))
}

func TestAndOr(t *testing.T) {
	getOnly := MethodFilter("GET")
	postOnly := MethodFilter("POST")
	either := Or(getOnly, postOnly)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.True(t, either.Filter(r, nil))

	both := And(getOnly, postOnly)
	assert.False(t, both.Filter(r, nil))
}

func TestNot(t *testing.T) {
	notGet := Not(MethodFilter("GET"))
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.True(t, notGet.Filter(r, nil))
}
