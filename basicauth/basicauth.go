// Package basicauth implements HTTP Basic authentication as a router
// before-middleware: it challenges unauthenticated requests with a 401
// and WWW-Authenticate header, and on success stores the authenticated
// username in the request's Depot.
package basicauth

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/talav/zorya/depot"
	"github.com/talav/zorya/router"
)

// Validator decides whether a username/password pair is allowed access.
type Validator interface {
	Validate(username, password string) bool
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(username, password string) bool

func (f ValidatorFunc) Validate(username, password string) bool { return f(username, password) }

// BcryptValidator checks a password against a map of username to bcrypt
// hash, the common case of validating against stored credentials rather
// than a hand-rolled comparison function.
type BcryptValidator map[string][]byte

func (v BcryptValidator) Validate(username, password string) bool {
	hash, ok := v[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// Handler is HTTP Basic auth as a router.HandlerFunc, installed as a
// node's Before middleware.
type Handler struct {
	Realm     string
	Validator Validator
	DepotKey  string
}

// New returns a Handler challenging for realm and checking credentials
// against validator, storing the authenticated username under depotKey
// (left empty to skip storing it).
func New(realm string, validator Validator, depotKey string) *Handler {
	return &Handler{Realm: realm, Validator: validator, DepotKey: depotKey}
}

// Middleware returns h as a router.HandlerFunc suitable for
// router.Router.Before.
func (h *Handler) Middleware() router.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, d *depot.Depot, flow *router.FlowCtrl) {
		username, password, ok := r.BasicAuth()
		if ok && h.Validator.Validate(username, password) {
			if h.DepotKey != "" {
				d.Set(h.DepotKey, username)
			}
			flow.CallNext(w, r, d)
			return
		}
		h.askCredentials(w)
		flow.SkipRest()
	}
}

func (h *Handler) askCredentials(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", h.Realm))
	w.WriteHeader(http.StatusUnauthorized)
}

// StaticValidator checks a password against a map of username to
// plaintext secret using a constant-time comparison, for the simple
// single-process case where bcrypt's hashing cost isn't warranted.
type StaticValidator map[string]string

func (v StaticValidator) Validate(username, password string) bool {
	want, ok := v[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1
}
