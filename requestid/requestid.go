// Package requestid implements a before-middleware that stamps every
// request with a unique identifier, echoing it in a response header and
// stashing it in the request's Depot for downstream logging.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/talav/zorya/depot"
	"github.com/talav/zorya/router"
)

// DepotKey is where the generated request ID is stored in the per-request Depot.
const DepotKey = "requestid:id"

// HeaderName is the response header the request ID is echoed under.
const HeaderName = "X-Request-Id"

// Middleware returns a router.HandlerFunc that generates a new UUIDv4 for
// every request that doesn't already carry one in HeaderName (so the ID
// survives a reverse proxy hop), stores it in the Depot, and sets it on
// the response.
func Middleware() router.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, d *depot.Depot, flow *router.FlowCtrl) {
		id := r.Header.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		d.Set(DepotKey, id)
		w.Header().Set(HeaderName, id)
		flow.CallNext(w, r, d)
	}
}

// FromDepot retrieves the current request's ID, if Middleware has run.
func FromDepot(d *depot.Depot) (string, bool) {
	v, ok := d.Get(DepotKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
