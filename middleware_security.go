package zorya

import (
	"net/http"

	"github.com/talav/zorya/depot"
)

// RouteSecurityContext contains fully resolved security requirements.
// It's stored in the request's Depot (C8) by Zorya's security middleware
// after resolving resources, rather than in context.Context: unlike a
// context value, it's then enumerable alongside everything else a
// handler's Depot.Keys() reports for that request.
type RouteSecurityContext struct {
	Roles       []string
	Permissions []string
	Resource    string
	Action      string // Resolved action (explicit or HTTP method fallback)
}

// GetRouteSecurityContext retrieves resolved security metadata from the
// request's Depot, if one was attached (i.e. the request was dispatched
// through a router.Router tree) and the security middleware ran.
func GetRouteSecurityContext(r *http.Request) *RouteSecurityContext {
	d, ok := depot.FromContext(r.Context())
	if !ok {
		return nil
	}

	sec, ok := depot.GetT[*RouteSecurityContext](d)
	if !ok {
		return nil
	}

	return sec
}

// newSecurityMetadataMiddleware creates middleware that resolves security resource identifiers
// and stores metadata in the request's Depot for the security enforcer to read.
// Returns nil if the route has no security requirements.
func newSecurityMetadataMiddleware(security *RouteSecurity) Middleware {
	if security == nil {
		return nil
	}

	// Create middleware that resolves resources and stores metadata in context
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract params once (injected by newRouterParamsMiddleware)
			params := GetRouterParams(r)

			// Resolve resource identifier
			resolvedResource := ""
			if security.ResourceResolver != nil {
				// Use custom resolver (from ResourceFromParams or ResourceFromRequest)
				// Pass both request and params - resolver uses what it needs
				resolvedResource = security.ResourceResolver(r, params)
			} else if security.Resource != "" {
				// Use static resource
				resolvedResource = security.Resource
			}

			// Resolve action (use explicit action or fallback to HTTP method)
			action := security.Action
			if action == "" {
				action = r.Method
			}

			// Create resolved security metadata
			resolved := &RouteSecurityContext{
				Roles:       security.Roles,
				Permissions: security.Permissions,
				Resource:    resolvedResource,
				Action:      action,
			}

			// Store in the request's Depot for the security middleware to
			// enforce. A Depot is always present when the request was
			// dispatched through a router.Router-backed Adapter.
			if d, ok := depot.FromContext(r.Context()); ok {
				depot.SetT(d, resolved)
			}

			next.ServeHTTP(w, r)
		})
	}
}
