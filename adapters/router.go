// Package adapters provides zorya.Adapter implementations bridging the
// framework to an HTTP entry point.
package adapters

import (
	"context"
	"net/http"
	"strings"

	"github.com/talav/zorya"
	"github.com/talav/zorya/depot"
	"github.com/talav/zorya/rfilter"
	"github.com/talav/zorya/router"
	"github.com/talav/zorya/routepath"
)

type routerParamsKey struct{}

// RouterAdapter implements zorya.Adapter on top of the framework's own
// router tree (package router): a single, built-in URL-matching
// algorithm rather than a pluggable choice of third-party mux.
type RouterAdapter struct {
	root *router.Router
}

// NewRouterAdapter returns an adapter backed by an empty route tree.
//
//	adapter := adapters.NewRouterAdapter()
//	api := zorya.NewAPI(adapter)
//	http.ListenAndServe(":8080", adapter)
func NewRouterAdapter() *RouterAdapter {
	return &RouterAdapter{root: router.New()}
}

// Handle registers route as a child of the tree's root, filtered by
// method and path pattern.
func (a *RouterAdapter) Handle(route *zorya.BaseRoute, handler http.HandlerFunc) {
	child := router.New()
	if route.Method != "" {
		child.Filter(rfilter.MethodFilter(route.Method))
	}
	child.Filter(rfilter.NewPath(route.Path))
	child.PathTemplate = route.Path
	child.Method = strings.ToUpper(route.Method)
	child.Identity = route.Identity
	child.Then(func(w http.ResponseWriter, r *http.Request, _ *depot.Depot, _ *router.FlowCtrl) {
		handler(w, r)
	})
	a.root.Push(child)
}

// Root exposes the underlying route tree, e.g. for C10's OpenAPI merge
// pass or for attaching tree-level Before/After middleware.
func (a *RouterAdapter) Root() *router.Router {
	return a.root
}

// ExtractRouterParams returns the path captures produced by the match
// that is currently dispatching r. Valid only while handling a request
// routed through this adapter's ServeHTTP.
func (a *RouterAdapter) ExtractRouterParams(r *http.Request, _ *zorya.BaseRoute) map[string]string {
	if params, ok := r.Context().Value(routerParamsKey{}).(map[string]string); ok {
		return params
	}
	return map[string]string{}
}

// ServeHTTP resolves r against the route tree and runs the matched
// chain. Unmatched requests get a plain 404.
func (a *RouterAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := routepath.New(r.URL.Path)
	chain, ok := a.root.Resolve(w, r, state)
	if !ok {
		http.NotFound(w, r)
		return
	}

	d := depot.New()

	ctx := context.WithValue(r.Context(), routerParamsKey{}, state.Params())
	ctx = depot.NewContext(ctx, d)
	r = r.WithContext(ctx)

	router.NewFlowCtrl(chain).Run(w, r, d)
}
