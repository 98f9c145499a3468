// Package router implements the route tree: a recursive-descent matcher
// over nodes guarded by rfilter.Filter sets, and the FlowCtrl cooperative
// dispatch token handlers use to control chain continuation.
package router

import (
	"net/http"
	"reflect"

	"github.com/talav/zorya/rfilter"
	"github.com/talav/zorya/routepath"
)

// Router is one node of the route tree. A node with no Filters always
// passes (the tree root is typically such a node, existing purely to
// hold children). A node is a candidate leaf once it carries a Goal
// handler; it is only actually accepted when the path has also been
// fully consumed by the time it's reached.
type Router struct {
	Filters        []rfilter.Filter
	Goal           HandlerFunc
	BeforeHandlers []HandlerFunc
	AfterHandlers  []HandlerFunc
	Children       []*Router

	// PathTemplate and Method are metadata carried for OpenAPI merge and
	// diagnostics; they play no role in matching (Filters do that).
	PathTemplate string
	Method       string
	Tags         []string
	Security     []map[string][]string

	// Identity, when set, is the reflect.Type of the caller's marker type
	// for this node's endpoint, letting a tree walk (the OpenAPI merge
	// pass) recover the registered Endpoint without this package needing
	// to know anything about the registry that holds it. Untyped here
	// (plain reflect.Type, not a named alias) so this package never
	// imports its caller and creates an import cycle.
	Identity reflect.Type
}

// New returns an empty router node.
func New() *Router {
	return &Router{}
}

// Push appends child as a child of n, tried in declaration order.
func (n *Router) Push(child *Router) *Router {
	n.Children = append(n.Children, child)
	return n
}

// Filter appends a filter to n's gauntlet.
func (n *Router) Filter(f rfilter.Filter) *Router {
	n.Filters = append(n.Filters, f)
	return n
}

// Then sets n's goal handler, making n a candidate leaf.
func (n *Router) Then(h HandlerFunc) *Router {
	n.Goal = h
	return n
}

// Identify associates id (the reflect.Type of a caller-defined marker
// type) with n, so a later tree walk can recover which Endpoint this
// node's goal handler corresponds to.
func (n *Router) Identify(id reflect.Type) *Router {
	n.Identity = id
	return n
}

// Before appends a before-middleware, run ahead of the goal (and of any
// matching descendant) in declaration order.
func (n *Router) Before(h HandlerFunc) *Router {
	n.BeforeHandlers = append(n.BeforeHandlers, h)
	return n
}

// After appends an after-middleware, run once the goal (or a matching
// descendant) completes, outermost node's afters running last.
func (n *Router) After(h HandlerFunc) *Router {
	n.AfterHandlers = append(n.AfterHandlers, h)
	return n
}

// Resolve implements the matching algorithm: snapshot the cursor, run
// every filter (restoring and failing if any rejects), collect this
// node's before middlewares, accept immediately if this node is a
// terminal goal and the path is fully consumed, otherwise try children in
// declaration order and let the first accepting one win. Any failure
// restores state to exactly where Resolve found it.
func (n *Router) Resolve(w http.ResponseWriter, r *http.Request, state *routepath.PathState) ([]HandlerFunc, bool) {
	snap := state.Save()

	for _, f := range n.Filters {
		if !f.Filter(r, state) {
			state.Restore(snap)
			return nil, false
		}
	}

	if n.Goal != nil && state.EndOfSegments() {
		chain := make([]HandlerFunc, 0, len(n.BeforeHandlers)+1+len(n.AfterHandlers))
		chain = append(chain, n.BeforeHandlers...)
		chain = append(chain, n.Goal)
		chain = append(chain, n.AfterHandlers...)
		return chain, true
	}

	for _, child := range n.Children {
		childChain, ok := child.Resolve(w, r, state)
		if !ok {
			continue
		}
		chain := make([]HandlerFunc, 0, len(n.BeforeHandlers)+len(childChain)+len(n.AfterHandlers))
		chain = append(chain, n.BeforeHandlers...)
		chain = append(chain, childChain...)
		chain = append(chain, n.AfterHandlers...)
		return chain, true
	}

	state.Restore(snap)
	return nil, false
}

// Walk visits n and every descendant depth-first, in declaration order,
// passing the chain of ancestors (n excluded) from root to immediate
// parent. Used by the OpenAPI merge pass to enumerate every route.
func (n *Router) Walk(visit func(node *Router, ancestors []*Router)) {
	n.walk(nil, visit)
}

func (n *Router) walk(ancestors []*Router, visit func(node *Router, ancestors []*Router)) {
	visit(n, ancestors)
	nextAncestors := append(append([]*Router{}, ancestors...), n)
	for _, child := range n.Children {
		child.walk(nextAncestors, visit)
	}
}
