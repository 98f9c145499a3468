package router

import (
	"net/http"

	"github.com/talav/zorya/depot"
)

// HandlerFunc is a router-tree handler: a node's goal handler, or one of
// its before/after middlewares. It receives the cooperative FlowCtrl
// token so it can decide whether the chain continues past it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, d *depot.Depot, flow *FlowCtrl)

// FlowCtrl is the cooperative baton threaded through a matched chain of
// before middlewares, the goal handler, and after middlewares. A handler
// that never touches it falls through to the next one automatically
// (implicit sequential iteration); calling SkipRest aborts the remainder
// of the chain.
type FlowCtrl struct {
	chain    []HandlerFunc
	index    int
	skipRest bool
}

// NewFlowCtrl builds a FlowCtrl over an already-resolved handler chain.
func NewFlowCtrl(chain []HandlerFunc) *FlowCtrl {
	return &FlowCtrl{chain: chain}
}

// CallNext runs the next handler in the chain, if any remain and nothing
// has called SkipRest. Safe to call multiple times; a handler that calls
// it explicitly controls exactly when its downstream runs (e.g. to run
// code after the rest of the chain completes).
func (f *FlowCtrl) CallNext(w http.ResponseWriter, r *http.Request, d *depot.Depot) {
	if f.skipRest || f.index >= len(f.chain) {
		return
	}
	h := f.chain[f.index]
	f.index++
	h(w, r, d, f)
}

// SkipRest aborts the chain: no further handler (including one the
// current handler was about to fall through to implicitly) will run.
func (f *FlowCtrl) SkipRest() {
	f.skipRest = true
}

// Run drives the chain from the start. If a handler never calls
// CallNext, Run advances past it once it returns, so a middleware that
// doesn't care about sequencing doesn't have to invoke CallNext itself.
func (f *FlowCtrl) Run(w http.ResponseWriter, r *http.Request, d *depot.Depot) {
	for !f.skipRest && f.index < len(f.chain) {
		h := f.chain[f.index]
		f.index++
		h(w, r, d, f)
	}
}
