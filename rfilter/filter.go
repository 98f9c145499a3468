// Package rfilter implements the composable request/path filters that
// decide whether a router node accepts a request: path templates
// (backed by package wisp), HTTP method, host, port, and arbitrary
// header predicates, combined with And/Or/Not.
package rfilter

import (
	"net"
	"net/http"
	"strings"

	"github.com/talav/zorya/routepath"
	"github.com/talav/zorya/wisp"
)

// Filter decides whether a request (and its in-progress path match
// state) is accepted by a router node. Implementations that consume path
// segments (PathFilter) must leave state untouched on a false return —
// callers still snapshot/restore defensively around every filter.
type Filter interface {
	Filter(r *http.Request, state *routepath.PathState) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(r *http.Request, state *routepath.PathState) bool

func (f FilterFunc) Filter(r *http.Request, state *routepath.PathState) bool {
	return f(r, state)
}

// PathFilter matches (and partially consumes) the request path against a
// pattern compiled with package wisp.
type PathFilter struct {
	Pattern string
	kinds   []wisp.Kind
}

// NewPath compiles pattern into a PathFilter. Panics on an invalid
// pattern since route registration happens at startup, not per-request.
func NewPath(pattern string) *PathFilter {
	return &PathFilter{Pattern: pattern, kinds: wisp.MustParse(pattern)}
}

func (f *PathFilter) Filter(_ *http.Request, state *routepath.PathState) bool {
	snap := state.Save()
	for _, k := range f.kinds {
		row := state.Cursor
		if !k.Detect(state) {
			state.Restore(snap)
			return false
		}
		if row == state.Cursor && row != len(state.Parts) {
			state.Restore(snap)
			return false
		}
	}
	return true
}

// MethodFilter matches the request's HTTP method case-insensitively.
type MethodFilter string

func (f MethodFilter) Filter(r *http.Request, _ *routepath.PathState) bool {
	return strings.EqualFold(r.Method, string(f))
}

// HostFilter matches the host name in the request's Host header,
// case-insensitively; a port, if any, is stripped before the comparison
// (pair with PortFilter to match on it).
type HostFilter string

func (f HostFilter) Filter(r *http.Request, _ *routepath.PathState) bool {
	host := r.Host
	if h, _, err := splitHostPort(host); err == nil {
		host = h
	}
	return strings.EqualFold(host, string(f))
}

// PortFilter matches the request's destination port.
type PortFilter string

func (f PortFilter) Filter(r *http.Request, _ *routepath.PathState) bool {
	_, port, err := splitHostPort(r.Host)
	if err != nil {
		return false
	}
	return port == string(f)
}

func splitHostPort(hostport string) (host, port string, err error) {
	return net.SplitHostPort(hostport)
}

// HeaderFilter matches a request header's exact value.
type HeaderFilter struct {
	Name  string
	Value string
}

func (f HeaderFilter) Filter(r *http.Request, _ *routepath.PathState) bool {
	return r.Header.Get(f.Name) == f.Value
}

// And accepts only if every filter accepts. Path-consuming filters are
// evaluated left to right; the caller's snapshot/restore around the
// whole group handles partial consumption on a later failure.
func And(filters ...Filter) Filter {
	return FilterFunc(func(r *http.Request, state *routepath.PathState) bool {
		for _, f := range filters {
			if !f.Filter(r, state) {
				return false
			}
		}
		return true
	})
}

// Or accepts if any filter accepts, restoring state between attempts so
// a partially-matching filter can't leak a partial consumption into the
// next one.
func Or(filters ...Filter) Filter {
	return FilterFunc(func(r *http.Request, state *routepath.PathState) bool {
		for _, f := range filters {
			snap := state.Save()
			if f.Filter(r, state) {
				return true
			}
			state.Restore(snap)
		}
		return false
	})
}

// Not inverts a filter. Since a negated filter never intends to consume
// path state, Not restores state after evaluating it regardless of the
// result.
func Not(f Filter) Filter {
	return FilterFunc(func(r *http.Request, state *routepath.PathState) bool {
		snap := state.Save()
		result := f.Filter(r, state)
		state.Restore(snap)
		return !result
	})
}
