// Package depot implements a per-request, insertion-ordered bag of
// arbitrary values that middlewares and handlers share while a request
// flows through a router tree.
package depot

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Depot is a typed, insertion-ordered key/value store scoped to a single
// request's lifetime. Unlike context.Context, a Depot is mutable and its
// full contents can be enumerated, which request-scoped middlewares (auth
// results, tracing spans, per-request caches) rely on.
type Depot struct {
	mu     sync.RWMutex
	order  []string
	values map[string]any
}

// New returns an empty Depot.
func New() *Depot {
	return &Depot{values: make(map[string]any)}
}

// Set stores value under key, preserving the first-insertion position of
// key in Keys() even if the value is later overwritten.
func (d *Depot) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.values[key]; !exists {
		d.order = append(d.order, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key, if any.
func (d *Depot) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

// Delete removes key, if present.
func (d *Depot) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.values[key]; !exists {
		return
	}
	delete(d.values, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Keys returns the stored keys in first-insertion order.
func (d *Depot) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying d, so code reached through a
// plain context.Context-based call chain (e.g. an http.Handler-style
// Middleware, which never sees the Depot argument router.HandlerFunc
// passes explicitly) can still reach the request's Depot.
func NewContext(ctx context.Context, d *Depot) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// FromContext retrieves the Depot NewContext attached to ctx, if any.
func FromContext(ctx context.Context) (*Depot, bool) {
	d, ok := ctx.Value(ctxKey{}).(*Depot)
	return d, ok
}

// typeKey builds a type-identity key for SetT/GetT so values of distinct
// types never collide even when callers reuse a loose string name.
func typeKey[T any]() string {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	return "depot:type:" + t.PkgPath() + "." + t.String() + fmt.Sprintf("[%v]@%p", t.Kind(), t)
}

// SetT stores value keyed by its static type T, for handlers that want to
// stash and retrieve a value without agreeing on a string key out of band.
func SetT[T any](d *Depot, value T) {
	d.Set(typeKey[T](), value)
}

// GetT retrieves a value previously stored with SetT for type T.
func GetT[T any](d *Depot) (T, bool) {
	var zero T
	v, ok := d.Get(typeKey[T]())
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
