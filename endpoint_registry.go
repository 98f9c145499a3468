package zorya

import (
	"fmt"
	"reflect"
	"sync"
)

// Endpoint pairs an OpenAPI operation description with the component
// fragments (shared schemas, responses, security schemes) it references,
// associated with a handler via its registered marker type. It is pure
// data: building the operation/components for a handler and dispatching
// requests to that handler are independent concerns, the latter handled
// entirely by router.Router/Register[I, O].
type Endpoint struct {
	Operation  *Operation
	Components *Components
}

// TypeIdentity substitutes for Rust's compile-time TypeId in languages
// without macros: it's the reflect.Type of a caller-defined marker
// struct (usually an empty `struct{}` named after the endpoint), unique
// per endpoint by construction since no two packages can define the same
// named type.
type TypeIdentity = reflect.Type

var (
	endpointRegistryMu sync.RWMutex
	endpointRegistry   = map[TypeIdentity]func() Endpoint{}
)

// RegisterEndpoint associates the marker type H with a factory that
// builds its Endpoint, typically called from an init() function:
//
//	type ListUsers struct{}
//
//	func init() {
//		zorya.RegisterEndpoint[ListUsers](func() zorya.Endpoint {
//			return zorya.Endpoint{
//				Operation: &zorya.Operation{OperationID: "listUsers"},
//			}
//		})
//	}
//
// Panics if H is already registered: an identity may be registered at
// most once.
func RegisterEndpoint[H any](factory func() Endpoint) {
	endpointRegistryMu.Lock()
	defer endpointRegistryMu.Unlock()

	var marker H
	id := reflect.TypeOf(marker)
	if _, exists := endpointRegistry[id]; exists {
		panic(fmt.Sprintf("zorya: endpoint already registered for %s", id))
	}
	endpointRegistry[id] = factory
}

// LookupEndpoint resolves a previously registered marker type back to a
// fresh Endpoint instance.
func LookupEndpoint[H any]() (Endpoint, bool) {
	var marker H
	return LookupEndpointByIdentity(reflect.TypeOf(marker))
}

// LookupEndpointByIdentity is LookupEndpoint's non-generic counterpart,
// for call sites (the OpenAPI merge pass walking a router.Router tree)
// that only have a reflect.Type in hand, not a compile-time type
// parameter.
func LookupEndpointByIdentity(id TypeIdentity) (Endpoint, bool) {
	endpointRegistryMu.RLock()
	defer endpointRegistryMu.RUnlock()

	factory, ok := endpointRegistry[id]
	if !ok {
		return Endpoint{}, false
	}
	return factory(), true
}

// MustLookupEndpoint is LookupEndpoint but panics if H was never
// registered, for call sites (route wiring at startup) where a missing
// registration is a programming error, not a runtime condition.
func MustLookupEndpoint[H any]() Endpoint {
	ep, ok := LookupEndpoint[H]()
	if !ok {
		var marker H
		panic(fmt.Sprintf("zorya: no endpoint registered for %s", reflect.TypeOf(marker)))
	}
	return ep
}
