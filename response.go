package zorya

import (
	"io"
	"net/http"
)

// RawResponse is a handler-facing description of an HTTP response body
// shape, independent of how it's ultimately serialized. Exactly one of
// its variant fields should be set; Render uses Err if it is non-nil,
// otherwise the first non-zero one of the others in the order below. Most handlers never construct a RawResponse
// directly (Register[I, O]'s generic output struct handling covers the
// common case) — it exists for lower-level handlers working directly
// against an adapter or the router package. Named RawResponse, not
// Response, to avoid colliding with the OpenAPI response-object model
// of the same name in openapi.go.
type RawResponse struct {
	// Status is the HTTP status code to write. Defaults to 200.
	Status int
	// Headers are set on the response before the body is written.
	Headers http.Header

	// Once carries a single value to negotiate and marshal, the common
	// case for a JSON/CBOR API response.
	Once any
	// Chunks carries pre-built byte chunks written back to back, each
	// flushed immediately if the underlying ResponseWriter supports it.
	Chunks [][]byte
	// Stream is copied to the response body verbatim.
	Stream io.Reader
	// Channel carries chunks produced concurrently with the response
	// being written; each received []byte is written and flushed as it
	// arrives, and the response completes when the channel closes.
	Channel <-chan []byte
	// Err, if non-nil, is rendered as the negotiated ErrorModel instead
	// of any of the other variants.
	Err error
}

// IsEmpty reports whether r carries no body at all (the "None" variant).
func (r *RawResponse) IsEmpty() bool {
	return r.Once == nil && r.Chunks == nil && r.Stream == nil && r.Channel == nil && r.Err == nil
}

// Render writes r to w, negotiating content type against the request's
// Accept header for the Once/Err variants and writing the other variants
// verbatim. It never panics on a malformed RawResponse; an empty
// RawResponse simply writes headers and the status code with no body.
func Render(api API, r *http.Request, w http.ResponseWriter, resp *RawResponse) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	for k, vs := range resp.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	switch {
	case resp.Err != nil:
		writeNegotiatedBody(api, r, w, status, errorBody(resp.Err))
	case resp.Once != nil:
		writeNegotiatedBody(api, r, w, status, resp.Once)
	case resp.Chunks != nil:
		w.WriteHeader(status)
		flusher, _ := w.(http.Flusher)
		for _, chunk := range resp.Chunks {
			_, _ = w.Write(chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
	case resp.Stream != nil:
		w.WriteHeader(status)
		_, _ = io.Copy(w, resp.Stream)
	case resp.Channel != nil:
		w.WriteHeader(status)
		flusher, _ := w.(http.Flusher)
		for chunk := range resp.Channel {
			_, _ = w.Write(chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
	default:
		w.WriteHeader(status)
	}
}

// errorBody normalizes an arbitrary error into something Marshal/negotiate
// can render, preferring an existing ErrorModel-shaped error untouched.
func errorBody(err error) any {
	if se, ok := err.(StatusError); ok {
		if em, ok := any(se).(*ErrorModel); ok {
			return em
		}
	}
	return NewError(http.StatusInternalServerError, err.Error())
}
