package zorya

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// onceCache is a future-aware single-initialization primitive: the first
// caller to reach Get runs fn and every caller (concurrent or
// subsequent) observes that one result. Mirrors the body cache's
// requirement that the raw body stream only ever be read once.
type onceCache[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (c *onceCache[T]) Get(fn func() (T, error)) (T, error) {
	c.once.Do(func() {
		c.value, c.err = fn()
	})
	return c.value, c.err
}

// bodyCache buffers a request's raw body once (bounded by sizeCap) and
// lets both the payload decoder and the form-data parser share it,
// without either of them consuming the underlying io.Reader twice.
type bodyCache struct {
	payload  onceCache[[]byte]
	formData onceCache[url.Values]
	sizeCap  int64
}

func newBodyCache(sizeCap int64) *bodyCache {
	if sizeCap <= 0 {
		sizeCap = DefaultBodySizeCap
	}
	return &bodyCache{sizeCap: sizeCap}
}

// Payload returns the full (bounded) request body, reading it from r
// exactly once no matter how many callers ask.
func (c *bodyCache) Payload(r *http.Request) ([]byte, error) {
	return c.payload.Get(func() ([]byte, error) {
		if r.Body == nil {
			return nil, nil
		}
		limited := io.LimitReader(r.Body, c.sizeCap+1)
		data, err := io.ReadAll(limited)
		if err != nil {
			return nil, Error400BadRequest("failed to read request body", err)
		}
		if int64(len(data)) > c.sizeCap {
			return nil, Error413ContentTooLarge("request body exceeds the configured size cap")
		}
		return data, nil
	})
}

// FormData returns the request's parsed form fields (urlencoded or
// multipart), caching the result so repeated access doesn't reparse.
// It shares the cached Payload so a urlencoded body is still available
// to Payload() after FormData() has consumed it.
func (c *bodyCache) FormData(r *http.Request) (url.Values, error) {
	return c.formData.Get(func() (url.Values, error) {
		contentType := r.Header.Get("Content-Type")
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, Error415UnsupportedMediaType("invalid Content-Type header")
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			body, err := c.Payload(r)
			if err != nil {
				return nil, err
			}
			values, err := url.ParseQuery(string(body))
			if err != nil {
				return nil, Error400BadRequest("failed to parse form body", err)
			}
			return values, nil
		case "multipart/form-data":
			if err := r.ParseMultipartForm(c.sizeCap); err != nil {
				return nil, Error400BadRequest("failed to parse multipart form", err)
			}
			return r.Form, nil
		default:
			return nil, Error415UnsupportedMediaType("expected a form content type, got " + mediaType)
		}
	})
}

// bodyCacheKey is the request-context key createRequestHandler stores
// the per-request bodyCache under, after it has already buffered the
// payload once for the codec.
type bodyCacheKey struct{}

// withBodyCache attaches c to r's context, so a handler calling
// FormValues against the same request reuses the one buffered read
// instead of trying (and failing) to read the body a second time.
func withBodyCache(r *http.Request, c *bodyCache) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), bodyCacheKey{}, c))
}

// FormValues returns r's form fields (urlencoded or multipart), reusing
// the bodyCache createRequestHandler already populated for this request
// when one is present, and falling back to a fresh one (with the
// default size cap) otherwise — e.g. for requests built directly
// against an Endpoint (C9) rather than through Register[I, O].
func FormValues(r *http.Request) (url.Values, error) {
	c, ok := r.Context().Value(bodyCacheKey{}).(*bodyCache)
	if !ok {
		c = newBodyCache(0)
	}
	return c.FormData(r)
}

// sniffContentType detects a body's content type from its magic bytes
// when the client didn't send (or lied about) a Content-Type header.
func sniffContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Error413ContentTooLarge reports that the request body exceeded the
// configured size cap.
func Error413ContentTooLarge(msg string, errs ...error) StatusError {
	return NewError(http.StatusRequestEntityTooLarge, msg, errs...)
}
