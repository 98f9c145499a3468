package zorya

import "log/slog"

// DefaultBodySizeCap is the default ceiling on cached request body size (64 KiB).
const DefaultBodySizeCap int64 = 64 * 1024

// Config represents a configuration for a new API. See `DefaultConfig()`
// as a starting point.
type Config struct {
	// OpenAPIPath is the exact path to the OpenAPI spec endpoint.
	// The path is used as-is, with no automatic suffix or extension handling.
	OpenAPIPath string

	// DocsPath is the path to the API documentation. If set to `/docs` it will
	// allow clients to get `/docs` to view the documentation in a browser. If
	// you wish to provide your own documentation renderer, you can leave this
	// blank and attach it directly to the router or adapter.
	DocsPath string

	// SchemasPath is the path to the API schemas. NewAPI does not read it:
	// no endpoint is registered under this path.
	SchemasPath string

	// DefaultFormat names a default content type. NewAPI does not read this
	// field; the API's default format is application/json unless set with
	// WithDefaultFormat.
	DefaultFormat string

	// NoFormatFallback is not read by the API: when the client requests an
	// unknown content type, Negotiate always falls back to the default format.
	NoFormatFallback bool

	// BodySizeCap bounds how much of a request body the body cache will
	// buffer in memory. Requests whose body exceeds this are rejected with
	// PayloadTooLarge before the handler runs. Defaults to DefaultBodySizeCap.
	BodySizeCap int64

	// MatchedPathHeader, if set, names a response header the router sets to
	// the matched route template (e.g. "/users/{id}") rather than the raw
	// request path. Useful for metrics cardinality control. Empty disables it.
	MatchedPathHeader string

	// Logger receives structured warnings emitted during OpenAPI merge
	// (duplicate component names, path parameters with no matching route
	// placeholder) and other ambient diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a default configuration for a new API. It is a good
// starting point for creating your own configuration. It sets the
// `/openapi.json` and `/docs` paths that NewAPI uses to serve the OpenAPI
// spec and the docs UI, the 64 KiB body size cap and the default logger.
// SchemasPath is set to `/schemas`, but no endpoint is registered for it.
//
//	// Create and customize the config (if desired).
//	config := zorya.DefaultConfig()
//
//	// Create the API using the config.
//	router := adapters.NewRouterAdapter()
//	api := zorya.NewAPI(router, zorya.WithConfig(config))
func DefaultConfig() *Config {
	return &Config{
		OpenAPIPath:      "/openapi.json",
		DocsPath:         "/docs",
		SchemasPath:      "/schemas",
		DefaultFormat:    "application/json",
		NoFormatFallback: false,
		BodySizeCap:      DefaultBodySizeCap,
		Logger:           NewDefaultLogger(),
	}
}
