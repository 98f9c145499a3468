package zorya

import (
	"strings"

	"github.com/talav/zorya/router"
)

// defaultCRUDMethods is the conventional method set installed for a
// router node that carries a goal handler but no explicit MethodFilter
// (so it would otherwise match every verb).
var defaultCRUDMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// MergeRouter walks root (as built by adapters.RouterAdapter, or any
// router.Router tree) and installs a PathItem/Operation into doc for
// every node carrying a goal handler, without disturbing operations
// already registered through the eager Register[I, O] path. Existing
// path items win: MergeRouter only fills in entries Register[I, O]
// hasn't already populated, and shallow-merges each Endpoint's
// Components into doc, warning (via cfg.Logger) on any component name
// collision instead of silently overwriting.
//
// A node identified via router.Router.Identify (BaseRoute.Identity) has
// its Endpoint fetched from the process-wide registry (C9) and installed
// verbatim: the registry is the authority on that handler's operation
// metadata. A node with a goal handler but no Identity — e.g. one wired
// directly against router.Router without going through RegisterEndpoint
// — still gets a bare Operation carrying only the tags/security declared
// on it and its ancestors, same as before.
func MergeRouter(doc *OpenAPI, root *router.Router, cfg *Config) {
	if doc.Paths == nil {
		doc.Paths = map[string]*PathItem{}
	}

	root.Walk(func(node *router.Router, ancestors []*router.Router) {
		if node.Goal == nil || node.PathTemplate == "" {
			return
		}

		normPath := normalizePathTemplate(node.PathTemplate)
		item, ok := doc.Paths[normPath]
		if !ok {
			item = &PathItem{}
			doc.Paths[normPath] = item
		}

		methods := []string{node.Method}
		if node.Method == "" {
			methods = defaultCRUDMethods
		}

		tags, security := collectAncestorMetadata(node, ancestors)
		op, components := resolveOperation(node, tags, security)

		for _, m := range methods {
			if setPathItemOperationIfAbsent(item, m, op) {
				checkPathParameters(cfg, normPath, node.PathTemplate, op)
			}
		}

		MergeComponents(doc, components, cfg)
	})
}

// resolveOperation builds the Operation (and, if registered, Components)
// for node: the registered Endpoint's Operation when node.Identity names
// one (C9), falling back to a bare Operation carrying only the collected
// tags/security otherwise.
func resolveOperation(node *router.Router, tags []string, security []map[string][]string) (*Operation, *Components) {
	if node.Identity != nil {
		if ep, ok := LookupEndpointByIdentity(node.Identity); ok && ep.Operation != nil {
			op := *ep.Operation
			op.Tags = mergeUnique(tags, op.Tags)
			if len(op.Security) == 0 {
				op.Security = security
			}
			return &op, ep.Components
		}
	}

	return &Operation{Tags: tags, Security: security}, nil
}

// mergeUnique unions a and b, preserving a's order first then b's,
// skipping values already seen.
func mergeUnique(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string{}, a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// normalizePathTemplate rewrites the wisp "<name>"/"{name}" capture
// syntax into OpenAPI's "{name}" placeholder convention, stripping any
// ":type"/wildcard-prefix decoration so the two styles converge on one
// canonical path-item key.
func normalizePathTemplate(pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '<' && ch != '{' {
			b.WriteRune(ch)
			continue
		}
		close := byte('>')
		if ch == '{' {
			close = '}'
		}
		start := i + 1
		end := start
		for end < len(runes) && byte(runes[end]) != close && runes[end] != ':' {
			end++
		}
		name := strings.TrimLeft(string(runes[start:end]), "*+?")
		b.WriteString("{")
		b.WriteString(name)
		b.WriteString("}")
		for i < len(runes) && byte(runes[i]) != close {
			i++
		}
	}
	return b.String()
}

// collectAncestorMetadata unions Tags and Security declared on node and
// every ancestor back to the root, outermost first.
func collectAncestorMetadata(node *router.Router, ancestors []*router.Router) ([]string, []map[string][]string) {
	var tags []string
	var security []map[string][]string
	seen := map[string]bool{}
	for _, a := range append(append([]*router.Router{}, ancestors...), node) {
		for _, t := range a.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
		security = append(security, a.Security...)
	}
	return tags, security
}

func setPathItemOperationIfAbsent(item *PathItem, method string, op *Operation) bool {
	switch strings.ToUpper(method) {
	case "GET":
		if item.Get != nil {
			return false
		}
		item.Get = op
	case "POST":
		if item.Post != nil {
			return false
		}
		item.Post = op
	case "PUT":
		if item.Put != nil {
			return false
		}
		item.Put = op
	case "PATCH":
		if item.Patch != nil {
			return false
		}
		item.Patch = op
	case "DELETE":
		if item.Delete != nil {
			return false
		}
		item.Delete = op
	case "HEAD":
		if item.Head != nil {
			return false
		}
		item.Head = op
	default:
		return false
	}
	return true
}

// checkPathParameters cross-checks normPath's "{name}" placeholders
// against op.Parameters' "in: path" entries in both directions, warning
// (via cfg.Logger, never failing the merge) on any mismatch: a
// placeholder with no declared parameter means a handler will receive a
// capture the OpenAPI document never documents; a declared path
// parameter with no placeholder means the document promises a capture
// the route can never actually produce.
func checkPathParameters(cfg *Config, normPath, rawPattern string, op *Operation) {
	if cfg == nil || cfg.Logger == nil {
		return
	}

	if strings.Contains(rawPattern, "*") {
		cfg.Logger.Warn("route path contains a wildcard capture; OpenAPI path parameter will not convey its greedy semantics",
			"path", normPath, "pattern", rawPattern)
	}

	placeholders := extractPathPlaceholders(normPath)

	declared := map[string]bool{}
	if op != nil {
		for _, p := range op.Parameters {
			if p.In == "path" {
				declared[p.Name] = true
			}
		}
	}

	for name := range placeholders {
		if !declared[name] {
			cfg.Logger.Warn("path placeholder has no matching operation parameter",
				"path", normPath, "parameter", name)
		}
	}
	for name := range declared {
		if !placeholders[name] {
			cfg.Logger.Warn("operation declares a path parameter with no matching placeholder in the route path",
				"path", normPath, "parameter", name)
		}
	}
}

// extractPathPlaceholders returns the set of "{name}" placeholder names
// in an OpenAPI-normalized path.
func extractPathPlaceholders(normPath string) map[string]bool {
	names := map[string]bool{}
	runes := []rune(normPath)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '{' {
			continue
		}
		start := i + 1
		end := start
		for end < len(runes) && runes[end] != '}' {
			end++
		}
		if end < len(runes) {
			names[string(runes[start:end])] = true
		}
		i = end
	}
	return names
}

// MergeComponents shallow-merges src into dst's Components maps,
// warning on any name collision instead of silently overwriting an
// already-registered schema, response, or parameter.
func MergeComponents(dst *OpenAPI, src *Components, cfg *Config) {
	if src == nil {
		return
	}
	if dst.Components == nil {
		dst.Components = &Components{}
	}
	mergeSchemaMap(dst, src, cfg)
}

func mergeSchemaMap(dst *OpenAPI, src *Components, cfg *Config) {
	if src.Schemas == nil {
		return
	}
	if dst.Components.Schemas == nil {
		dst.Components.Schemas = map[string]*Schema{}
	}
	for name, schema := range src.Schemas {
		if _, exists := dst.Components.Schemas[name]; exists {
			if cfg != nil && cfg.Logger != nil {
				cfg.Logger.Warn("duplicate OpenAPI component schema name, keeping the first registration", "name", name)
			}
			continue
		}
		dst.Components.Schemas[name] = schema
	}
}
