package zorya

import "encoding/json"

// marshalWithExtensions marshals v (a struct with an `Extensions
// map[string]any` field already excluded from its own json tags) and
// merges the extension keys as JSON siblings, as OpenAPI's "x-" vendor
// extensions require.
func marshalWithExtensions(v any, extensions map[string]any) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extensions) == 0 {
		return base, err
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return base, err
	}

	for k, val := range extensions {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}

	return json.Marshal(merged)
}

type schemaAlias Schema

// MarshalJSON implements json.Marshaler, merging schema extensions,
// writing a nullable schema's type as [type, "null"] and omitting
// hidden schemas' internal bookkeeping fields.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	if s.Nullable != nil && *s.Nullable && s.Type != "" {
		ext := make(map[string]any, len(s.Extensions)+1)
		for k, v := range s.Extensions {
			ext[k] = v
		}
		ext["type"] = []SchemaType{s.Type, TypeNull}

		return marshalWithExtensions((*schemaAlias)(s), ext)
	}

	return marshalWithExtensions((*schemaAlias)(s), s.Extensions)
}

type operationAlias Operation

// MarshalJSON implements json.Marshaler, merging operation-level extensions.
func (o *Operation) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}

	return marshalWithExtensions((*operationAlias)(o), o.Extensions)
}

type infoAlias Info

// MarshalJSON implements json.Marshaler, merging info-level extensions.
func (i *Info) MarshalJSON() ([]byte, error) {
	if i == nil {
		return []byte("null"), nil
	}

	return marshalWithExtensions((*infoAlias)(i), i.Extensions)
}

type openAPIAlias OpenAPI

// MarshalJSON implements json.Marshaler, merging document-level extensions.
func (doc *OpenAPI) MarshalJSON() ([]byte, error) {
	if doc == nil {
		return []byte("null"), nil
	}

	return marshalWithExtensions((*openAPIAlias)(doc), doc.Extensions)
}
