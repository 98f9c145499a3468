package metadata

import (
	"fmt"
	"reflect"

	"github.com/talav/tagparser"
)

// EnumTagMode classifies how a Go union (an interface field paired with
// concrete implementations, or a sum-type-shaped struct) serializes its
// variant tag alongside its content, mirroring serde's four enum
// representations.
type EnumTagMode int

const (
	// EnumExternallyTagged wraps the content under a key named for the
	// variant: {"Variant": {...}}. The default when no "enum" tag is present.
	EnumExternallyTagged EnumTagMode = iota
	// EnumInternallyTagged stores the variant name in a field alongside
	// the content's own fields: {"type": "Variant", ...fields}.
	EnumInternallyTagged
	// EnumAdjacentlyTagged stores the variant name and content under two
	// separate configured keys: {"type": "Variant", "content": {...}}.
	EnumAdjacentlyTagged
	// EnumUntagged stores only the content, with the variant inferred
	// from shape at decode time.
	EnumUntagged
)

// EnumMetadata describes a field's (or struct's) enum tagging mode and
// the key names that mode uses.
type EnumMetadata struct {
	Mode        EnumTagMode
	TagField    string // internally/adjacently tagged: the variant-name key, default "type"
	ContentField string // adjacently tagged only: the payload key, default "content"
}

// ParseEnumTag parses an `enum:"..."` tag. Supported forms:
//
//	enum:"external"                          (default if tag absent)
//	enum:"internal,tag=type"
//	enum:"adjacent,tag=type,content=content"
//	enum:"untagged"
func ParseEnumTag(field reflect.StructField, index int, tagValue string) (any, error) {
	tag, err := tagparser.Parse(tagValue)
	if err != nil {
		return nil, fmt.Errorf("field %s: failed to parse enum tag: %w", field.Name, err)
	}

	meta := &EnumMetadata{TagField: "type", ContentField: "content"}
	for name, value := range tag.Options {
		switch name {
		case "external":
			meta.Mode = EnumExternallyTagged
		case "internal":
			meta.Mode = EnumInternallyTagged
		case "adjacent":
			meta.Mode = EnumAdjacentlyTagged
		case "untagged":
			meta.Mode = EnumUntagged
		case "tag":
			if value != "" {
				meta.TagField = value
			}
		case "content":
			if value != "" {
				meta.ContentField = value
			}
		default:
			return nil, fmt.Errorf("field %s: unknown enum tag option %q", field.Name, name)
		}
	}

	return meta, nil
}

// DefaultEnumMetadata returns the externally-tagged default, for fields
// with no explicit "enum" tag.
func DefaultEnumMetadata(_ reflect.StructField, _ int) any {
	return &EnumMetadata{Mode: EnumExternallyTagged, TagField: "type", ContentField: "content"}
}
