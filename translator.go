package flowchart

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// CopyOfKey is the translation key prefixed to cloned labels.
const CopyOfKey = "Copy of"

// Translator resolves a translation key into a localized string.
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(key string) string

func (f TranslatorFunc) Translate(key string) string { return f(key) }

// IdentityTranslator returns keys unchanged.
var IdentityTranslator = TranslatorFunc(func(key string) string { return key })

// Catalog is a flat key -> message translator. Missing keys fall back to the key.
type Catalog map[string]string

func (c Catalog) Translate(key string) string {
	if msg, ok := c[key]; ok && msg != "" {
		return msg
	}
	return key
}

// LoadCatalog parses a YAML (or JSON) translation file. Nested maps are flattened
// with dotted keys, so "oro: {datagrid: {x: y}}" yields "oro.datagrid.x".
func LoadCatalog(data []byte) (Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, validationError(fmt.Sprintf("invalid translation catalog: %v", err), nil)
	}
	out := Catalog{}
	if err := flattenCatalog("", raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenCatalog(prefix string, raw map[string]any, out Catalog) error {
	for k, v := range raw {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			if err := flattenCatalog(key, nested, out); err != nil {
				return err
			}
			continue
		}
		var msg string
		if err := mapstructure.WeakDecode(v, &msg); err != nil {
			return validationError(fmt.Sprintf("invalid translation for %s: %v", key, err), map[string]any{"key": key})
		}
		out[key] = msg
	}
	return nil
}

func normalizeTranslator(t Translator) Translator {
	if t == nil {
		return IdentityTranslator
	}
	return t
}
