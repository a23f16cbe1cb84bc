package types

import (
	"sort"
	"strings"
)

// Attributes is the open attribute map carried on a cart line (size, finish,
// etc). It is stored as jsonb and canonicalized before use as merge identity.
type Attributes map[string]string

// Normalize returns a copy with empty keys/values dropped and whitespace
// trimmed. Nil maps normalize to an empty map.
func (a Attributes) Normalize() Attributes {
	normalized := Attributes{}
	for key, value := range a {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k == "" || v == "" {
			continue
		}
		normalized[k] = v
	}
	return normalized
}

// canonicalEscaper quotes the separator characters so a value containing
// "|" or "=" cannot collide with a different attribute set.
var canonicalEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `=`, `\=`)

// CanonicalKey renders the normalized map as a deterministic string so that
// attribute insertion order never affects line identity.
func (a Attributes) CanonicalKey() string {
	normalized := a.Normalize()
	keys := make([]string, 0, len(normalized))
	for key := range normalized {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, canonicalEscaper.Replace(key)+"="+canonicalEscaper.Replace(normalized[key]))
	}
	return strings.Join(parts, "|")
}

// Equal reports whether two attribute maps share the same canonical identity.
func (a Attributes) Equal(other Attributes) bool {
	return a.CanonicalKey() == other.CanonicalKey()
}
