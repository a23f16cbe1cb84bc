package types

import "testing"

func TestCanonicalKeyIgnoresInsertionOrder(t *testing.T) {
	t.Parallel()

	a := Attributes{"medida": "2x4", "acabado": "cepillado"}
	b := Attributes{"acabado": "cepillado", "medida": "2x4"}
	if !a.Equal(b) {
		t.Fatalf("expected equal identity, got %q vs %q", a.CanonicalKey(), b.CanonicalKey())
	}
}

func TestCanonicalKeyNormalizesWhitespaceAndEmpties(t *testing.T) {
	t.Parallel()

	a := Attributes{" medida ": " 2x4 ", "vacio": "   ", "": "x"}
	b := Attributes{"medida": "2x4"}
	if !a.Equal(b) {
		t.Fatalf("expected equal identity, got %q vs %q", a.CanonicalKey(), b.CanonicalKey())
	}
}

func TestCanonicalKeyEscapesSeparators(t *testing.T) {
	t.Parallel()

	crafted := Attributes{"a": "b|c=d"}
	split := Attributes{"a": "b", "c": "d"}
	if crafted.Equal(split) {
		t.Fatalf("separator characters inside a value must not forge identity: %q", crafted.CanonicalKey())
	}

	backslash := Attributes{"a": `b\`, "c": "d"}
	if backslash.Equal(split) || backslash.Equal(crafted) {
		t.Fatalf("escape character must round-trip, got %q", backslash.CanonicalKey())
	}
}
