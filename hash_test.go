package glossai

import "testing"

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with leading whitespace",
			input:    "  Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with trailing whitespace",
			input:    "Hello World  ",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:  "empty string",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			// Verify hash length (SHA-256 = 64 hex chars)
			if len(result) != 64 {
				t.Errorf("HashText(%q) length = %d, want 64", tt.input, len(result))
			}
		})
	}
}

func TestGlossaryFingerprint_OrderInsensitive(t *testing.T) {
	a := []Term{
		{Original: "灵气", Translation: "spiritual energy"},
		{Original: "张三", Translation: "Zhang San"},
	}
	b := []Term{
		{Original: "张三", Translation: "Zhang San"},
		{Original: "灵气", Translation: "spiritual energy"},
	}

	if GlossaryFingerprint(a) != GlossaryFingerprint(b) {
		t.Error("fingerprint must not depend on term order")
	}
}

func TestGlossaryFingerprint_ChangesWithMapping(t *testing.T) {
	a := []Term{{Original: "灵气", Translation: "spiritual energy"}}
	b := []Term{{Original: "灵气", Translation: "qi"}}

	if GlossaryFingerprint(a) == GlossaryFingerprint(b) {
		t.Error("a changed rendering must change the fingerprint")
	}
}

func TestGlossaryFingerprint_SkipsUnusable(t *testing.T) {
	a := []Term{{Original: "灵气", Translation: "spiritual energy"}}
	b := []Term{
		{Original: "灵气", Translation: "spiritual energy"},
		{Original: "pending", Translation: ""},
	}

	if GlossaryFingerprint(a) != GlossaryFingerprint(b) {
		t.Error("half-empty terms must not affect the fingerprint")
	}
}

func TestDocKey(t *testing.T) {
	key := DocKey("abc", "def", "en_US")
	if key != "abc:def:en_US" {
		t.Errorf("DocKey() = %q", key)
	}

	other := DocKey("abc", "def", "es_ES")
	if key == other {
		t.Error("keys must differ per target language")
	}
}
