package tools

import (
	"encoding/json"
	"testing"
)

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestBase64Encode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"simple", "hi", "aGk="},
		{"sentence", "hello world", "aGVsbG8gd29ybGQ="},
		{"empty", "", ""},
		{"unicode", "héllo", "aMOpbGxv"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := invoke(t, "base64_encode", `{"text":`+quote(tc.text)+`}`)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := v.(base64EncodeResult)
			if res.Encoded != tc.want {
				t.Errorf("encoded = %q, want %q", res.Encoded, tc.want)
			}
		})
	}
}

func TestSHA256Hash(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"known vector", "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := invoke(t, "sha256_hash", `{"text":`+quote(tc.text)+`}`)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := v.(sha256HashResult)
			if res.Hash != tc.want {
				t.Errorf("hash = %q, want %q", res.Hash, tc.want)
			}
			if len(res.Hash) != 64 {
				t.Errorf("hash length = %d, want 64", len(res.Hash))
			}
		})
	}
}

func TestSHA256HashDeterministic(t *testing.T) {
	first, err := invoke(t, "sha256_hash", `{"text":"determinism"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := invoke(t, "sha256_hash", `{"text":"determinism"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.(sha256HashResult).Hash != second.(sha256HashResult).Hash {
		t.Error("same input produced different hashes")
	}
}
