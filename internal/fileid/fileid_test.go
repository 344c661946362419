package fileid

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDocPath(t *testing.T) {
	got := DocPath("/data/docs", "segment")
	want := filepath.Join("/data/docs", "segment_docs.json")
	if got != want {
		t.Errorf("DocPath = %q, want %q", got, want)
	}
	if DocPath("/data/docs", "segment") != got {
		t.Error("same key should give same path")
	}
}

func TestCollectionKey(t *testing.T) {
	tests := []struct {
		path string
		key  string
		ok   bool
	}{
		{"/data/docs/segment_docs.json", "segment", true},
		{"mparticle_docs.json", "mparticle", true},
		{"/data/docs/./lytics_docs.json", "lytics", true},
		{"/data/docs/segment.json", "", false},
		{"/data/docs/_docs.json", "", false},
		{"/data/docs/notes.txt", "", false},
	}
	for _, tt := range tests {
		key, ok := CollectionKey(tt.path)
		if key != tt.key || ok != tt.ok {
			t.Errorf("CollectionKey(%q) = %q, %v; want %q, %v", tt.path, key, ok, tt.key, tt.ok)
		}
	}
}

func TestCollectionKey_roundTrip(t *testing.T) {
	for _, key := range []string{"segment", "zeotap", "my-platform_2"} {
		got, ok := CollectionKey(DocPath(t.TempDir(), key))
		if !ok || got != key {
			t.Errorf("round trip %q: got %q, %v", key, got, ok)
		}
	}
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "../etc"} {
		if err := ValidateKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
	if err := ValidateKey("segment"); err != nil {
		t.Errorf("ValidateKey(segment) = %v", err)
	}
}
