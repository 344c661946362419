// Package fileid maps collection keys to their document file names and back.
package fileid

import (
	"errors"
	"path/filepath"
	"strings"
)

// Suffix is appended to a collection key to form its document file name.
const Suffix = "_docs.json"

// ErrInvalidKey is returned for keys that cannot name a document file.
var ErrInvalidKey = errors.New("invalid collection key")

// ValidateKey rejects empty keys and keys that would escape the documents directory.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return ErrInvalidKey
	}
	return nil
}

// FileName returns "<key>_docs.json".
func FileName(key string) string {
	return key + Suffix
}

// DocPath returns the document file path for key inside dir.
// Same key always yields the same path.
func DocPath(dir, key string) string {
	return filepath.Join(dir, FileName(key))
}

// CollectionKey extracts the collection key from a document file path.
// Reports false when the base name does not end in Suffix or the key is invalid.
func CollectionKey(path string) (string, bool) {
	base := filepath.Base(filepath.Clean(path))
	key, ok := strings.CutSuffix(base, Suffix)
	if !ok || ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}
