// Package cache stores extraction results keyed by document content so
// unchanged files are not re-extracted between scans.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-valued key store with per-entry expiry
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ExtractionKey derives a cache key from everything an extraction result
// depends on: the file name, its bytes, the catalog in effect and any
// manual override tags.
func ExtractionKey(filename string, content []byte, catalogFingerprint string, overrides []string) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(catalogFingerprint))
	for _, tag := range overrides {
		h.Write([]byte{0})
		h.Write([]byte(tag))
	}
	return "casedex-v1-" + hex.EncodeToString(h.Sum(nil))
}
