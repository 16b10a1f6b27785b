package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines a byte-oriented cache with per-entry TTL
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a stable cache key for the embedding of text by provider/model
func Key(provider, model, text string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "distrust-emb-v1-" + hex.EncodeToString(h.Sum(nil))
}
