// Package cache keeps attestation responses so a transfer is not re-attested on every run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// KeyPrefix is bumped whenever the cached payload changes meaning
const KeyPrefix = "zktransfer:v1:"

// CacheKey derives the key for one transfer at one attestation endpoint.
// Bank and transfer ids only appear hashed.
func CacheKey(endpoint, bank, id string) string {
	hash := sha256.Sum256([]byte(endpoint + "|" + bank + "|" + id))
	return KeyPrefix + hex.EncodeToString(hash[:])
}
