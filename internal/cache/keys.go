package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	GlobalKeyPrefix = "microlearn"
)

// GenerateCacheKey builds "<prefix>:<service>:<objectType>:<identifier>[:<params joined by _>]".
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// SessionKey is the key of a stored session record.
func SessionKey(sessionID string) string {
	return GenerateCacheKey("session", "record", sessionID)
}

// BundleKey is the key of a cached learning bundle for the given source text.
func BundleKey(sourceText string) string {
	return GenerateCacheKey("content", "bundle", HashText(sourceText))
}

// HashText returns the hex SHA-256 digest of s.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
