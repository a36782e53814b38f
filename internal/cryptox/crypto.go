// Package cryptox holds the content hashing used for asset digests and
// HTTP entity tags.
package cryptox

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex BLAKE2b-256 sum of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ETag quotes a digest as a strong entity tag.
func ETag(digest string) string {
	return `"` + digest + `"`
}

// MatchETag reports whether an If-None-Match header value names etag. A
// comma separated list and the "*" wildcard are accepted; weak tags compare
// by their opaque part.
func MatchETag(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if tag == etag {
			return true
		}
	}
	return false
}
