// Package checksum computes card file digests used as version tags for
// optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag formats sum as a strong HTTP entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// Normalize strips the quoting and weak prefix from an If-Match value.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")
	return strings.Trim(tag, `"`)
}

// Matches reports whether ifMatch names the current version of data. An
// empty ifMatch or "*" matches any version.
func Matches(ifMatch string, data []byte) bool {
	want := Normalize(ifMatch)
	if want == "" || want == "*" {
		return true
	}
	return want == Sum(data)
}
