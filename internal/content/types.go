package content

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashLen is the length of a hex-encoded object hash.
const HashLen = 40

// Hash returns the lowercase hex SHA-1 digest of content.
func Hash(content []byte) string {
	h := sha1.Sum(content)
	return hex.EncodeToString(h[:])
}

// ValidHash reports whether s looks like an object hash.
func ValidHash(s string) bool {
	if len(s) != HashLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
