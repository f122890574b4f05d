package content

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Canonical returns the canonical serialization of c: a compact JSON object with
// keys sorted by byte order and no HTML escaping.
func (c Content) Canonical() []byte {
	keys := c.Keys()
	sort.Strings(keys)
	// Encoding a string can only fail on an encoder error, which bytes.Buffer never returns.
	b, _ := c.encode(keys)
	return b
}

// Fingerprint returns the hex SHA-256 digest of the canonical form of c.
func (c Content) Fingerprint() string {
	sum := sha256.Sum256(c.Canonical())
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]*string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
