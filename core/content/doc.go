// Package content defines the row content model shared by both sides of the sync.
//
// A grid row and a stored row record carry the same logical payload: an ordered
// mapping of normalized header keys to cell values. Every grid cell is ultimately
// a string, and a blank cell is represented as null so that trailing empty cells
// never make two otherwise equal rows look different.
//
// # Types
//
//   - Value: a closed value type holding either a string or null.
//   - Content: an insertion-ordered mapping of keys to Values.
//
// # Fingerprint
//
// Fingerprint returns the hex SHA-256 digest of the canonical form of a Content
// (keys sorted, compact JSON, no HTML escaping). Two contents with the same keys
// and values produce the same fingerprint regardless of key order, which lets the
// reconciler detect changes without a structural comparison on every poll.
//
// # Usage
//
//	c := content.New()
//	c.Set("id", content.String("42"))
//	c.Set("email", content.Null())
//	hash := c.Fingerprint()
package content
