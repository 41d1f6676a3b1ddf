// Package fingerprint derives the change-detection digest stored per source.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
)

// Sentinel fingerprints for strategies whose state is categorical rather
// than a content digest.
const (
	Exists   = "EXISTS"
	NotFound = "NOT_FOUND"
	Active   = "ACTIVE"
	Inactive = "INACTIVE"
)

// Of returns the lowercase hex SHA-256 of s.
func Of(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}
