// Package id provides identifier generation for Teamsync services.
//
// Two kinds of identifiers are produced:
//
//   - ULIDs: lexicographically sortable request and entity identifiers
//   - UUIDs: random (v4) and deterministic name-based (v5) identifiers
//
// Deterministic v5 UUIDs are used to derive stable vector point IDs from
// domain entity IDs, so re-indexing the same entity overwrites its previous
// vector instead of accumulating duplicates.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID generates a new ULID string.
// ULIDs generated within the same millisecond are monotonically increasing.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ParseULID parses a ULID string.
func ParseULID(s string) (ulid.ULID, error) {
	return ulid.ParseStrict(s)
}

// IsValidULID checks if a string is a valid ULID.
func IsValidULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// NewUUID generates a new random (v4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// NewV5 derives a deterministic (v5) UUID from a namespace and a name.
// The same namespace and name always produce the same UUID.
func NewV5(namespace uuid.UUID, name string) string {
	return uuid.NewSHA1(namespace, []byte(name)).String()
}

// MustNamespace parses a namespace UUID and panics on failure.
// Intended for package-level namespace constants.
func MustNamespace(s string) uuid.UUID {
	return uuid.MustParse(s)
}
