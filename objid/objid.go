// Package objid defines the opaque 128-bit object identifier shared by
// the value, object store, and evaluator packages.
package objid

import (
	"github.com/google/uuid"
)

// ObjectId is an opaque 128-bit identifier for an Object. Equality and
// hashing are by raw bits; display is a short 8-character prefix.
type ObjectId uuid.UUID

// System is the well-known all-zero ObjectId, MOO #0.
var System = ObjectId(uuid.Nil)

// Root is the well-known ObjectId for MOO #1. It is deterministic so
// that a freshly initialized store always assigns the same value.
var Root = ObjectId(uuid.MustParse("00000000-0000-0000-0000-000000000001"))

// New allocates a fresh, random ObjectId.
func New() ObjectId {
	return ObjectId(uuid.New())
}

// Nil reports whether id is the zero value (not the same as System,
// though System happens to be the zero value too).
func (id ObjectId) Nil() bool {
	return id == ObjectId{}
}

// Equal reports whether two ObjectIds have identical raw bits.
func (id ObjectId) Equal(other ObjectId) bool {
	return id == other
}

// String renders the short 8-character form used throughout the
// language core: "#" followed by the first 8 hex characters of the id.
func (id ObjectId) String() string {
	full := uuid.UUID(id).String()
	clean := make([]byte, 0, 9)
	clean = append(clean, '#')
	for i := 0; i < len(full) && len(clean) < 9; i++ {
		if full[i] != '-' {
			clean = append(clean, full[i])
		}
	}
	return string(clean)
}

// Bytes returns the raw 16 bytes of the identifier, used as the
// primary-tree key in the object store.
func (id ObjectId) Bytes() []byte {
	b := uuid.UUID(id)
	out := make([]byte, 16)
	copy(out, b[:])
	return out
}

// FromBytes reconstructs an ObjectId from 16 raw bytes, as read back
// from the object store's primary tree.
func FromBytes(b []byte) (ObjectId, bool) {
	if len(b) != 16 {
		return ObjectId{}, false
	}
	var u uuid.UUID
	copy(u[:], b)
	return ObjectId(u), true
}
