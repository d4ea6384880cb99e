// Package connections tracks the live client-session overlay on the
// negative MOO-number space. It is a narrow adaptation of
// server/connection.go's Connection/ConnectionManager shape: instead
// of owning a transport and an output buffer, a slot here is nothing
// more than an object id and a login flag, since transport is out of
// scope for this package.
package connections

import (
	"sync"

	"echo/objid"
)

// Slot is one active connection: a negative MOO number, the backing
// Object create_connection allocated for it (the Object verb code
// reads logged_in/player from via ordinary property access), and
// whether login_connection has bound a player to it.
type Slot struct {
	Num      int64
	Obj      objid.ObjectId
	LoggedIn bool
	Player   objid.ObjectId
}

// Registry is the process-wide table of active connection slots,
// keyed by their negative MOO number. Slot numbers are assigned
// starting at -1 and decreasing, mirroring ConnectionManager's
// nextConnID counter.
type Registry struct {
	mu       sync.RWMutex
	slots    map[int64]*Slot
	nextFree int64
}

// NewRegistry returns an empty registry with the first free slot at -1.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[int64]*Slot), nextFree: -1}
}

// Create allocates a fresh connection slot bound to obj, the backing
// Object create_connection just stored, returning its negative MOO
// number.
func (r *Registry) Create(obj objid.ObjectId) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.nextFree
	r.nextFree--
	r.slots[n] = &Slot{Num: n, Obj: obj}
	return n
}

// Resolve returns the Object backing an active slot n. It reports
// false for any n not currently allocated, in which case the caller
// (eval.evalObjRef) falls back to treating n as a plain integer
// constant.
func (r *Registry) Resolve(n int64) (objid.ObjectId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[n]
	if !ok {
		return objid.ObjectId{}, false
	}
	return s.Obj, true
}

// Login marks slot n as logged in as player.
func (r *Registry) Login(n int64, player objid.ObjectId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[n]
	if !ok {
		return false
	}
	s.LoggedIn = true
	s.Player = player
	return true
}

// Disconnect removes n from the active set; subsequent #n references
// resolve to the bare integer constant again.
func (r *Registry) Disconnect(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, n)
}

// IsLoggedIn reports whether slot n is both active and logged in.
func (r *Registry) IsLoggedIn(n int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[n]
	return ok && s.LoggedIn
}

// Active returns every currently allocated slot, sorted by descending
// number (i.e. allocation order).
func (r *Registry) Active() []*Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Slot, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Num > out[i].Num {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}
