package objstore

import (
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"echo/objid"
	"echo/value"
)

var (
	objectsBucket = []byte("objects")
	indicesBucket = []byte("indices")
)

const namePrefix = "name:"
const mooPrefix = "moo:"

func nameKey(name string) []byte { return []byte(namePrefix + name) }

func mooKey(n int64) []byte { return []byte(fmt.Sprintf("%s%020d", mooPrefix, n)) }

func decodeMooKey(k []byte) (int64, error) {
	var n int64
	_, err := fmt.Sscanf(string(k[len(mooPrefix):]), "%d", &n)
	if err != nil {
		return 0, fmt.Errorf("objstore: malformed moo-bimap key %q: %w", k, err)
	}
	return n, nil
}

// Store is the durable key/value Object database: a bbolt.DB holding
// the "objects" primary tree and the "indices" secondary tree (name
// lookup and the persisted half of the MOO-number bimap), plus the
// in-memory bimap rebuilt from indices at open time for fast lookup
// on the evaluator's hot path.
type Store struct {
	db *bbolt.DB

	mu       sync.RWMutex
	mooToID  map[int64]objid.ObjectId
	idToMoo  map[objid.ObjectId]int64
	nextFree int64
}

// Open opens (creating if absent) the bbolt database at path, ensures
// the two top-level buckets exist, rebuilds the in-memory MOO bimap
// from the indices bucket, and seeds #0/#1 on a fresh store.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("objstore: opening %s: %w", path, err)
	}

	s := &Store{
		db:      db,
		mooToID: make(map[int64]objid.ObjectId),
		idToMoo: make(map[objid.ObjectId]int64),
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(objectsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(indicesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("objstore: initializing buckets: %w", err)
	}

	if err := s.loadBimap(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.ensureSystemAndRoot(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) loadBimap() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(indicesBucket)
		c := b.Cursor()
		for k, v := c.Seek([]byte(mooPrefix)); k != nil && len(k) >= len(mooPrefix) && string(k[:len(mooPrefix)]) == mooPrefix; k, v = c.Next() {
			n, err := decodeMooKey(k)
			if err != nil {
				return err
			}
			id, ok := objid.FromBytes(v)
			if !ok {
				return fmt.Errorf("objstore: malformed moo-bimap entry for %d", n)
			}
			s.mooToID[n] = id
			s.idToMoo[id] = n
			if n >= s.nextFree {
				s.nextFree = n + 1
			}
		}
		return nil
	})
}

// ensureSystemAndRoot creates #0 ($system, self-referential `system`
// property) and #1 ($root, parented to #0) if they do not yet exist,
// and seeds the bimap with 0<->system, 1<->root.
func (s *Store) ensureSystemAndRoot() error {
	if _, ok := s.ResolveMooID(0); !ok {
		sys := NewObject(objid.System, "$system")
		if err := s.Store(sys); err != nil {
			return err
		}
		if err := s.RegisterMooID(0, objid.System); err != nil {
			return err
		}
		sys.Properties["system"] = value.NewObj(objid.System)
		if err := s.Store(sys); err != nil {
			return err
		}
	}
	if _, ok := s.ResolveMooID(1); !ok {
		root := NewObject(objid.Root, "$root")
		parent := objid.System
		root.Parent = &parent
		if err := s.Store(root); err != nil {
			return err
		}
		if err := s.RegisterMooID(1, objid.Root); err != nil {
			return err
		}
	}
	return nil
}

// Store writes obj under its id, updates the name index to point to
// it, and flushes. A prior name index entry for an old name is left in
// place, per the store's delete-before-rename contract.
func (s *Store) Store(obj *Object) error {
	data, err := encodeObject(obj)
	if err != nil {
		return fmt.Errorf("objstore: encoding %s: %w", obj.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(objectsBucket).Put(obj.ID.Bytes(), data); err != nil {
			return err
		}
		return tx.Bucket(indicesBucket).Put(nameKey(obj.Name), obj.ID.Bytes())
	})
}

// ErrNotFound is returned by Get when no record exists for an id.
type ErrNotFound struct{ ID objid.ObjectId }

func (e ErrNotFound) Error() string { return fmt.Sprintf("objstore: object %s not found", e.ID) }

// Get deserializes the record stored under id.
func (s *Store) Get(id objid.ObjectId) (*Object, error) {
	var obj *Object
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(objectsBucket).Get(id.Bytes())
		if data == nil {
			return ErrNotFound{ID: id}
		}
		decoded, err := decodeObject(data)
		if err != nil {
			return err
		}
		obj = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// FindByName looks up an ObjectId by current name index entry.
func (s *Store) FindByName(name string) (objid.ObjectId, bool) {
	var id objid.ObjectId
	found := false
	s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(indicesBucket).Get(nameKey(name))
		if data == nil {
			return nil
		}
		if resolved, ok := objid.FromBytes(data); ok {
			id, found = resolved, true
		}
		return nil
	})
	return id, found
}

// Delete removes the primary record for id and, best-effort, its name
// index entry (read first, so a record that failed to decode doesn't
// block deletion of the primary key).
func (s *Store) Delete(id objid.ObjectId) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		objects := tx.Bucket(objectsBucket)
		if data := objects.Get(id.Bytes()); data != nil {
			if obj, err := decodeObject(data); err == nil {
				tx.Bucket(indicesBucket).Delete(nameKey(obj.Name))
			}
		}
		return objects.Delete(id.Bytes())
	})
}

// ListAll scans the primary tree and returns every stored ObjectId.
func (s *Store) ListAll() ([]objid.ObjectId, error) {
	var ids []objid.ObjectId
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(objectsBucket).ForEach(func(k, _ []byte) error {
			if id, ok := objid.FromBytes(k); ok {
				ids = append(ids, id)
			}
			return nil
		})
	})
	return ids, err
}

// GetOrCreateMooID returns the ObjectId mapped to legacy MOO number n,
// allocating and persisting a fresh one if none exists yet.
func (s *Store) GetOrCreateMooID(n int64) (objid.ObjectId, error) {
	if id, ok := s.ResolveMooID(n); ok {
		return id, nil
	}
	id := objid.New()
	if err := s.RegisterMooID(n, id); err != nil {
		return objid.ObjectId{}, err
	}
	return id, nil
}

// ResolveMooID performs the bimap's forward lookup.
func (s *Store) ResolveMooID(n int64) (objid.ObjectId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.mooToID[n]
	return id, ok
}

// RegisterMooID explicitly inserts a bimap entry, as used by importers
// that must preserve the original database's MOO numbering. Fails if n
// or id is already bound to something else, preserving bijectivity.
func (s *Store) RegisterMooID(n int64, id objid.ObjectId) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.mooToID[n]; ok && existing != id {
		return fmt.Errorf("objstore: MOO number %d already maps to %s", n, existing)
	}
	if existing, ok := s.idToMoo[id]; ok && existing != n {
		return fmt.Errorf("objstore: object %s already has MOO number %d", id, existing)
	}

	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(indicesBucket).Put(mooKey(n), id.Bytes())
	}); err != nil {
		return fmt.Errorf("objstore: persisting MOO bimap entry: %w", err)
	}

	s.mooToID[n] = id
	s.idToMoo[id] = n
	if n >= s.nextFree {
		s.nextFree = n + 1
	}
	return nil
}

// IsValidMooID reports whether n is present in the bimap.
func (s *Store) IsValidMooID(n int64) bool {
	_, ok := s.ResolveMooID(n)
	return ok
}
