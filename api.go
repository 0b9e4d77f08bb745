package treemap

// Tree is an ordered map over byte-sequence keys. Keys are unique and
// prefix-free: no stored key is a proper prefix of another. Insert enforces
// the invariant by evicting any conflicting entries before storing the new
// key, so insertion of a well-formed key never fails.
//
// Ordering everywhere is raw lexicographic byte order, not text collation.
// The tree is not safe for concurrent use.
type Tree interface {
	// Insert stores value under key, evicting every existing entry whose key
	// is a proper prefix of key or has key as a proper prefix. It returns the
	// value previously held under the exact same key, if any.
	Insert(key Key, value Value) (Value, bool)
	// Search returns the value stored under the exact key.
	Search(key Key) (Value, bool)
	// Delete removes the exact key and returns its prior value. A missing
	// key is not an error.
	Delete(key Key) (Value, bool)
	Contains(key Key) bool
	Size() int
	Empty() bool
	Clear()

	// Minimum and Maximum return the extremal entries by byte order.
	Minimum() (Entry, bool)
	Maximum() (Entry, bool)
	// PopMinimum and PopMaximum remove and return the extremal entry.
	PopMinimum() (Entry, bool)
	PopMaximum() (Entry, bool)

	// ForEach calls cb for every entry in ascending key order until cb
	// returns false.
	ForEach(cb Callback)
	// ForEachPrefix calls cb for every entry whose key starts with prefix,
	// in ascending key order.
	ForEachPrefix(prefix Key, cb Callback)

	// Iterator returns a snapshot of all entries taken at call time. Later
	// mutation of the tree does not affect an already produced iterator.
	Iterator() Iterator
	PrefixIterator(prefix Key) Iterator
	// GetPrefix returns the first entry whose key starts with prefix.
	GetPrefix(prefix Key) (Entry, bool)
	Keys() []Key
	Values() []Value
	Items() []Entry

	// FuzzySearch returns every entry whose key is within maxDistance
	// character edits of key, with the exact computed distance.
	FuzzySearch(key Key, maxDistance int) []Match

	String() string
	// Dump returns an indented structural listing, for debugging.
	Dump() string
}

// Iterator walks a snapshot of entries. It is exhausted once Next has
// returned every captured entry and cannot be restarted.
type Iterator interface {
	HasNext() bool
	Next() (Entry, error)
}

func New() Tree {
	return &tree{}
}

// NewFromItems builds a tree by force-inserting each pair in order. Later
// pairs win any uniqueness or prefix conflict with earlier ones.
func NewFromItems(items []Entry) Tree {
	t := &tree{}
	for _, e := range items {
		t.Insert(e.Key, e.Value)
	}
	return t
}

// NewFromMap builds a tree from a string-keyed map. Map iteration order
// decides which of two mutually conflicting keys survives.
func NewFromMap(m map[string]Value) Tree {
	t := &tree{}
	for k, v := range m {
		t.Insert(Key(k), v)
	}
	return t
}
