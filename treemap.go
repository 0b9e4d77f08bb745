package treemap

import (
	"errors"
	"unsafe"
)

const (
	Leaf Kind = iota
	Node4
	Node16
	Node48
	Node256
)

const (
	traverseStop traverseAction = iota
	traverseContinue
)

const (
	// node constraints
	node4Min = 2
	node4Max = 4

	node16Min = node4Max + 1
	node16Max = 16

	node48Min = node16Max + 1
	node48Max = 48

	node256Min = node48Max + 1
	node256Max = 256

	// MaxPrefixLen is maximum compressed prefix length stored inline in an
	// inner node. Longer prefixes are recovered from the minimum leaf.
	MaxPrefixLen = 10

	// Node with 48 children
	n48s = 6  // 2^n48s == n48m
	n48m = 64 // it should be sizeof(node48.present[0])
)

var (
	// ErrNoMoreEntries is returned by Next on an exhausted snapshot.
	ErrNoMoreEntries = errors.New("there are no more entries in the snapshot")
)

type (
	tree struct {
		size int
		root *artNode
	}

	Kind  int
	Key   []byte
	Value interface{}

	// Entry is one key/value pair held by the tree.
	Entry struct {
		Key   Key
		Value Value
	}

	// Match is one fuzzy search hit.
	Match struct {
		Key      Key
		Value    Value
		Distance int
	}

	// Callback is invoked per entry during traversal; returning false stops
	// the traversal.
	Callback func(e Entry) bool

	artNode struct {
		kind Kind
		ref  unsafe.Pointer
	}

	// leaf node with variable key len and the caller's value
	leaf struct {
		key   Key
		value Value
	}

	prefix [MaxPrefixLen]byte

	// node header shared by the inner kinds. There is no zero-suffix child
	// slot: prefix conflicts are evicted before any structural insert, so a
	// key can never terminate inside another key's path.
	node struct {
		prefixLen   uint32
		prefix      prefix
		numChildren uint16
	}

	// node with 4 children, keys kept sorted
	node4 struct {
		node

		keys     [node4Max]byte
		children [node4Max]*artNode
	}

	node16 struct {
		node

		keys     [node16Max]byte
		children [node16Max]*artNode
	}

	/*
		As the number of entries in a node increases, searching the key array
		becomes expensive. Nodes with more than 16 pointers therefore do not
		store the keys explicitly: a 256-element array indexed by key byte
		holds positions into a 48-element child array, with a bitmap marking
		which bytes are present.
	*/
	node48 struct {
		node

		keys     [node256Max]byte
		children [node48Max]*artNode
		// need 256 bits for keys
		present [4]uint64
	}

	node256 struct {
		node

		children [node256Max]*artNode
	}

	traverseAction int

	iterator struct {
		entries []Entry
		index   int
	}
)

func newNode4() *artNode {
	return &artNode{
		kind: Node4,
		ref:  unsafe.Pointer(&node4{}),
	}
}

func newNode16() *artNode {
	return &artNode{
		kind: Node16,
		ref:  unsafe.Pointer(&node16{}),
	}
}

func newNode48() *artNode {
	return &artNode{
		kind: Node48,
		ref:  unsafe.Pointer(&node48{}),
	}
}

func newNode256() *artNode {
	return &artNode{
		kind: Node256,
		ref:  unsafe.Pointer(&node256{}),
	}
}

func newLeaf(key Key, value Value) *artNode {
	clonedKey := append([]byte(nil), key...)
	return &artNode{
		kind: Leaf,
		ref: unsafe.Pointer(&leaf{
			key:   clonedKey,
			value: value,
		}),
	}
}

func (k Kind) String() string {
	return []string{"Leaf", "Node4", "Node16", "Node48", "Node256"}[k]
}

func (k Key) charAt(pos int) byte {
	if pos < 0 || pos >= len(k) {
		return 0
	}
	return k[pos]
}

func (k Key) valid(pos int) bool {
	return pos >= 0 && pos < len(k)
}
