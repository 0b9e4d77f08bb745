package treemap

import (
	"fmt"
	"strings"
)

func (t *tree) Size() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.size
}

func (t *tree) Empty() bool {
	return t.Size() == 0
}

func (t *tree) Clear() {
	t.root = nil
	t.size = 0
}

func (t *tree) Insert(key Key, value Value) (Value, bool) {
	for _, conflict := range t.prefixConflicts(key) {
		t.Delete(conflict)
	}
	old, updated := t.recursiveInsert(&t.root, key, value, 0)
	if !updated {
		t.size++
	}
	return old, updated
}

// prefixConflicts collects every live key that is a proper prefix of key or
// has key as a proper prefix. With the invariant already holding there can be
// at most one ancestor conflict; descendant conflicts may be many. The exact
// key is never a conflict, that is an overwrite.
func (t *tree) prefixConflicts(key Key) []Key {
	var conflicts []Key
	collect := func(e Entry) bool {
		conflicts = append(conflicts, e.Key)
		return true
	}

	curr := t.root
	depth := uint32(0)
	for curr != nil {
		if curr.isLeaf() {
			if l := curr.leaf(); l.conflicts(key) {
				conflicts = append(conflicts, l.key)
			}
			return conflicts
		}

		node := curr.node()
		if node.prefixLen > 0 {
			mismatch := curr.matchDeep(key, depth)
			if mismatch < node.prefixLen {
				if depth+mismatch == uint32(len(key)) {
					// key ends inside this node's compressed prefix, so
					// every leaf below extends it
					t.recursiveForEach(curr, collect)
				}
				return conflicts
			}
			depth += node.prefixLen
		}

		if depth >= uint32(len(key)) {
			// all key bytes consumed on the path: everything below is a
			// strictly longer extension of key
			t.recursiveForEach(curr, collect)
			return conflicts
		}

		next := curr.findChild(key[depth])
		if *next == nil {
			return conflicts
		}
		curr = *next
		depth++
	}
	return conflicts
}

func (t *tree) recursiveInsert(curNode **artNode, key Key, value Value, depth uint32) (Value, bool) {
	curr := *curNode
	if curr == nil {
		replaceRef(curNode, newLeaf(key, value))
		return nil, false
	}

	if curr.isLeaf() {
		l := curr.leaf()

		if l.match(key) {
			old := l.value
			l.value = value
			return old, true
		}
		// split leaf into new node4. Conflict eviction already ran, so the
		// two keys diverge at a byte both of them have.
		newL := newLeaf(key, value)
		leaf2 := newL.leaf()
		leafsLcp := longestCommonPrefix(l, leaf2, depth)

		newNode := newNode4()
		newNode.setPrefix(key[depth:], leafsLcp)
		depth += leafsLcp

		newNode.addChild(l.key.charAt(int(depth)), curr)
		newNode.addChild(leaf2.key.charAt(int(depth)), newL)
		replaceRef(curNode, newNode)

		return nil, false
	}

	node := curr.node()
	if node.prefixLen > 0 {
		prefixMismatchIdx := curr.matchDeep(key, depth)

		if prefixMismatchIdx >= node.prefixLen {
			depth += node.prefixLen
			goto NEXT_NODE
		}

		// new node as parent, splitting the compressed prefix
		newNode := newNode4()
		node4 := newNode.node()
		node4.prefixLen = prefixMismatchIdx
		for i := uint32(0); i < min(prefixMismatchIdx, MaxPrefixLen); i++ {
			node4.prefix[i] = node.prefix[i]
		}

		if node.prefixLen <= MaxPrefixLen {
			newNode.addChild(node.prefix[prefixMismatchIdx], curr)
			node.prefixLen -= prefixMismatchIdx + 1
			for i, limit := uint32(0), min(node.prefixLen, MaxPrefixLen); i < limit; i++ {
				node.prefix[i] = node.prefix[prefixMismatchIdx+i+1]
			}
		} else {
			// prefix of node too long, recover its bytes from the
			// minimum leaf
			l := curr.minimum()
			newNode.addChild(l.key.charAt(int(depth+prefixMismatchIdx)), curr)
			node.prefixLen -= prefixMismatchIdx + 1
			for i, limit := uint32(0), min(node.prefixLen, MaxPrefixLen); i < limit; i++ {
				node.prefix[i] = l.key[depth+prefixMismatchIdx+i+1]
			}
		}

		newNode.addChild(key.charAt(int(depth+prefixMismatchIdx)), newLeaf(key, value))
		replaceRef(curNode, newNode)
		return nil, false
	}

NEXT_NODE:
	next := curr.findChild(key.charAt(int(depth)))
	if *next != nil {
		return t.recursiveInsert(next, key, value, depth+1)
	}
	// no child found, create new leaf
	curr.addChild(key.charAt(int(depth)), newLeaf(key, value))

	return nil, false
}

func (t *tree) Search(key Key) (Value, bool) {
	curr := t.root
	depth := uint32(0)
	for curr != nil {
		if curr.isLeaf() {
			l := curr.leaf()
			if l.match(key) {
				return l.value, true
			}
			return nil, false
		}

		node := curr.node()
		if node.prefixLen > 0 {
			// optimistic skip: only the inline bytes are compared here, the
			// final leaf match verifies the whole key
			if curr.match(key, depth) != min(node.prefixLen, MaxPrefixLen) {
				return nil, false
			}
			depth += node.prefixLen
		}

		if !key.valid(int(depth)) {
			return nil, false
		}
		curr = *curr.findChild(key[depth])
		depth++
	}
	return nil, false
}

func (t *tree) Contains(key Key) bool {
	_, ok := t.Search(key)
	return ok
}

func (t *tree) Delete(key Key) (Value, bool) {
	value, deleted := t.recursiveDelete(&t.root, key, 0)
	if deleted {
		t.size--
	}
	return value, deleted
}

func (t *tree) recursiveDelete(curNode **artNode, key Key, depth uint32) (Value, bool) {
	curr := *curNode
	if curr == nil {
		return nil, false
	}

	if curr.isLeaf() {
		// only reachable when the root itself is a leaf
		l := curr.leaf()
		if l.match(key) {
			replaceRef(curNode, nil)
			return l.value, true
		}
		return nil, false
	}

	node := curr.node()
	if node.prefixLen > 0 {
		if curr.match(key, depth) != min(node.prefixLen, MaxPrefixLen) {
			return nil, false
		}
		depth += node.prefixLen
	}

	if !key.valid(int(depth)) {
		return nil, false
	}
	c := key[depth]
	next := curr.findChild(c)
	child := *next
	if child == nil {
		return nil, false
	}

	if child.isLeaf() {
		l := child.leaf()
		if !l.match(key) {
			return nil, false
		}
		curr.deleteChild(c)
		if replacement := curr.compress(); replacement != nil {
			replaceRef(curNode, replacement)
		}
		return l.value, true
	}

	return t.recursiveDelete(next, key, depth+1)
}

func (t *tree) Minimum() (Entry, bool) {
	if t.root == nil {
		return Entry{}, false
	}
	return t.root.minimum().entry(), true
}

func (t *tree) Maximum() (Entry, bool) {
	if t.root == nil {
		return Entry{}, false
	}
	return t.root.maximum().entry(), true
}

func (t *tree) PopMinimum() (Entry, bool) {
	e, ok := t.Minimum()
	if !ok {
		return Entry{}, false
	}
	t.Delete(e.Key)
	return e, true
}

func (t *tree) PopMaximum() (Entry, bool) {
	e, ok := t.Maximum()
	if !ok {
		return Entry{}, false
	}
	t.Delete(e.Key)
	return e, true
}

func (t *tree) ForEach(cb Callback) {
	t.recursiveForEach(t.root, cb)
}

func (t *tree) ForEachPrefix(prefix Key, cb Callback) {
	t.forEachPrefix(t.root, prefix, cb)
}

func (t *tree) forEachPrefix(curr *artNode, key Key, cb Callback) traverseAction {
	if curr == nil {
		return traverseContinue
	}

	depth := uint32(0)

	for curr != nil {
		if curr.isLeaf() {
			l := curr.leaf()
			if l.prefixMatch(key) {
				if !cb(l.entry()) {
					return traverseStop
				}
			}
			break
		}

		if depth == uint32(len(key)) {
			// the whole prefix was consumed on the path, everything below
			// starts with it
			return t.recursiveForEach(curr, cb)
		}

		node := curr.node()
		if node.prefixLen > 0 {
			prefixLen := curr.matchDeep(key, depth)
			if prefixLen > node.prefixLen {
				prefixLen = node.prefixLen
			}

			if prefixLen == 0 {
				break
			} else if depth+prefixLen == uint32(len(key)) {
				return t.recursiveForEach(curr, cb)
			} else if prefixLen < node.prefixLen {
				// real byte mismatch inside the compressed prefix
				break
			}
			depth += node.prefixLen
		}

		next := curr.findChild(key.charAt(int(depth)))
		if *next == nil {
			break
		}
		curr = *next
		depth++
	}

	return traverseContinue
}

func (t *tree) recursiveForEach(curr *artNode, cb Callback) traverseAction {
	if curr == nil {
		return traverseContinue
	}

	if curr.isLeaf() {
		if !cb(curr.leaf().entry()) {
			return traverseStop
		}
		return traverseContinue
	}

	switch curr.kind {
	case Node4:
		node := curr.node4()
		return t.forEachChildren(node.children[:node.numChildren], cb)

	case Node16:
		node := curr.node16()
		return t.forEachChildren(node.children[:node.numChildren], cb)

	case Node48:
		node := curr.node48()
		for c := 0; c < node256Max; c++ {
			if node.present[c>>n48s]&(1<<(c%n48m)) == 0 {
				continue
			}

			child := node.children[node.keys[c]]
			if child != nil {
				if t.recursiveForEach(child, cb) == traverseStop {
					return traverseStop
				}
			}
		}

	case Node256:
		return t.forEachChildren(curr.node256().children[:], cb)
	}

	return traverseContinue
}

func (t *tree) forEachChildren(children []*artNode, cb Callback) traverseAction {
	for _, child := range children {
		if child != nil {
			if t.recursiveForEach(child, cb) == traverseStop {
				return traverseStop
			}
		}
	}
	return traverseContinue
}

func (t *tree) String() string {
	return fmt.Sprintf("treemap[%d entries]", t.Size())
}

func (t *tree) Dump() string {
	var b strings.Builder
	b.WriteString(t.String())
	b.WriteByte('\n')
	t.dumpNode(&b, t.root, -1, 0)
	return b.String()
}

func (t *tree) dumpNode(b *strings.Builder, an *artNode, edge int, level int) {
	if an == nil {
		return
	}
	indent := strings.Repeat("  ", level)
	tag := ""
	if edge >= 0 {
		tag = fmt.Sprintf("%c: ", byte(edge))
	}

	if an.isLeaf() {
		l := an.leaf()
		fmt.Fprintf(b, "%s%sleaf %q=%v\n", indent, tag, string(l.key), l.value)
		return
	}

	node := an.node()
	fmt.Fprintf(b, "%s%s%s prefix=%q\n", indent, tag, an.kind, string(node.prefix[:min(node.prefixLen, MaxPrefixLen)]))
	edges, children := an.orderedChildren()
	for i, child := range children {
		t.dumpNode(b, child, int(edges[i]), level+1)
	}
}
