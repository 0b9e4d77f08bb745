package treemap

import (
	"bytes"
)

func (l *leaf) prefixMatch(key Key) bool {
	if len(l.key) < len(key) {
		return false
	}

	return bytes.Equal(l.key[:len(key)], key)
}

func (l *leaf) match(key Key) bool {
	if len(l.key) != len(key) {
		return false
	}
	return bytes.Equal(l.key, key)
}

// conflicts reports whether one key is a proper prefix of the other.
func (l *leaf) conflicts(key Key) bool {
	if len(l.key) == len(key) {
		return false
	}
	if len(l.key) < len(key) {
		return bytes.HasPrefix(key, l.key)
	}
	return bytes.HasPrefix(l.key, key)
}

func (l *leaf) entry() Entry {
	return Entry{Key: l.key, Value: l.value}
}

func (an *artNode) isLeaf() bool {
	return an.kind == Leaf
}

// match compares key at depth against the inline part of the compressed
// prefix and returns the first mismatch index.
func (an *artNode) match(key Key, depth uint32) uint32 {
	idx := uint32(0)
	if len(key)-int(depth) < 0 {
		return idx
	}

	node := an.node()

	limit := min(min(node.prefixLen, MaxPrefixLen), uint32(len(key))-depth)
	for ; idx < limit; idx++ {
		if node.prefix[idx] != key[idx+depth] {
			return idx
		}
	}
	return idx
}

// matchDeep extends match past MaxPrefixLen by reading the missing prefix
// bytes back from the minimum leaf.
func (an *artNode) matchDeep(key Key, depth uint32) uint32 {
	mismatchIdx := an.match(key, depth)
	if mismatchIdx < MaxPrefixLen {
		return mismatchIdx
	}
	leaf := an.minimum()
	limit := min(uint32(len(leaf.key)), uint32(len(key))) - depth
	for ; mismatchIdx < limit; mismatchIdx++ {
		if leaf.key[mismatchIdx+depth] != key[mismatchIdx+depth] {
			break
		}
	}

	return mismatchIdx
}

// minimum finds the smallest leaf under a node. Child slots of node4/node16
// are kept sorted and dense, so the first slot is the smallest edge.
func (an *artNode) minimum() *leaf {
	switch an.kind {
	case Leaf:
		return an.leaf()
	case Node4:
		return an.node4().children[0].minimum()
	case Node16:
		return an.node16().children[0].minimum()
	case Node48:
		node := an.node48()
		idx := 0
		for node.present[idx>>n48s]&(1<<(idx%n48m)) == 0 {
			idx++
		}
		return node.children[node.keys[idx]].minimum()
	case Node256:
		node := an.node256()
		idx := 0
		for node.children[idx] == nil {
			idx++
		}
		return node.children[idx].minimum()
	}
	return nil
}

func (an *artNode) maximum() *leaf {
	switch an.kind {
	case Leaf:
		return an.leaf()
	case Node4:
		node := an.node4()
		return node.children[node.numChildren-1].maximum()
	case Node16:
		node := an.node16()
		return node.children[node.numChildren-1].maximum()
	case Node48:
		node := an.node48()
		idx := node256Max - 1
		for node.present[idx>>n48s]&(1<<(idx%n48m)) == 0 {
			idx--
		}
		return node.children[node.keys[idx]].maximum()
	case Node256:
		node := an.node256()
		idx := node256Max - 1
		for node.children[idx] == nil {
			idx--
		}
		return node.children[idx].maximum()
	}
	return nil
}

var nodeNotFound *artNode

func (an *artNode) findChild(c byte) **artNode {
	idx := an.index(c)
	if idx != -1 {
		switch an.kind {
		case Node4:
			return &an.node4().children[idx]
		case Node16:
			return &an.node16().children[idx]
		case Node48:
			return &an.node48().children[idx]
		case Node256:
			return &an.node256().children[idx]
		}
	}

	return &nodeNotFound
}

func (an *artNode) index(c byte) int {
	switch an.kind {
	case Node4:
		node := an.node4()
		for idx := 0; idx < int(node.numChildren); idx++ {
			if node.keys[idx] == c {
				return idx
			}
		}
	case Node16:
		node := an.node16()
		for idx := 0; idx < int(node.numChildren); idx++ {
			if node.keys[idx] == c {
				return idx
			}
		}
	case Node48:
		node := an.node48()
		if node.present[c>>n48s]&(1<<(c%n48m)) != 0 {
			return int(node.keys[c])
		}
	case Node256:
		return int(c)
	}
	return -1
}

func (an *artNode) addChild(c byte, child *artNode) {
	switch an.kind {
	case Node4:
		an.addChild4(c, child)
	case Node16:
		an.addChild16(c, child)
	case Node48:
		an.addChild48(c, child)
	case Node256:
		an.addChild256(c, child)
	}
}

func (an *artNode) addChild4(c byte, child *artNode) {
	node := an.node4()

	// grow to node16
	if node.numChildren >= node4Max {
		newNode := an.grow()
		newNode.addChild(c, child)
		replaceNode(an, newNode)
		return
	}

	i := uint16(0)
	// maintain sorted order
	for ; i < node.numChildren; i++ {
		if c < node.keys[i] {
			break
		}
	}

	for j := node.numChildren; j > i; j-- {
		node.keys[j] = node.keys[j-1]
		node.children[j] = node.children[j-1]
	}
	node.keys[i] = c
	node.children[i] = child
	node.numChildren++
}

func (an *artNode) addChild16(c byte, child *artNode) {
	node := an.node16()

	if node.numChildren >= node16Max {
		newNode := an.grow()
		newNode.addChild(c, child)
		replaceNode(an, newNode)
		return
	}

	i := uint16(0)
	for ; i < node.numChildren; i++ {
		if c < node.keys[i] {
			break
		}
	}

	for j := node.numChildren; j > i; j-- {
		node.keys[j] = node.keys[j-1]
		node.children[j] = node.children[j-1]
	}
	node.keys[i] = c
	node.children[i] = child
	node.numChildren++
}

func (an *artNode) addChild48(c byte, child *artNode) {
	node := an.node48()

	if node.numChildren >= node48Max {
		newNode := an.grow()
		newNode.addChild(c, child)
		replaceNode(an, newNode)
		return
	}

	// first free child slot; deletions leave holes
	index := byte(0)
	for node.children[index] != nil {
		index++
	}

	node.keys[c] = index
	node.present[c>>n48s] |= 1 << (c % n48m)
	node.children[index] = child
	node.numChildren++
}

func (an *artNode) addChild256(c byte, child *artNode) {
	node := an.node256()

	node.children[c] = child
	node.numChildren++
}

func (an *artNode) deleteChild(c byte) {
	switch an.kind {
	case Node4:
		node := an.node4()
		idx := an.index(c)
		if idx == -1 {
			return
		}
		for i := idx; i < int(node.numChildren)-1; i++ {
			node.keys[i] = node.keys[i+1]
			node.children[i] = node.children[i+1]
		}
		node.numChildren--
		node.keys[node.numChildren] = 0
		node.children[node.numChildren] = nil
	case Node16:
		node := an.node16()
		idx := an.index(c)
		if idx == -1 {
			return
		}
		for i := idx; i < int(node.numChildren)-1; i++ {
			node.keys[i] = node.keys[i+1]
			node.children[i] = node.children[i+1]
		}
		node.numChildren--
		node.keys[node.numChildren] = 0
		node.children[node.numChildren] = nil
	case Node48:
		node := an.node48()
		if node.present[c>>n48s]&(1<<(c%n48m)) == 0 {
			return
		}
		node.children[node.keys[c]] = nil
		node.present[c>>n48s] &^= 1 << (c % n48m)
		node.keys[c] = 0
		node.numChildren--
	case Node256:
		node := an.node256()
		if node.children[c] == nil {
			return
		}
		node.children[c] = nil
		node.numChildren--
	}
}

func (an *artNode) grow() *artNode {
	switch an.kind {
	case Node4:
		node := newNode16().copyMeta(an)

		d := node.node16()
		s := an.node4()

		for i := 0; i < int(s.numChildren); i++ {
			d.keys[i] = s.keys[i]
			d.children[i] = s.children[i]
		}
		return node
	case Node16:
		node := newNode48().copyMeta(an)

		d := node.node48()
		s := an.node16()

		var numChildren byte
		for i := 0; i < int(s.numChildren); i++ {
			ch := s.keys[i]
			// node48 maps all 256 bytes, val of keys is index of child
			d.keys[ch] = numChildren
			d.present[ch>>n48s] |= 1 << (ch % n48m)
			d.children[numChildren] = s.children[i]
			numChildren++
		}
		return node
	case Node48:
		node := newNode256().copyMeta(an)

		d := node.node256()
		s := an.node48()

		for i := 0; i < node256Max; i++ {
			if s.present[i>>n48s]&(1<<(i%n48m)) != 0 {
				d.children[i] = s.children[s.keys[i]]
			}
		}
		return node
	}
	return nil
}

// shrink is the mirror of grow: rebuild the node one kind smaller.
func (an *artNode) shrink() *artNode {
	switch an.kind {
	case Node16:
		node := newNode4().copyMeta(an)

		d := node.node4()
		s := an.node16()

		for i := 0; i < int(s.numChildren); i++ {
			d.keys[i] = s.keys[i]
			d.children[i] = s.children[i]
		}
		return node
	case Node48:
		node := newNode16().copyMeta(an)

		d := node.node16()
		s := an.node48()

		var numChildren uint16
		for c := 0; c < node256Max; c++ {
			if s.present[c>>n48s]&(1<<(c%n48m)) == 0 {
				continue
			}
			d.keys[numChildren] = byte(c)
			d.children[numChildren] = s.children[s.keys[c]]
			numChildren++
		}
		return node
	case Node256:
		node := newNode48().copyMeta(an)

		d := node.node48()
		s := an.node256()

		var numChildren byte
		for c := 0; c < node256Max; c++ {
			if s.children[c] == nil {
				continue
			}
			d.keys[c] = numChildren
			d.present[c>>n48s] |= 1 << (c % n48m)
			d.children[numChildren] = s.children[c]
			numChildren++
		}
		return node
	}
	return nil
}

// compress collapses a node after a child removal: shrink to the next
// smaller kind when underfull, or pull a lone child up into the path.
// Returns the replacement node, or nil when the node stays as is.
func (an *artNode) compress() *artNode {
	switch an.kind {
	case Node4:
		node := an.node4()
		if node.numChildren > 1 {
			return nil
		}
		child := node.children[0]
		if child.isLeaf() {
			// the leaf keeps its full key, no prefix to fix up
			return child
		}

		// re-extend the child's compressed prefix with ours plus the edge
		buf := make([]byte, 0, MaxPrefixLen)
		buf = append(buf, node.prefix[:min(node.prefixLen, MaxPrefixLen)]...)
		if len(buf) < MaxPrefixLen {
			buf = append(buf, node.keys[0])
		}
		childNode := child.node()
		if len(buf) < MaxPrefixLen {
			take := min(childNode.prefixLen, MaxPrefixLen)
			if rem := uint32(MaxPrefixLen - len(buf)); take > rem {
				take = rem
			}
			buf = append(buf, childNode.prefix[:take]...)
		}
		copy(childNode.prefix[:], buf)
		childNode.prefixLen += node.prefixLen + 1
		return child
	case Node16:
		if an.node16().numChildren >= node16Min {
			return nil
		}
		return an.shrink()
	case Node48:
		if an.node48().numChildren >= node48Min {
			return nil
		}
		return an.shrink()
	case Node256:
		if an.node256().numChildren >= node256Min {
			return nil
		}
		return an.shrink()
	}
	return nil
}

// orderedChildren returns edge bytes and children in ascending edge order.
func (an *artNode) orderedChildren() ([]byte, []*artNode) {
	switch an.kind {
	case Node4:
		node := an.node4()
		return node.keys[:node.numChildren], node.children[:node.numChildren]
	case Node16:
		node := an.node16()
		return node.keys[:node.numChildren], node.children[:node.numChildren]
	case Node48:
		node := an.node48()
		edges := make([]byte, 0, node.numChildren)
		children := make([]*artNode, 0, node.numChildren)
		for c := 0; c < node256Max; c++ {
			if node.present[c>>n48s]&(1<<(c%n48m)) == 0 {
				continue
			}
			edges = append(edges, byte(c))
			children = append(children, node.children[node.keys[c]])
		}
		return edges, children
	case Node256:
		node := an.node256()
		edges := make([]byte, 0, node.numChildren)
		children := make([]*artNode, 0, node.numChildren)
		for c := 0; c < node256Max; c++ {
			if node.children[c] == nil {
				continue
			}
			edges = append(edges, byte(c))
			children = append(children, node.children[c])
		}
		return edges, children
	}
	return nil, nil
}

func (an *artNode) copyMeta(src *artNode) *artNode {
	if src == nil {
		return an
	}
	d := an.node()
	s := src.node()

	d.prefixLen = s.prefixLen
	d.numChildren = s.numChildren

	for i, limit := 0, min(s.prefixLen, MaxPrefixLen); i < int(limit); i++ {
		d.prefix[i] = s.prefix[i]
	}

	return an
}

func (an *artNode) node() *node {
	return (*node)(an.ref)
}

func (an *artNode) node4() *node4 {
	return (*node4)(an.ref)
}

func (an *artNode) node16() *node16 {
	return (*node16)(an.ref)
}

func (an *artNode) node48() *node48 {
	return (*node48)(an.ref)
}

func (an *artNode) node256() *node256 {
	return (*node256)(an.ref)
}

func (an *artNode) leaf() *leaf {
	return (*leaf)(an.ref)
}

func (an *artNode) setPrefix(key Key, prefixLen uint32) *artNode {
	nh := an.node()
	nh.prefixLen = prefixLen
	for i := uint32(0); i < min(prefixLen, MaxPrefixLen); i++ {
		nh.prefix[i] = key[i]
	}
	return an
}

func longestCommonPrefix(l1, l2 *leaf, depth uint32) uint32 {
	idx, limit := depth, min(uint32(len(l1.key)), uint32(len(l2.key)))
	for ; idx < limit; idx++ {
		if l1.key[idx] != l2.key[idx] {
			break
		}
	}
	return idx - depth
}

func min(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// modify oldNode ptr, ** means ref to pointer
func replaceRef(oldNode **artNode, newNode *artNode) {
	*oldNode = newNode
}

func replaceNode(oldNode *artNode, newNode *artNode) {
	*oldNode = *newNode
}
