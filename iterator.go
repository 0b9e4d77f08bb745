package treemap

// All sequence producers below materialize their result at call time. The
// returned snapshots share value references with the tree but are otherwise
// detached: later mutation of the tree is never observed through them.

func (it *iterator) HasNext() bool {
	return it != nil && it.index < len(it.entries)
}

func (it *iterator) Next() (Entry, error) {
	if !it.HasNext() {
		return Entry{}, ErrNoMoreEntries
	}
	e := it.entries[it.index]
	it.index++
	return e, nil
}

func (t *tree) Iterator() Iterator {
	return &iterator{entries: t.Items()}
}

func (t *tree) PrefixIterator(prefix Key) Iterator {
	entries := make([]Entry, 0)
	t.ForEachPrefix(prefix, func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return &iterator{entries: entries}
}

func (t *tree) GetPrefix(prefix Key) (Entry, bool) {
	var first Entry
	found := false
	t.ForEachPrefix(prefix, func(e Entry) bool {
		first = e
		found = true
		return false
	})
	return first, found
}

func (t *tree) Items() []Entry {
	items := make([]Entry, 0, t.Size())
	t.ForEach(func(e Entry) bool {
		items = append(items, e)
		return true
	})
	return items
}

func (t *tree) Keys() []Key {
	keys := make([]Key, 0, t.Size())
	t.ForEach(func(e Entry) bool {
		keys = append(keys, e.Key)
		return true
	})
	return keys
}

func (t *tree) Values() []Value {
	values := make([]Value, 0, t.Size())
	t.ForEach(func(e Entry) bool {
		values = append(values, e.Value)
		return true
	})
	return values
}
