package treemap

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openacid/testkeys"
)

// applyForceInsert is the reference model for Insert: drop every key that is
// prefix-related to the new one, then store it.
func applyForceInsert(m map[string]Value, key string, value Value) {
	for k := range m {
		if k == key {
			continue
		}
		if strings.HasPrefix(k, key) || strings.HasPrefix(key, k) {
			delete(m, k)
		}
	}
	m[key] = value
}

func TestTreeTraversalPrefix(t *testing.T) {
	dataSet := []struct {
		keyPrefix string
		keys      []string
		expected  []string
	}{
		{
			"",
			[]string{},
			[]string{},
		},
		{
			"api.",
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum"},
		},
		{
			"a",
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
		},
		{
			"b",
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
			[]string{},
		},
		{
			"api.foo.bar",
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
			[]string{"api.foo.bar"},
		},
		{
			"api.end",
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
			[]string{},
		},
		{
			"",
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
			[]string{"api.foo.bar", "api.foo.baz", "api.foe.fum", "abc.123.456"},
		},
		{
			"this:key:has",
			[]string{
				"this:key:has:a:long:prefix:3",
				"this:key:has:a:long:common:prefix:2",
				"this:key:has:a:long:common:prefix:1",
			},
			[]string{
				"this:key:has:a:long:prefix:3",
				"this:key:has:a:long:common:prefix:2",
				"this:key:has:a:long:common:prefix:1",
			},
		},
		{
			// every earlier key is prefix-related to a later one; only the
			// last insert survives eviction
			"ele",
			[]string{"elector", "electibles", "elect", "electible"},
			[]string{"electible"},
		},
		{
			"long.api.url.v1",
			[]string{"long.api.url.v1.foo", "long.api.url.v1.bar", "long.api.url.v2.foo"},
			[]string{"long.api.url.v1.foo", "long.api.url.v1.bar"},
		},
	}

	for _, d := range dataSet {
		tree := New()
		for i, k := range d.keys {
			tree.Insert(Key(k), i)
		}

		actual := []string{}
		tree.ForEachPrefix(Key(d.keyPrefix), func(e Entry) bool {
			actual = append(actual, string(e.Key))
			return true
		})

		sort.Strings(d.expected)
		sort.Strings(actual)
		assert.Equal(t, d.expected, actual, d.keyPrefix)
	}
}

func TestForceInsertEviction(t *testing.T) {
	tree := New()

	old, updated := tree.Insert(Key("app"), 1)
	assert.Nil(t, old)
	assert.False(t, updated)

	// "app" is a proper prefix of "apple" and must be evicted
	old, updated = tree.Insert(Key("apple"), 2)
	assert.Nil(t, old)
	assert.False(t, updated)

	_, ok := tree.Search(Key("app"))
	assert.False(t, ok)
	v, ok := tree.Search(Key("apple"))
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, tree.Size())

	// same key is an overwrite, not a conflict
	old, updated = tree.Insert(Key("apple"), 3)
	assert.True(t, updated)
	assert.Equal(t, 2, old)
	assert.Equal(t, 1, tree.Size())

	// the reverse direction: a short key evicts all its extensions
	tree = New()
	tree.Insert(Key("api.foo.bar"), 1)
	tree.Insert(Key("api.foo.baz"), 2)
	tree.Insert(Key("api.foe.fum"), 3)
	tree.Insert(Key("abc.123.456"), 4)
	tree.Insert(Key("api"), 5)

	assert.Equal(t, 2, tree.Size())
	assert.True(t, tree.Contains(Key("abc.123.456")))
	assert.True(t, tree.Contains(Key("api")))
	assert.False(t, tree.Contains(Key("api.foo.bar")))
	assert.False(t, tree.Contains(Key("api.foo.baz")))
	assert.False(t, tree.Contains(Key("api.foe.fum")))
}

func TestForceInsertEmptyKey(t *testing.T) {
	tree := New()
	tree.Insert(Key("a"), 1)
	tree.Insert(Key("b"), 2)

	// the empty key is a proper prefix of every other key
	tree.Insert(Key(""), 3)
	assert.Equal(t, 1, tree.Size())
	v, ok := tree.Search(Key(""))
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	tree.Insert(Key("x"), 4)
	assert.Equal(t, 1, tree.Size())
	_, ok = tree.Search(Key(""))
	assert.False(t, ok)
	assert.True(t, tree.Contains(Key("x")))
}

func TestPrefixFreedomInvariant(t *testing.T) {
	words := []string{
		"a", "ab", "abc", "b", "ba", "bad", "badge", "badger",
		"c", "ca", "car", "cart", "carts", "cartoon",
		"dog", "do", "d", "cart",
	}

	tree := New()
	model := map[string]Value{}
	for i, w := range words {
		tree.Insert(Key(w), i)
		applyForceInsert(model, w, i)
	}

	keys := tree.Keys()
	for i := range keys {
		for j := range keys {
			if i == j {
				continue
			}
			assert.False(t, bytes.HasPrefix(keys[i], keys[j]),
				"%q must not be a prefix of %q", keys[j], keys[i])
		}
	}

	assert.Equal(t, len(model), tree.Size())
	for k, want := range model {
		got, ok := tree.Search(Key(k))
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
	for _, k := range keys {
		_, ok := model[string(k)]
		assert.True(t, ok, string(k))
	}
}

func TestIterationOrder(t *testing.T) {
	tree := New()
	tree.Insert(Key("cat"), 1)
	tree.Insert(Key("car"), 2)
	tree.Insert(Key("dog"), 3)

	expected := []Entry{
		{Key("car"), 2},
		{Key("cat"), 1},
		{Key("dog"), 3},
	}
	assert.Equal(t, expected, tree.Items())

	minE, ok := tree.Minimum()
	assert.True(t, ok)
	assert.Equal(t, expected[0], minE)
	maxE, ok := tree.Maximum()
	assert.True(t, ok)
	assert.Equal(t, expected[2], maxE)
}

func TestTreeIterator(t *testing.T) {
	tree := New()
	tree.Insert(Key("2"), "two")
	tree.Insert(Key("1"), "one")

	it := tree.Iterator()
	assert.NotNil(t, it)

	assert.True(t, it.HasNext())
	e1, err := it.Next()
	assert.NoError(t, err)
	assert.Equal(t, Key("1"), e1.Key)
	assert.Equal(t, "one", e1.Value)

	assert.True(t, it.HasNext())
	e2, err := it.Next()
	assert.NoError(t, err)
	assert.Equal(t, Key("2"), e2.Key)
	assert.Equal(t, "two", e2.Value)

	assert.False(t, it.HasNext())
	_, err = it.Next()
	assert.Equal(t, ErrNoMoreEntries, err)
}

func TestSearchDeleteRoundTrip(t *testing.T) {
	tree := New()

	_, ok := tree.Search(Key("missing"))
	assert.False(t, ok)

	tree.Insert(Key("alpha"), 1)
	tree.Insert(Key("beta"), 2)
	tree.Insert(Key("gamma"), 3)
	assert.Equal(t, 3, tree.Size())
	assert.False(t, tree.Empty())

	v, ok := tree.Delete(Key("beta"))
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, tree.Size())
	assert.False(t, tree.Contains(Key("beta")))

	// deleting an absent key is not an error
	_, ok = tree.Delete(Key("beta"))
	assert.False(t, ok)
	_, ok = tree.Delete(Key("alp"))
	assert.False(t, ok)
	_, ok = tree.Delete(Key("alphabet"))
	assert.False(t, ok)
	assert.Equal(t, 2, tree.Size())

	assert.Equal(t, "treemap[2 entries]", tree.String())

	tree.Clear()
	assert.Equal(t, 0, tree.Size())
	assert.True(t, tree.Empty())
	assert.False(t, tree.Contains(Key("alpha")))
}

func TestPopMinimumMaximum(t *testing.T) {
	tree := New()
	tree.Insert(Key("b"), 1)
	tree.Insert(Key("a"), 2)

	e, ok := tree.PopMinimum()
	assert.True(t, ok)
	assert.Equal(t, Entry{Key("a"), 2}, e)
	assert.Equal(t, 1, tree.Size())
	assert.True(t, tree.Contains(Key("b")))

	e, ok = tree.PopMaximum()
	assert.True(t, ok)
	assert.Equal(t, Entry{Key("b"), 1}, e)
	assert.True(t, tree.Empty())

	_, ok = tree.PopMinimum()
	assert.False(t, ok)
	_, ok = tree.PopMaximum()
	assert.False(t, ok)
}

func TestBigKeySet(t *testing.T) {
	// keys of a single length cannot be prefix-related, so the full set
	// survives insertion
	all := getKeys("1mvl5_10")
	seen := make(map[string]bool, len(all))
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if len(k) != 10 || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}

	n := len(keys)
	fmt.Printf("key len %d\n", n)

	prefixs := make([]string, 0, n/10)
	tree := New()
	for i, k := range keys {
		if strings.HasPrefix(k, "z") {
			prefixs = append(prefixs, k)
		}
		tree.Insert(Key(k), i)
	}
	assert.Equal(t, n, tree.Size())

	got := []string{}
	tree.ForEachPrefix(Key("z"), func(e Entry) bool {
		got = append(got, string(e.Key))
		return true
	})
	sort.Strings(prefixs)
	assert.Equal(t, prefixs, got)

	stored := tree.Keys()
	assert.True(t, sort.SliceIsSorted(stored, func(i, j int) bool {
		return bytes.Compare(stored[i], stored[j]) < 0
	}))

	for i := 0; i < 1000 && i < n; i++ {
		v, ok := tree.Delete(Key(keys[i]))
		assert.True(t, ok)
		assert.Equal(t, i, v)
		assert.False(t, tree.Contains(Key(keys[i])))
	}
	if n > 1000 {
		assert.Equal(t, n-1000, tree.Size())
		assert.True(t, tree.Contains(Key(keys[1000])))
	}
}

var cache map[string][]string = map[string][]string{}

func getKeys(fn string) []string {
	ss, ok := cache[fn]
	if ok {
		return ss
	}
	ks := testkeys.Load(fn)
	cache[fn] = ks
	return ks
}

func benchBigKeySet(b *testing.B, f func(b *testing.B, typ string, key []string)) {
	for _, fn := range testkeys.AssetNames() {
		keys := getKeys(fn)

		n := len(keys)
		if n < 1000 {
			continue
		}

		b.Run(fn, func(b *testing.B) {
			f(b, fn, keys)
		})
	}
}

func BenchmarkWordsTreeInsert(b *testing.B) {
	benchBigKeySet(b, func(b *testing.B, fn string, keys []string) {
		n := len(keys)
		b.ResetTimer()

		for i := 0; i < b.N/n; i++ {
			tree := New()

			for j, k := range keys {
				tree.Insert(Key(k), j)
			}
		}
	})
}

func BenchmarkWordsTreePrefixSearch(b *testing.B) {
	prefixs := []string{
		"abcdefghijklmnopqrstuvwxyz",
		"0123456789",
	}

	benchBigKeySet(b, func(b *testing.B, fn string, keys []string) {
		n := len(keys)
		b.ResetTimer()

		for i := 0; i < b.N/n; i++ {
			tree := New()

			for j, k := range keys {
				tree.Insert(Key(k), j)
			}

			for _, prefix := range prefixs {
				for i := 0; i < len(prefix); i++ {
					tree.ForEachPrefix(Key(prefix[i:i+1]), func(Entry) bool {
						return true
					})
				}
			}
		}
	})
}
