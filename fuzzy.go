package treemap

// FuzzySearch walks all entries in ascending key order and keeps those whose
// key is within maxDistance character edits of key. Candidates whose rune
// count differs from the query's by more than the budget are skipped before
// any table work; the rest go through the bounded distance. The result set
// is always identical to brute-force evaluation of Levenshtein against every
// stored key.
//
// Keys that are not valid UTF-8 decode lossily, matching how the embedding
// layer hands them back as text.
func (t *tree) FuzzySearch(key Key, maxDistance int) []Match {
	matches := make([]Match, 0)
	if maxDistance < 0 {
		return matches
	}

	query := []rune(string(key))
	t.ForEach(func(e Entry) bool {
		candidate := []rune(string(e.Key))
		d := levenshteinBounded(query, candidate, maxDistance)
		if d >= 0 {
			matches = append(matches, Match{Key: e.Key, Value: e.Value, Distance: d})
		}
		return true
	})
	return matches
}
