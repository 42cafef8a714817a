package tape

import "sort"

// Pair is a single (key, value) string pair.
//
// Pairs are used for request headers, response chunk metadata, and
// interaction metadata. Unlike a map, a slice of pairs preserves the
// order in which entries were recorded and permits duplicate keys.
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Pairs is an ordered sequence of key/value pairs.
type Pairs []Pair

// Clone returns a copy of the sequence. A nil receiver yields nil.
func (p Pairs) Clone() Pairs {
	if p == nil {
		return nil
	}
	out := make(Pairs, len(p))
	copy(out, p)
	return out
}

// Get returns the value of the first pair with the given key.
func (p Pairs) Get(key string) (string, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return "", false
}

// sorted returns a copy ordered lexicographically by key, then value.
//
// Comparison is byte-wise on the raw string contents. No locale rules
// and no Unicode normalization are applied, so the relative order of
// any two pairs is identical on every platform.
func (p Pairs) sorted() Pairs {
	out := make(Pairs, len(p))
	copy(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Value < out[j].Value
	})
	return out
}
