package tape

// Cassette is an ordered collection of recorded interactions plus a
// derived fingerprint lookup index.
//
// A cassette is an immutable value: Append returns a new cassette and
// never mutates the receiver, so a constructed cassette is safe for
// concurrent reads by any number of callers.
//
// The index maps each distinct fingerprint to the position of its
// first occurrence. Later interactions carrying the same fingerprint
// stay in the interaction list as history but are unreachable through
// Find (first-match-wins). The index is cache, not source of truth: it
// is rebuilt on every construction, including after deserialization,
// and is never serialized.
type Cassette struct {
	interactions []Interaction
	index        map[RequestFingerprint]int
}

// NewCassette constructs a cassette over the given interactions,
// building the first-occurrence fingerprint index.
func NewCassette(interactions ...Interaction) *Cassette {
	list := make([]Interaction, len(interactions))
	copy(list, interactions)
	return &Cassette{
		interactions: list,
		index:        buildIndex(list),
	}
}

func buildIndex(interactions []Interaction) map[RequestFingerprint]int {
	index := make(map[RequestFingerprint]int, len(interactions))
	for i, interaction := range interactions {
		if _, seen := index[interaction.Fingerprint]; !seen {
			index[interaction.Fingerprint] = i
		}
	}
	return index
}

// Find returns the first interaction recorded under the fingerprint.
// Lookup is a single map access, not a scan.
func (c *Cassette) Find(fingerprint RequestFingerprint) (Interaction, bool) {
	pos, ok := c.index[fingerprint]
	if !ok {
		return Interaction{}, false
	}
	return c.interactions[pos], true
}

// Append returns a new cassette with the interaction added at the end.
// The receiver is left untouched.
func (c *Cassette) Append(interaction Interaction) *Cassette {
	list := make([]Interaction, 0, len(c.interactions)+1)
	list = append(list, c.interactions...)
	list = append(list, interaction)
	return &Cassette{
		interactions: list,
		index:        buildIndex(list),
	}
}

// Interactions returns a copy of the interaction list in recorded order.
func (c *Cassette) Interactions() []Interaction {
	out := make([]Interaction, len(c.interactions))
	copy(out, c.interactions)
	return out
}

// Len returns the number of recorded interactions, duplicates included.
func (c *Cassette) Len() int { return len(c.interactions) }
