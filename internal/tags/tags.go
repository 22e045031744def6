// Package tags holds the fixed interest-tag vocabulary and set operations
// used for candidate scoring and search matching.
package tags

// Vocabulary is the full set of selectable tags. Profile tags and search
// filters must come from this list.
var Vocabulary = []string{
	"Adventure seeker",
	"Foodie",
	"Travel lover",
	"Dog person",
	"Gym lover",
	"Homebody",
	"Music addict",
	"Bookworm",
	"Hopeless romantic",
	"Night owl",
}

var vocabularySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Vocabulary))
	for _, t := range Vocabulary {
		m[t] = struct{}{}
	}
	return m
}()

// IsValid reports whether tag belongs to the vocabulary.
func IsValid(tag string) bool {
	_, ok := vocabularySet[tag]
	return ok
}

// Overlap returns |a ∩ b| with set semantics; duplicates within a slice
// count once. Zero when either side is empty.
func Overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			n++
			delete(set, t)
		}
	}
	return n
}

// Equal reports whether a and b contain exactly the same tags,
// order-independent.
func Equal(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for t := range setA {
		if _, ok := setB[t]; !ok {
			return false
		}
	}
	return true
}
