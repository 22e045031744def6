package tags_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matcha-app/matcha-core/internal/tags"
)

func TestOverlap(t *testing.T) {
	a := []string{"Foodie", "Bookworm", "Night owl"}
	b := []string{"Bookworm", "Night owl", "Gym lover"}

	assert.Equal(t, 2, tags.Overlap(a, b))
}

func TestOverlap_Symmetric(t *testing.T) {
	a := []string{"Foodie", "Homebody"}
	b := []string{"Homebody", "Dog person", "Foodie"}

	assert.Equal(t, tags.Overlap(a, b), tags.Overlap(b, a))
}

func TestOverlap_EmptySets(t *testing.T) {
	assert.Equal(t, 0, tags.Overlap(nil, []string{"Foodie"}))
	assert.Equal(t, 0, tags.Overlap([]string{"Foodie"}, nil))
	assert.Equal(t, 0, tags.Overlap(nil, nil))
}

func TestOverlap_DuplicatesCountOnce(t *testing.T) {
	a := []string{"Foodie", "Foodie"}
	b := []string{"Foodie"}

	assert.Equal(t, 1, tags.Overlap(a, b))
}

func TestEqual(t *testing.T) {
	assert.True(t, tags.Equal(
		[]string{"Foodie", "Bookworm"},
		[]string{"Bookworm", "Foodie"},
	))
	assert.False(t, tags.Equal(
		[]string{"Foodie"},
		[]string{"Foodie", "Bookworm"},
	))
	assert.False(t, tags.Equal(
		[]string{"Foodie", "Night owl"},
		[]string{"Foodie", "Bookworm"},
	))
	assert.True(t, tags.Equal(nil, nil))
}

func TestIsValid(t *testing.T) {
	for _, tag := range tags.Vocabulary {
		assert.True(t, tags.IsValid(tag))
	}
	assert.False(t, tags.IsValid("Skydiving"))
	assert.False(t, tags.IsValid(""))
}
