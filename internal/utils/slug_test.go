package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"São Paulo":          "sao-paulo",
		"  Zürich  ":         "zurich",
		"Rock & Roll Tours":  "rock-and-roll-tours",
		"Marie's Paris/Lyon": "maries-paris-lyon",
		"---":                "",
		"Kraków!!":           "krakow",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
