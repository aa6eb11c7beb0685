package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessagePreview(t *testing.T) {
	assert.Equal(t, "short message", MessagePreview("short message", 50))

	long := strings.Repeat("x", 60)
	assert.Equal(t, strings.Repeat("x", 50)+"...", MessagePreview(long, 50))

	// Boundary: exactly max gets no ellipsis
	exact := strings.Repeat("x", 50)
	assert.Equal(t, exact, MessagePreview(exact, 50))

	// Multi-byte content truncates on rune boundaries
	assert.Equal(t, "ééé...", MessagePreview("ééééé", 3))
}
