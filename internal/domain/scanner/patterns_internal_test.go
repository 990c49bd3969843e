package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_KeepsRuneBoundaries(t *testing.T) {
	// "é" is two bytes; cutting at 4 would split the second one.
	assert.Equal(t, "éa", truncate("éaé", 4))
	assert.Equal(t, "short", truncate("short", 100))
}

func TestIsPinned(t *testing.T) {
	assert.True(t, isPinned("0123456789abcdef0123456789abcdef01234567"))
	assert.True(t, isPinned("SHA256:abc"))
	assert.False(t, isPinned("v4"))
	assert.False(t, isPinned("0123456789abcdef"))
	assert.False(t, isPinned("main"))
}

func TestLineAt(t *testing.T) {
	text := "a\nb\nc"
	assert.Equal(t, 1, lineAt(text, 0))
	assert.Equal(t, 2, lineAt(text, 2))
	assert.Equal(t, 3, lineAt(text, 4))
}
