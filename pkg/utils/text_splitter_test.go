package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 100, 20)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextChunksWithOverlap(t *testing.T) {
	// step = 100-20 = 80, so chunks start at 0, 80, 160 and the last one
	// reaches the end of the input
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 20)

	assert.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
	// Consecutive chunks share the overlap region
	assert.Equal(t, chunks[0][80:], chunks[1][:20])
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("b", 300)
	// Degenerate config must still terminate and cover the whole input
	chunks := SplitText(text, 100, 100)

	assert.Len(t, chunks, 3)
	assert.Equal(t, len(text), len(strings.Join(chunks, "")))
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("日本語", 100) // 300 runes
	chunks := SplitText(text, 120, 20)

	for _, chunk := range chunks {
		// Chunk boundaries must not split a rune
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, len([]rune(chunk)), 120)
	}
}
