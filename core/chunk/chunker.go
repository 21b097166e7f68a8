// Package chunk splits note text into passages of bounded word count for the
// JSON export. Words are whitespace-separated fields; paragraphs (blank-line
// separated) are kept whole when they fit.
package chunk

import "strings"

// DefaultSize is the passage size used when none is given.
const DefaultSize = 512

// Chunker packs paragraphs into passages of at most Size words.
type Chunker struct {
	Size int
}

// New creates a Chunker. Sizes <= 0 fall back to DefaultSize.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	return &Chunker{Size: size}
}

// Chunk returns passages in document order. Consecutive paragraphs share a
// passage while they fit; a paragraph longer than Size is split on word
// boundaries. Whitespace inside a passage is collapsed to single spaces.
func (c *Chunker) Chunk(text string) []string {
	var (
		chunks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		if len(current)+len(words) > c.Size {
			flush()
		}
		for len(words) > c.Size {
			chunks = append(chunks, strings.Join(words[:c.Size], " "))
			words = words[c.Size:]
		}
		current = append(current, words...)
	}
	flush()
	return chunks
}
