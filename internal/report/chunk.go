package report

import "strings"

// DefaultChunkSize stays safely under the GitHub comment body limit.
const DefaultChunkSize = 60000

// minBreakFraction keeps newline-aligned cuts from producing tiny chunks: a
// newline is only used as the cut point when it falls past 70% of the chunk.
const minBreakFraction = 0.7

// Chunk splits text into pieces of at most size bytes, preferring to cut at
// a newline when one falls in the last 30% of the chunk. size values below 1
// fall back to DefaultChunkSize.
func Chunk(text string, size int) []string {
	if size < 1 {
		size = DefaultChunkSize
	}
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > size {
		cut := size
		if i := strings.LastIndexByte(text[:size], '\n'); i > int(float64(size)*minBreakFraction) {
			cut = i + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
