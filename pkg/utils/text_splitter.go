package utils

import "unicode"

// SplitText splits text into chunks of at most chunkSize runes, consecutive
// chunks sharing overlap runes. A chunk ends at the last whitespace in its
// final quarter when there is one, so words are not cut in half.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		if cut := lastSpace(runes[start:end], chunkSize*3/4); cut > 0 {
			end = start + cut
		}
		chunks = append(chunks, string(runes[start:end]))

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// lastSpace returns the index just after the last whitespace at or beyond min, or 0.
func lastSpace(runes []rune, min int) int {
	for i := len(runes) - 1; i >= min; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return 0
}
