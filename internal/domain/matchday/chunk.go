package matchday

import (
	"strings"
	"unicode/utf8"
)

// Chunk splits text into pieces of at most limit runes. Splits happen at
// line breaks and drop the break, so for text without over-long lines
// joining the chunks with "\n" restores it, except for a blank line that
// lands exactly on a split point: it has no room in either neighbour and is
// dropped. A line longer than limit is cut at rune boundaries. Empty chunks
// are never returned.
func Chunk(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0)
	var current strings.Builder
	currentLen := 0
	started := false

	flush := func() {
		if started && current.Len() > 0 {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		currentLen = 0
		started = false
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if lineLen > limit {
			flush()
			chunks = append(chunks, splitRunes(line, limit)...)
			continue
		}

		sep := 0
		if started {
			sep = 1
		}
		if started && currentLen+sep+lineLen > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		currentLen += sep + lineLen
		started = true
	}
	flush()

	return chunks
}

func splitRunes(s string, limit int) []string {
	out := make([]string, 0, utf8.RuneCountInString(s)/limit+1)
	for len(s) > 0 {
		n, i := 0, 0
		for i < len(s) && n < limit {
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			n++
		}
		out = append(out, s[:i])
		s = s[i:]
	}
	return out
}
