package matchday

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk_SplitsAtLineBoundaries(t *testing.T) {
	t.Parallel()

	lines := make([]string, 0, 91)
	for i := 0; i < 91; i++ {
		lines = append(lines, strings.Repeat("x", 99))
	}
	text := strings.Join(lines, "\n")
	if utf8.RuneCountInString(text) < 9000 {
		t.Fatalf("fixture too short: %d", utf8.RuneCountInString(text))
	}

	chunks := Chunk(text, MaxChunkRunes)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > MaxChunkRunes || n == 0 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	if joined := strings.Join(chunks, "\n"); joined != text {
		t.Fatalf("joined chunks differ from original")
	}
}

func TestChunk_LongLineSplitsOnRunes(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("é", 9000)
	chunks := Chunk(text, MaxChunkRunes)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d split a rune", i)
		}
		if utf8.RuneCountInString(c) > MaxChunkRunes {
			t.Fatalf("chunk %d too long", i)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("pieces do not reassemble")
	}
}

func TestChunk_ShortAndEmpty(t *testing.T) {
	t.Parallel()

	if got := Chunk("hello", MaxChunkRunes); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected chunks: %v", got)
	}
	if got := Chunk("", MaxChunkRunes); len(got) != 0 {
		t.Fatalf("expected no chunks for empty text, got %v", got)
	}
}

func TestChunk_KeepsBlankLinesBetweenGroups(t *testing.T) {
	t.Parallel()

	text := "aaaa\n\nbbbb\ncccc"
	chunks := Chunk(text, 6)
	if strings.Join(chunks, "\n") != text {
		t.Fatalf("unexpected chunks %q", chunks)
	}
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > 6 {
			t.Fatalf("chunk too long: %q", c)
		}
	}
}

func TestChunk_BlankLineOnSplitPointIsDropped(t *testing.T) {
	t.Parallel()

	chunks := Chunk("aaaaaa\n\nbbbbbb", 6)
	if len(chunks) != 2 || chunks[0] != "aaaaaa" || chunks[1] != "bbbbbb" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
}
