package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace runs", "a  b\t\tc\n\nd", "a b c d"},
		{"strips null characters", "pay\x00ment", "payment"},
		{"strips replacement characters", "no�tice", "notice"},
		{"trims leading and trailing space", "  hello  ", "hello"},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c := New(1000, 200)
	for _, in := range []string{"", "   ", "\x00�", "\n\n\t"} {
		if _, err := c.Split(in, "empty.txt"); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Split(%q): got err %v, want ErrEmptyInput", in, err)
		}
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := New(1000, 200)
	chunks, err := c.Split("Either party may terminate this Agreement with thirty days notice.", "short.txt")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("chunk index: got %d, want 0", chunks[0].Index)
	}
	if chunks[0].Source != "short.txt" {
		t.Errorf("chunk source: got %q, want short.txt", chunks[0].Source)
	}
}

func TestSplit_IndicesAreSequential(t *testing.T) {
	c := New(100, 20)
	text := strings.Repeat("the contract requires payment within thirty days of invoice receipt ", 30)

	chunks, err := c.Split(text, "contract.txt")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.Content == "" {
			t.Errorf("chunk %d has empty content", i)
		}
		if len(ch.Content) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(ch.Content))
		}
	}
}

func TestSplit_OverlapRepeatsTrailingText(t *testing.T) {
	c := New(100, 30)
	text := strings.Repeat("clause word salad liability indemnification provision agreement ", 20)

	chunks, err := c.Split(text, "doc")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first should start with text that also
	// appears near the end of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		firstWord := strings.SplitN(chunks[i].Content, " ", 2)[0]
		if !strings.Contains(prev, firstWord) {
			t.Errorf("chunk %d does not overlap its predecessor: starts with %q", i, firstWord)
		}
	}
}

func TestSplit_CoversWholeDocument(t *testing.T) {
	c := New(120, 20)
	words := []string{
		"termination", "liability", "payment", "confidentiality", "warranty",
		"indemnification", "arbitration", "jurisdiction", "severability", "assignment",
	}
	text := strings.Join(words, " strana ")

	chunks, err := c.Split(strings.Repeat(text+" ", 10), "doc")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	joined := " "
	for _, ch := range chunks {
		joined += ch.Content + " "
	}
	for _, w := range words {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q lost during splitting", w)
		}
	}
}

func TestSplit_NoSpacesFallsBackToCharacterCuts(t *testing.T) {
	c := New(50, 10)
	text := strings.Repeat("x", 200)

	chunks, err := c.Split(text, "doc")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 4 {
		t.Errorf("expected at least 4 chunks for 200 chars at size 50, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Content) > 50 {
			t.Errorf("chunk %d exceeds size: %d", i, len(ch.Content))
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	for _, overlap := range []int{0, -1} {
		c := New(0, overlap)
		if c.chunkSize != 1000 {
			t.Errorf("New(0, %d) chunk size: got %d, want 1000", overlap, c.chunkSize)
		}
		if c.overlap != 200 {
			t.Errorf("New(0, %d) overlap: got %d, want 200", overlap, c.overlap)
		}
	}

	c := New(100, 500)
	if c.overlap >= c.chunkSize {
		t.Errorf("overlap %d not clamped below chunk size %d", c.overlap, c.chunkSize)
	}
}

func TestSplit_ZeroValueOptionsStillOverlap(t *testing.T) {
	c := New(1000, 0)
	text := strings.Repeat("governing law and dispute resolution provisions of this agreement ", 50)

	chunks, err := c.Split(text, "doc")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		head := chunks[i].Content
		if len(head) > 60 {
			head = head[:60]
		}
		if !strings.Contains(prev, head) {
			t.Errorf("chunk %d does not repeat the tail of chunk %d", i, i-1)
		}
	}
}
