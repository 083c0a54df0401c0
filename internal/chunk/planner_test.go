package chunk

import (
	"fmt"
	"strings"
	"testing"
)

func TestPlanShortTextSingleChunk(t *testing.T) {
	planner := NewPlanner()

	tests := []struct {
		name     string
		input    string
		maxWords int
	}{
		{
			name:     "well under budget",
			input:    "One short sentence. Another short sentence.",
			maxWords: 100,
		},
		{
			name:     "exactly at budget",
			input:    "one two three four five.",
			maxWords: 5,
		},
		{
			name:     "single word",
			input:    "hello",
			maxWords: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := planner.Plan(tt.input, tt.maxWords)
			if len(chunks) != 1 {
				t.Fatalf("expected 1 chunk, got %d", len(chunks))
			}
			if chunks[0].Text != tt.input {
				t.Errorf("short input must be returned verbatim, got %q", chunks[0].Text)
			}
			if chunks[0].Ordinal != 0 {
				t.Errorf("expected ordinal 0, got %d", chunks[0].Ordinal)
			}
		})
	}
}

func TestPlanNoTerminatorSingleChunk(t *testing.T) {
	planner := NewPlanner()

	// 200 words, no terminal punctuation anywhere.
	input := strings.Repeat("word ", 199) + "word"
	chunks := planner.Plan(input, 50)

	if len(chunks) != 1 {
		t.Fatalf("text without sentence terminators must not be split, got %d chunks", len(chunks))
	}
	if chunks[0].Text != input {
		t.Error("unsplit text must be returned verbatim")
	}
}

func TestPlanSplitsAtSentenceBoundaries(t *testing.T) {
	planner := NewPlanner()

	// Ten sentences of ten words each.
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("alpha bravo charlie delta echo foxtrot golf hotel india juliet. ")
	}
	input := strings.TrimSpace(b.String())

	chunks := planner.Plan(input, 30)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if n := wordCount(c.Text); n > 30 {
			t.Errorf("chunk %d exceeds budget: %d words", i, n)
		}
		if !strings.HasSuffix(c.Text, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, c.Text)
		}
	}
}

func TestPlanRejoinsToOriginal(t *testing.T) {
	planner := NewPlanner()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "mixed terminators",
			input: "Is this working? It seems so! Great news everyone. Let us continue with the plan.",
		},
		{
			name:  "quoted sentence end",
			input: `He said "stop." Then he left. Nobody followed him out of the room that day.`,
		},
		{
			name:  "trailing fragment without terminator",
			input: "First complete sentence here. Second complete sentence here. and a dangling tail",
		},
		{
			name:  "newlines between sentences",
			input: "Line one ends here.\nLine two ends here.\nLine three ends here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := planner.Plan(tt.input, 6)

			var parts []string
			for _, c := range chunks {
				parts = append(parts, c.Text)
			}
			got := normalizeWhitespace(strings.Join(parts, " "))
			want := normalizeWhitespace(tt.input)
			if got != want {
				t.Errorf("rejoined text differs from original\n got: %q\nwant: %q", got, want)
			}
		})
	}
}

func TestPlanOversizedSentenceTravelsWhole(t *testing.T) {
	planner := NewPlanner()

	long := strings.Repeat("word ", 49) + "word." // 50 words
	input := "Short one. " + long + " Short two."

	chunks := planner.Plan(input, 10)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, strings.TrimSuffix(long, ".")) {
			found = true
		}
	}
	if !found {
		t.Error("a sentence over the budget must not be split across chunks")
	}
}

func TestPlanSentenceCounting(t *testing.T) {
	planner := NewPlanner()

	input := "A one. B two! C three? D four."
	sentences := planner.sentences(input)
	if len(sentences) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %v", len(sentences), sentences)
	}
	for i, want := range []string{"A one.", "B two!", "C three?", "D four."} {
		if sentences[i] != want {
			t.Errorf("sentence %d = %q, want %q", i, sentences[i], want)
		}
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ExamplePlanner_Plan() {
	planner := NewPlanner()
	chunks := planner.Plan("First sentence here. Second sentence here.", 3)
	for _, c := range chunks {
		fmt.Printf("%d: %s\n", c.Ordinal, c.Text)
	}
	// Output:
	// 0: First sentence here.
	// 1: Second sentence here.
}
