// Package chunk splits document text into sentence-bounded segments that
// keep individual synthesis calls within a stable size budget.
package chunk

import (
	"regexp"
	"strings"
)

// Chunk is one sentence-bounded slice of a document's text. Ordinal fixes
// the reassembly order of the audio segment produced from it.
type Chunk struct {
	Text    string
	Ordinal int
}

// Planner splits text at sentence boundaries so that each chunk stays
// within a word budget. It never splits inside a sentence.
type Planner struct {
	boundary *regexp.Regexp
}

// NewPlanner creates a planner with the default sentence boundary pattern.
func NewPlanner() *Planner {
	return &Planner{
		// Terminal punctuation, optionally followed by closing quotes or
		// brackets, then whitespace ends a sentence.
		boundary: regexp.MustCompile(`[.!?]+["')\]]*\s+`),
	}
}

// Plan splits text into chunks whose word counts do not exceed maxWords.
//
// Short text (word count <= maxWords) is returned as a single chunk so
// that short inputs keep their single-pass behavior. Text with no sentence
// terminator at all is also returned as a single chunk regardless of
// length: exceeding the budget is preferable to cutting mid-sentence.
//
// Joining the returned chunks with single spaces reproduces the original
// text modulo whitespace normalization.
func (p *Planner) Plan(text string, maxWords int) []Chunk {
	if maxWords <= 0 || wordCount(text) <= maxWords {
		return []Chunk{{Text: text, Ordinal: 0}}
	}

	sentences := p.sentences(text)
	if len(sentences) <= 1 {
		// No boundary found anywhere; the budget loses.
		return []Chunk{{Text: text, Ordinal: 0}}
	}

	var chunks []Chunk
	var current []string
	currentWords := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:    strings.Join(current, " "),
			Ordinal: len(chunks),
		})
		current = nil
		currentWords = 0
	}

	for _, sentence := range sentences {
		words := wordCount(sentence)
		if currentWords > 0 && currentWords+words > maxWords {
			flush()
		}
		// A single sentence over the budget still travels whole.
		current = append(current, sentence)
		currentWords += words
	}
	flush()

	return chunks
}

// sentences splits text at sentence boundaries, keeping the terminal
// punctuation with its sentence. Trailing text without a terminator
// becomes the final sentence.
func (p *Planner) sentences(text string) []string {
	locs := p.boundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	out := make([]string, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
