// Package extract turns supported document files into clean prose text
// ready for speech synthesis.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// ErrEmptyDocument is returned when a file contains no speakable text.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrUnsupportedFormat is returned for extensions the extractor
	// cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Metadata describes the extracted document.
type Metadata struct {
	Title      string
	WordCount  int
	SourcePath string
}

// Document is the extraction result: cleaned text plus metadata.
type Document struct {
	Content string
	Meta    Metadata
}

// Extractor reads .txt and markdown files and produces clean prose.
// Markdown is parsed properly rather than regex-stripped: code blocks and
// raw HTML are not speakable and are dropped, everything else keeps its
// reading order.
type Extractor struct {
	md goldmark.Markdown
}

// New creates an extractor with a default goldmark parser.
func New() *Extractor {
	return &Extractor{md: goldmark.New()}
}

// ExtractText reads the file at path and returns its speakable content.
func (e *Extractor) ExtractText(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	var content, title string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		content = normalize(string(raw))
	case ".md", ".markdown":
		content, title = e.extractMarkdown(raw)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}

	if title == "" {
		title = titleFromPath(path)
	}

	return &Document{
		Content: content,
		Meta: Metadata{
			Title:      title,
			WordCount:  len(strings.Fields(content)),
			SourcePath: path,
		},
	}, nil
}

// extractMarkdown walks the parsed AST collecting prose text. The first
// level-1 heading becomes the document title.
func (e *Extractor) extractMarkdown(src []byte) (string, string) {
	doc := e.md.Parser().Parse(text.NewReader(src))

	var out strings.Builder
	var title string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML:
			// Not speakable.
			return ast.WalkSkipChildren, nil

		case ast.KindHeading:
			if entering {
				h := n.(*ast.Heading)
				if h.Level == 1 && title == "" {
					title = strings.TrimSpace(string(nodeText(h, src)))
				}
			} else {
				out.WriteString("\n\n")
			}

		case ast.KindParagraph, ast.KindListItem, ast.KindBlockquote:
			if !entering {
				out.WriteString("\n\n")
			}

		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				out.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					out.WriteByte(' ')
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return normalize(out.String()), title
}

// nodeText concatenates the text segments directly under a node.
func nodeText(n ast.Node, src []byte) []byte {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			out = append(out, t.Segment.Value(src)...)
		}
	}
	return out
}

// normalize collapses runs of blank lines and trims interior padding while
// keeping paragraph breaks, so downstream sentence detection stays stable.
func normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
