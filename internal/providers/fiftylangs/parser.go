package fiftylangs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"phrasedeck/internal/domain"
)

// The sound id lives in a row-scoped attribute on the anchor that drives
// the page's audio player.
const soundIDAttr = "offset_text"

var (
	selSentenceRows = cascadia.MustCompile(".table tr")
	selCells        = cascadia.MustCompile("td")
	selAnchors      = cascadia.MustCompile("a")
)

// ParseError reports a lesson page whose structure does not match what the
// parser expects. It is not retried: a missing element will not appear by
// waiting.
type ParseError struct {
	Lesson  int
	Missing string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fiftylangs: lesson %d: page structure changed: missing %s", e.Lesson, e.Missing)
}

// DestExtractor pulls the destination-language sentence out of its anchor
// element. Injected rather than branched on language: scripts with reading
// annotations (furigana and similar) need the markup-preserving variant,
// everything else can use either.
type DestExtractor interface {
	Extract(n *html.Node) string
}

// MarkupExtractor keeps the anchor's inner HTML intact, so ruby/furigana
// annotations survive into the deck.
type MarkupExtractor struct{}

func (MarkupExtractor) Extract(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Render never fails on a Builder.
		html.Render(&sb, c)
	}
	return strings.TrimSpace(sb.String())
}

// TextExtractor flattens the anchor to plain text.
type TextExtractor struct{}

func (TextExtractor) Extract(n *html.Node) string {
	return strings.TrimSpace(nodeText(n))
}

// ParseLesson turns a lesson page into ordered sentence pairs. Rows whose
// source-language cell is empty are filler, not sentence pairs, and are
// skipped before the anchor checks run on them.
func ParseLesson(page []byte, lesson int, extract DestExtractor) ([]domain.SentencePair, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, &ParseError{Lesson: lesson, Missing: "parseable document"}
	}

	rows := cascadia.QueryAll(doc, selSentenceRows)
	if len(rows) == 0 {
		return nil, &ParseError{Lesson: lesson, Missing: "sentence table rows"}
	}

	var pairs []domain.SentencePair
	for _, row := range rows {
		cells := cascadia.QueryAll(row, selCells)
		if len(cells) < 3 {
			return nil, &ParseError{Lesson: lesson, Missing: "sentence row cells"}
		}

		source := strings.TrimSpace(nodeText(cells[0]))
		if source == "" {
			continue
		}

		destAnchors := cascadia.QueryAll(cells[1], selAnchors)
		if len(destAnchors) < 2 {
			return nil, &ParseError{Lesson: lesson, Missing: "translation anchor"}
		}
		dest := extract.Extract(destAnchors[1])

		soundAnchors := cascadia.QueryAll(cells[2], selAnchors)
		if len(soundAnchors) == 0 {
			return nil, &ParseError{Lesson: lesson, Missing: "audio anchor"}
		}
		soundID, ok := attr(soundAnchors[0], soundIDAttr)
		if !ok || strings.TrimSpace(soundID) == "" {
			return nil, &ParseError{Lesson: lesson, Missing: soundIDAttr + " attribute"}
		}

		pairs = append(pairs, domain.SentencePair{
			SoundID: strings.TrimSpace(soundID),
			Source:  source,
			Dest:    dest,
		})
	}

	return pairs, nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
