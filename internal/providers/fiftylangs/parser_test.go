package fiftylangs

import (
	"errors"
	"testing"
)

const lessonPage = `<html><body>
<table class="table">
<tr>
  <td><span>Hello</span></td>
  <td><a href="#">play</a><a href="#"><b>Bonjour</b></a></td>
  <td><a href="#" offset_text="a1">audio</a></td>
</tr>
<tr>
  <td>   </td>
  <td><a href="#">play</a><a href="#">Ignored</a></td>
  <td><a href="#" offset_text="a2">audio</a></td>
</tr>
</table>
</body></html>`

func TestParseLesson(t *testing.T) {
	pairs, err := ParseLesson([]byte(lessonPage), 5, MarkupExtractor{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The empty-source row is filler, not a sentence pair.
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d: %v", len(pairs), pairs)
	}
	p := pairs[0]
	if p.SoundID != "a1" {
		t.Errorf("Expected sound id a1, got %q", p.SoundID)
	}
	if p.Source != "Hello" {
		t.Errorf("Expected source 'Hello', got %q", p.Source)
	}
	if p.Dest != "<b>Bonjour</b>" {
		t.Errorf("Expected markup-preserving dest '<b>Bonjour</b>', got %q", p.Dest)
	}
}

func TestParseLessonPlainTextExtractor(t *testing.T) {
	pairs, err := ParseLesson([]byte(lessonPage), 5, TextExtractor{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if pairs[0].Dest != "Bonjour" {
		t.Errorf("Expected plain-text dest 'Bonjour', got %q", pairs[0].Dest)
	}
}

func TestParseLessonNoRows(t *testing.T) {
	_, err := ParseLesson([]byte(`<html><body><p>maintenance</p></body></html>`), 7, MarkupExtractor{})

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if perr.Lesson != 7 {
		t.Errorf("Expected lesson 7 in error, got %d", perr.Lesson)
	}
}

func TestParseLessonMissingCells(t *testing.T) {
	page := `<table class="table"><tr><td>Hello</td></tr></table>`
	_, err := ParseLesson([]byte(page), 1, MarkupExtractor{})

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
}

func TestParseLessonMissingTranslationAnchor(t *testing.T) {
	page := `<table class="table"><tr>
	  <td>Hello</td>
	  <td><a href="#">only one</a></td>
	  <td><a href="#" offset_text="a1">audio</a></td>
	</tr></table>`
	_, err := ParseLesson([]byte(page), 1, MarkupExtractor{})

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if perr.Missing != "translation anchor" {
		t.Errorf("Expected missing 'translation anchor', got %q", perr.Missing)
	}
}

func TestParseLessonMissingSoundID(t *testing.T) {
	page := `<table class="table"><tr>
	  <td>Hello</td>
	  <td><a href="#">play</a><a href="#">Bonjour</a></td>
	  <td><a href="#">no attribute</a></td>
	</tr></table>`
	_, err := ParseLesson([]byte(page), 1, MarkupExtractor{})

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if perr.Missing != "offset_text attribute" {
		t.Errorf("Expected missing 'offset_text attribute', got %q", perr.Missing)
	}
}

func TestParseLessonKeepsPageOrder(t *testing.T) {
	page := `<table class="table">
	<tr><td>One</td><td><a>p</a><a>Un</a></td><td><a offset_text="z9">s</a></td></tr>
	<tr><td>Two</td><td><a>p</a><a>Deux</a></td><td><a offset_text="a1">s</a></td></tr>
	</table>`
	pairs, err := ParseLesson([]byte(page), 1, MarkupExtractor{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(pairs) != 2 || pairs[0].SoundID != "z9" || pairs[1].SoundID != "a1" {
		t.Errorf("Expected page order z9,a1, got %v", pairs)
	}
}
