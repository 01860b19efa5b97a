package export

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"phrasedeck/internal/domain"
)

// Card CSS shared by every phrasebook deck.
const cardCSS = `.card {
  font-family: arial;
  font-size: 20px;
  text-align: center;
  color: black;
  background-color: white;
}
`

// IDSource produces Anki model/deck identifiers. Injected so tests (and
// users who want stable re-imports) can pin ids.
type IDSource func() int64

// RandomID is the default IDSource: uniform in [2^30, 2^31), the id range
// Anki expects for user-created objects.
func RandomID() int64 {
	return 1<<30 + rand.Int63n(1<<30)
}

type Field struct {
	Name string
}

type Template struct {
	Name string
	QFmt string
	AFmt string
}

// Model is an Anki note type: ordered fields plus card templates.
type Model struct {
	ID        int64
	Name      string
	Fields    []Field
	Templates []Template
	CSS       string
}

// Note is one note under a model; Fields align with Model.Fields.
type Note struct {
	Model  *Model
	Fields []string
}

// GUID is the note's import dedup key. Deriving it from the field contents
// means re-importing a regenerated deck updates notes in place instead of
// duplicating them.
func (n *Note) GUID() string {
	sum := sha1.Sum([]byte(strings.Join(n.Fields, "\x1f")))
	return base64.RawURLEncoding.EncodeToString(sum[:9])
}

// Checksum is Anki's sort-field checksum: the first 8 hex digits of the
// sha1 of the first field, as an integer.
func (n *Note) Checksum() int64 {
	sum := sha1.Sum([]byte(n.Fields[0]))
	v, _ := strconv.ParseInt(fmt.Sprintf("%x", sum[:4]), 16, 64)
	return v
}

type Deck struct {
	ID    int64
	Name  string
	Notes []*Note
}

func (d *Deck) AddNote(n *Note) {
	d.Notes = append(d.Notes, n)
}

// NewPhrasebookModel builds the four-field note type for one language
// pair: source sentence, destination sentence (markup preserved),
// destination audio, and a reference link back to the lesson. Two card
// directions: dest->src leads with the audio, src->dest reveals it.
func NewPhrasebookModel(id int64, src, dest domain.LanguageCode) *Model {
	s, d := string(src), string(dest)
	audio := d + "_audio"
	return &Model{
		ID:   id,
		Name: fmt.Sprintf("50Languages %s-%s", s, d),
		Fields: []Field{
			{Name: s},
			{Name: d},
			{Name: audio},
			{Name: "Reference"},
		},
		Templates: []Template{
			{
				Name: fmt.Sprintf("%s-%s", d, s),
				QFmt: "{{" + d + "}}\n<br>\n{{" + audio + "}}",
				AFmt: "{{FrontSide}}\n<hr id=answer>\n{{" + s + "}}\n<br><br>\n{{Reference}}",
			},
			{
				Name: fmt.Sprintf("%s-%s", s, d),
				QFmt: "{{" + s + "}}\n<br>",
				AFmt: "{{FrontSide}}\n<hr id=answer>\n{{" + d + "}}\n<br>\n{{" + audio + "}}\n<br><br>\n{{Reference}}",
			},
		},
		CSS: cardCSS,
	}
}

// NewPhrasebookDeck names the deck after the language pair.
func NewPhrasebookDeck(id int64, src, dest domain.LanguageCode) *Deck {
	return &Deck{
		ID:   id,
		Name: fmt.Sprintf("50Languages %s-%s", src, dest),
	}
}

// DefaultPackageName derives the output file name from the language pair
// and lesson range.
func DefaultPackageName(src, dest domain.LanguageCode, start, end int) string {
	return fmt.Sprintf("50Languages_%s-%s_%d-%d.apkg", src, dest, start, end)
}

// DeckBuilder adapts streamed note records into deck notes plus the set of
// media files the package must carry. It satisfies the sync engine's
// NoteSink.
type DeckBuilder struct {
	Deck  *Deck
	Model *Model

	media []string
	seen  map[string]bool
}

func NewDeckBuilder(deck *Deck, model *Model) *DeckBuilder {
	return &DeckBuilder{
		Deck:  deck,
		Model: model,
		seen:  map[string]bool{},
	}
}

func (b *DeckBuilder) Add(rec domain.NoteRecord) error {
	b.Deck.AddNote(&Note{
		Model: b.Model,
		Fields: []string{
			rec.Source,
			rec.Dest,
			"[sound:" + rec.AudioFilename + "]",
			fmt.Sprintf(`<a href="%s">%s</a>`, rec.LessonLink, rec.LessonLink),
		},
	})
	if !b.seen[rec.AudioPath] {
		b.seen[rec.AudioPath] = true
		b.media = append(b.media, rec.AudioPath)
	}
	return nil
}

// Package wraps the accumulated deck and media into a writable package.
func (b *DeckBuilder) Package() *Package {
	return &Package{Deck: b.Deck, Media: b.media}
}
