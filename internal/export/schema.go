package export

import (
	"encoding/json"
	"fmt"
	"strings"
)

// collection.anki2 schema, version 11 (the format every Anki client since
// 2.0 imports). Single col row; notes/cards hold the content; revlog and
// graves stay empty in a fresh export.
const collectionSchema = `
CREATE TABLE col (
  id integer primary key,
  crt integer not null,
  mod integer not null,
  scm integer not null,
  ver integer not null,
  dty integer not null,
  usn integer not null,
  ls integer not null,
  conf text not null,
  models text not null,
  decks text not null,
  dconf text not null,
  tags text not null
);
CREATE TABLE notes (
  id integer primary key,
  guid text not null,
  mid integer not null,
  mod integer not null,
  usn integer not null,
  tags text not null,
  flds text not null,
  sfld text not null,
  csum integer not null,
  flags integer not null,
  data text not null
);
CREATE TABLE cards (
  id integer primary key,
  nid integer not null,
  did integer not null,
  ord integer not null,
  mod integer not null,
  usn integer not null,
  type integer not null,
  queue integer not null,
  due integer not null,
  ivl integer not null,
  factor integer not null,
  reps integer not null,
  lapses integer not null,
  left integer not null,
  odue integer not null,
  odid integer not null,
  flags integer not null,
  data text not null
);
CREATE TABLE revlog (
  id integer primary key,
  cid integer not null,
  usn integer not null,
  ease integer not null,
  ivl integer not null,
  lastIvl integer not null,
  factor integer not null,
  time integer not null,
  type integer not null
);
CREATE TABLE graves (
  usn integer not null,
  oid integer not null,
  type integer not null
);
CREATE INDEX ix_notes_usn on notes (usn);
CREATE INDEX ix_cards_usn on cards (usn);
CREATE INDEX ix_revlog_usn on revlog (usn);
CREATE INDEX ix_cards_nid on cards (nid);
CREATE INDEX ix_cards_sched on cards (did, queue, due);
CREATE INDEX ix_revlog_cid on revlog (cid);
CREATE INDEX ix_notes_csum on notes (csum)
`

const latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
	"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n" +
	"\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"

const latexPost = "\\end{document}"

func confJSON(modelID int64) (string, error) {
	return marshalBlob(map[string]any{
		"activeDecks":   []int64{1},
		"curDeck":       1,
		"newSpread":     0,
		"collapseTime":  1200,
		"timeLim":       0,
		"estTimes":      true,
		"dueCounts":     true,
		"curModel":      fmt.Sprintf("%d", modelID),
		"nextPos":       1,
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"dayLearnFirst": false,
	})
}

func modelsJSON(m *Model, deckID int64, now int64) (string, error) {
	flds := make([]map[string]any, len(m.Fields))
	for i, f := range m.Fields {
		flds[i] = map[string]any{
			"name":   f.Name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
		}
	}

	tmpls := make([]map[string]any, len(m.Templates))
	for i, t := range m.Templates {
		tmpls[i] = map[string]any{
			"name":  t.Name,
			"ord":   i,
			"qfmt":  t.QFmt,
			"afmt":  t.AFmt,
			"bqfmt": "",
			"bafmt": "",
			"did":   nil,
		}
	}

	return marshalBlob(map[string]any{
		fmt.Sprintf("%d", m.ID): map[string]any{
			"id":        m.ID,
			"name":      m.Name,
			"type":      0,
			"mod":       now,
			"usn":       -1,
			"sortf":     0,
			"did":       deckID,
			"flds":      flds,
			"tmpls":     tmpls,
			"css":       m.CSS,
			"latexPre":  latexPre,
			"latexPost": latexPost,
			"req":       templateRequirements(m),
			"tags":      []string{},
			"vers":      []string{},
		},
	})
}

// templateRequirements mirrors what Anki derives itself: per template, the
// field ordinals whose presence makes the card generate. A plain
// substring check over qfmt is enough for the formats this model uses.
func templateRequirements(m *Model) []any {
	req := make([]any, len(m.Templates))
	for i, t := range m.Templates {
		var ords []int
		for j, f := range m.Fields {
			if strings.Contains(t.QFmt, "{{"+f.Name+"}}") {
				ords = append(ords, j)
			}
		}
		if ords == nil {
			ords = []int{0}
		}
		req[i] = []any{i, "any", ords}
	}
	return req
}

func decksJSON(d *Deck, now int64) (string, error) {
	deckEntry := func(id int64, name string) map[string]any {
		return map[string]any{
			"id":               id,
			"name":             name,
			"desc":             "",
			"mod":              now,
			"usn":              -1,
			"collapsed":        false,
			"browserCollapsed": false,
			"newToday":         []int{0, 0},
			"revToday":         []int{0, 0},
			"lrnToday":         []int{0, 0},
			"timeToday":        []int{0, 0},
			"dyn":              0,
			"extendNew":        0,
			"extendRev":        0,
			"conf":             1,
		}
	}
	return marshalBlob(map[string]any{
		"1":                      deckEntry(1, "Default"),
		fmt.Sprintf("%d", d.ID): deckEntry(d.ID, d.Name),
	})
}

func dconfJSON(now int64) (string, error) {
	return marshalBlob(map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"mod":      now,
			"usn":      -1,
			"autoplay": true,
			"timer":    0,
			"replayq":  true,
			"maxTaken": 60,
			"dyn":      false,
			"new": map[string]any{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"order":         1,
				"perDay":        20,
				"bury":          true,
				"separate":      true,
			},
			"rev": map[string]any{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1.0,
				"maxIvl":   36500,
				"bury":     true,
				"minSpace": 1,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"mult":        0.0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
		},
	})
}

func marshalBlob(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
