package export

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Package is a complete Anki deck package: one deck plus the media files
// its notes reference. WriteFile produces the .apkg artifact, a zip
// holding the collection database, a media manifest, and the media bytes
// under numeric names.
type Package struct {
	Deck  *Deck
	Media []string // local file paths; names inside the package are numeric
}

func (p *Package) WriteFile(path string) error {
	tmpDir, err := os.MkdirTemp("", "phrasedeck-apkg-*")
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "collection.anki2")
	if err := writeCollection(dbPath, p.Deck, time.Now()); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if err := zipCopyFile(zw, "collection.anki2", dbPath); err != nil {
		return err
	}

	manifest := make(map[string]string, len(p.Media))
	for i, mediaPath := range p.Media {
		name := strconv.Itoa(i)
		manifest[name] = filepath.Base(mediaPath)
		if err := zipCopyFile(zw, name, mediaPath); err != nil {
			return err
		}
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	w, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	if _, err := w.Write(manifestJSON); err != nil {
		return fmt.Errorf("apkg: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	return out.Close()
}

func zipCopyFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("apkg: copy %s: %w", name, err)
	}
	return nil
}

// writeCollection builds the collection database for a single-model,
// single-deck export. Every note gets one card per template.
func writeCollection(dbPath string, deck *Deck, now time.Time) error {
	if len(deck.Notes) == 0 {
		return fmt.Errorf("apkg: deck %q has no notes", deck.Name)
	}
	model := deck.Notes[0].Model

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer db.Close()

	for _, stmt := range strings.Split(collectionSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apkg: schema: %w", err)
		}
	}

	nowSec := now.Unix()
	nowMilli := now.UnixMilli()

	conf, err := confJSON(model.ID)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	models, err := modelsJSON(model, deck.ID, nowSec)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	decks, err := decksJSON(deck, nowSec)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	dconf, err := dconfJSON(nowSec)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}

	// crt is the collection creation day, truncated to local midnight.
	crt := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()

	if _, err := db.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		crt, nowMilli, nowMilli, conf, models, decks, dconf,
	); err != nil {
		return fmt.Errorf("apkg: col row: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer tx.Rollback()

	insertNote, err := tx.Prepare(
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer insertNote.Close()

	insertCard, err := tx.Prepare(
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor,
		                    reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, ?, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	defer insertCard.Close()

	noteID := nowMilli
	cardID := nowMilli + int64(len(deck.Notes))*int64(len(model.Templates)+1)

	for i, note := range deck.Notes {
		if note.Model != model {
			return fmt.Errorf("apkg: deck %q mixes note models", deck.Name)
		}
		id := noteID + int64(i)
		flds := strings.Join(note.Fields, "\x1f")
		if _, err := insertNote.Exec(id, note.GUID(), model.ID, nowSec, flds, note.Fields[0], note.Checksum()); err != nil {
			return fmt.Errorf("apkg: note %d: %w", i, err)
		}
		for ord := range model.Templates {
			cardID++
			if _, err := insertCard.Exec(cardID, id, deck.ID, ord, nowSec, i+1); err != nil {
				return fmt.Errorf("apkg: card %d/%d: %w", i, ord, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apkg: %w", err)
	}
	return db.Close()
}
