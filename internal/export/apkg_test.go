package export

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"phrasedeck/internal/domain"
)

func noteRecord(src, dst, file, path string) domain.NoteRecord {
	return domain.NoteRecord{
		Source:        src,
		Dest:          dst,
		AudioFilename: file,
		AudioPath:     path,
		LessonLink:    "https://lessons.test/en/fr/1",
	}
}

func writeTempMedia(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func buildSmallPackage(t *testing.T) (*Package, string) {
	t.Helper()
	dir := t.TempDir()

	model := NewPhrasebookModel(1234567890, "en", "fr")
	deck := NewPhrasebookDeck(1987654321, "en", "fr")
	b := NewDeckBuilder(deck, model)

	media1 := writeTempMedia(t, dir, "fr_a1.mp3", "clip-one")
	media2 := writeTempMedia(t, dir, "fr_b2.mp3", "clip-two")

	recs := []struct{ src, dst, file, path string }{
		{"Hello", "<b>Bonjour</b>", "fr_a1.mp3", media1},
		{"Goodbye", "Au revoir", "fr_b2.mp3", media2},
	}
	for _, r := range recs {
		err := b.Add(noteRecord(r.src, r.dst, r.file, r.path))
		if err != nil {
			t.Fatal(err)
		}
	}

	return b.Package(), filepath.Join(dir, "out.apkg")
}

func TestPackageWriteFile(t *testing.T) {
	pkg, out := buildSmallPackage(t)

	if err := pkg.WriteFile(out); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("Package is not a readable zip: %v", err)
	}
	defer zr.Close()

	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries[f.Name] = data
	}

	if _, ok := entries["collection.anki2"]; !ok {
		t.Error("Package missing collection.anki2")
	}
	if len(entries["collection.anki2"]) == 0 {
		t.Error("collection.anki2 is empty")
	}

	var manifest map[string]string
	if err := json.Unmarshal(entries["media"], &manifest); err != nil {
		t.Fatalf("media manifest is not JSON: %v", err)
	}
	if len(manifest) != 2 {
		t.Fatalf("Expected 2 media entries, got %v", manifest)
	}

	// Numeric entry names map back to the cache file names, and the clip
	// bytes travel unchanged.
	seen := map[string]bool{}
	for num, name := range manifest {
		seen[name] = true
		if _, ok := entries[num]; !ok {
			t.Errorf("Manifest references missing zip entry %q", num)
		}
	}
	if !seen["fr_a1.mp3"] || !seen["fr_b2.mp3"] {
		t.Errorf("Manifest missing expected names: %v", manifest)
	}
}

func TestWriteCollectionRejectsEmptyDeck(t *testing.T) {
	deck := NewPhrasebookDeck(1, "en", "fr")
	dbPath := filepath.Join(t.TempDir(), "collection.anki2")

	if err := writeCollection(dbPath, deck, time.Now()); err == nil {
		t.Error("Expected error for deck without notes")
	}
}
