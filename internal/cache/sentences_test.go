package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestSentenceStore(t *testing.T) *SentenceStore {
	t.Helper()
	s, err := NewSentenceStore(filepath.Join(t.TempDir(), "sentences"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return s
}

func TestLessonMissingLanguageIsEmpty(t *testing.T) {
	s := newTestSentenceStore(t)

	got, err := s.Lesson("xx", 5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty map for missing language, got %v", got)
	}
}

func TestPutThenGet(t *testing.T) {
	s := newTestSentenceStore(t)

	want := map[string]string{"a1": "Hello", "b2": "Goodbye"}
	if err := s.PutLesson("en", 5, want); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := s.Lesson("en", 5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPutMergesWithoutTouchingOtherLessons(t *testing.T) {
	s := newTestSentenceStore(t)

	if err := s.PutLesson("en", 1, map[string]string{"a1": "one"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutLesson("en", 2, map[string]string{"b2": "two"}); err != nil {
		t.Fatal(err)
	}

	lesson1, err := s.Lesson("en", 1)
	if err != nil {
		t.Fatal(err)
	}
	if lesson1["a1"] != "one" {
		t.Errorf("Lesson 1 lost its entry after writing lesson 2: %v", lesson1)
	}
	lesson2, err := s.Lesson("en", 2)
	if err != nil {
		t.Fatal(err)
	}
	if lesson2["b2"] != "two" {
		t.Errorf("Expected lesson 2 entry, got %v", lesson2)
	}
}

func TestPutReplacesExistingLesson(t *testing.T) {
	s := newTestSentenceStore(t)

	if err := s.PutLesson("en", 3, map[string]string{"a1": "old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutLesson("en", 3, map[string]string{"a1": "new", "c3": "extra"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Lesson("en", 3)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"a1": "new", "c3": "extra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestLanguagesAreIndependentFiles(t *testing.T) {
	s := newTestSentenceStore(t)

	if err := s.PutLesson("en", 1, map[string]string{"a1": "Hello"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutLesson("fr", 1, map[string]string{"a1": "Bonjour"}); err != nil {
		t.Fatal(err)
	}

	// On-disk format is part of the contract: lesson-id-as-string to
	// soundID-to-sentence, one file per language.
	data, err := os.ReadFile(s.file("fr"))
	if err != nil {
		t.Fatal(err)
	}
	var all map[string]map[string]string
	if err := json.Unmarshal(data, &all); err != nil {
		t.Fatalf("fr.json is not the documented shape: %v", err)
	}
	if all["1"]["a1"] != "Bonjour" {
		t.Errorf("Expected fr.json[1][a1]=Bonjour, got %v", all)
	}

	en, err := s.Lesson("en", 1)
	if err != nil {
		t.Fatal(err)
	}
	if en["a1"] != "Hello" {
		t.Errorf("en cache affected by fr write: %v", en)
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	s := newTestSentenceStore(t)

	if err := os.WriteFile(s.file("en"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Lesson("en", 1); err == nil {
		t.Error("Expected error for corrupt cache file, got nil")
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s := newTestSentenceStore(t)

	if err := s.PutLesson("en", 1, map[string]string{"a1": "one"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "en.json" {
			t.Errorf("Unexpected file in sentence dir: %s", e.Name())
		}
	}
}

func TestLessonUnknownNumberIsEmpty(t *testing.T) {
	s := newTestSentenceStore(t)

	if err := s.PutLesson("en", 1, map[string]string{"a1": "one"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Lesson("en", 99)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty map for uncached lesson, got %v", got)
	}
}
