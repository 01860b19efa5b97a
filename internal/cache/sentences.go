package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"phrasedeck/internal/domain"
)

// SentenceStore persists parsed lesson sentences, one JSON file per
// language: an object mapping lesson-number-as-string to an object mapping
// sound id to sentence text. A lesson entry, once present, is complete;
// the sync engine never writes partial lessons.
type SentenceStore struct {
	dir string
}

func NewSentenceStore(dir string) (*SentenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sentence store: %w", err)
	}
	return &SentenceStore{dir: dir}, nil
}

func (s *SentenceStore) file(lang domain.LanguageCode) string {
	return filepath.Join(s.dir, string(lang)+".json")
}

// Lesson returns the cached sentences for one lesson, or an empty map when
// the lesson (or the whole language file) is not cached yet.
func (s *SentenceStore) Lesson(lang domain.LanguageCode, lesson int) (map[string]string, error) {
	all, err := s.load(lang)
	if err != nil {
		return nil, err
	}
	sentences := all[strconv.Itoa(lesson)]
	if sentences == nil {
		sentences = map[string]string{}
	}
	return sentences, nil
}

// PutLesson merges one complete lesson into the language file, leaving
// every other lesson untouched. The file is replaced via a temp file and
// rename so a crash mid-write keeps the previous state intact.
func (s *SentenceStore) PutLesson(lang domain.LanguageCode, lesson int, sentences map[string]string) error {
	all, err := s.load(lang)
	if err != nil {
		return err
	}
	all[strconv.Itoa(lesson)] = sentences

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("sentence store %s: %w", lang, err)
	}

	path := s.file(lang)
	tmp, err := os.CreateTemp(s.dir, string(lang)+".*.tmp")
	if err != nil {
		return fmt.Errorf("sentence store %s: %w", lang, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sentence store %s: %w", lang, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sentence store %s: %w", lang, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sentence store %s: %w", lang, err)
	}
	return nil
}

// load reads the whole language file; a missing file is an empty store,
// not an error.
func (s *SentenceStore) load(lang domain.LanguageCode) (map[string]map[string]string, error) {
	data, err := os.ReadFile(s.file(lang))
	if os.IsNotExist(err) {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sentence store %s: %w", lang, err)
	}

	var all map[string]map[string]string
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("sentence store %s: corrupt cache file: %w", lang, err)
	}
	if all == nil {
		all = map[string]map[string]string{}
	}
	return all, nil
}
