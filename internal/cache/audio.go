package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"phrasedeck/internal/domain"
)

// AudioFetchFunc downloads the raw clip bytes for one (language, sound id)
// pair. Implementations fail with an error wrapping httpx.ErrTransient on
// connection trouble.
type AudioFetchFunc func(ctx context.Context, lang domain.LanguageCode, soundID string) ([]byte, error)

// AudioStore keeps one mp3 per (language, sound id) in a flat directory.
// Assets are addressed purely by that identity: once a file exists it is
// immutable and the fetcher is never invoked for it again.
type AudioStore struct {
	dir string
}

func NewAudioStore(dir string) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audio store: %w", err)
	}
	return &AudioStore{dir: dir}, nil
}

// Filename is the deterministic cache name for a clip, e.g. "fr_1234.mp3".
// It is also the media name referenced from deck notes.
func (s *AudioStore) Filename(lang domain.LanguageCode, soundID string) string {
	return fmt.Sprintf("%s_%s.mp3", lang, soundID)
}

// Path maps a clip identity to its location on disk, whether or not the
// file exists yet.
func (s *AudioStore) Path(lang domain.LanguageCode, soundID string) string {
	return filepath.Join(s.dir, s.Filename(lang, soundID))
}

// Ensure returns the local path of a clip, downloading it first if needed.
// A hit costs one stat; a miss costs one fetch and one write.
func (s *AudioStore) Ensure(ctx context.Context, lang domain.LanguageCode, soundID string, fetch AudioFetchFunc) (string, error) {
	path := s.Path(lang, soundID)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("audio store: %w", err)
	}

	data, err := fetch(ctx, lang, soundID)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("audio store: write %s: %w", s.Filename(lang, soundID), err)
	}
	return path, nil
}
