package domain

import "fmt"

// Supported lesson range on the remote phrasebook.
const (
	MinLesson = 1
	MaxLesson = 100
)

// LanguageCode is the short code the remote site uses for a language
// ("en", "fr", "ja", ...). It doubles as the cache partition key and as
// half of an audio asset's identity.
type LanguageCode string

// ValidateRange checks a start/end lesson pair against the supported range.
func ValidateRange(start, end int) error {
	if start < MinLesson || start > MaxLesson {
		return fmt.Errorf("start lesson %d out of range [%d,%d]", start, MinLesson, MaxLesson)
	}
	if end < MinLesson || end > MaxLesson {
		return fmt.Errorf("end lesson %d out of range [%d,%d]", end, MinLesson, MaxLesson)
	}
	if end < start {
		return fmt.Errorf("end lesson %d before start lesson %d", end, start)
	}
	return nil
}

// SentencePair is one parsed row of a lesson page. SoundID is the stable
// identity of the pair: the same id names the destination-language audio clip
// and keys the sentence in both language caches.
type SentencePair struct {
	SoundID string
	Source  string // plain text, source language
	Dest    string // may contain inline markup (ruby/furigana and similar)
}

// NoteRecord is one fully assembled flashcard unit, ready for the deck
// assembler: both sentences, the local audio file backing the pair, and a
// link back to the lesson it came from.
type NoteRecord struct {
	Source        string
	Dest          string
	AudioFilename string // file name inside the audio cache, e.g. "fr_123.mp3"
	AudioPath     string // absolute or cache-relative path to that file
	LessonLink    string // lesson page URL
}
