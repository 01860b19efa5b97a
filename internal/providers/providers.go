package providers

import (
	"context"

	"phrasedeck/internal/domain"
)

// LessonProvider is a remote source of numbered lessons for one language
// pair. FetchLesson returns the parsed sentence pairs in page order.
type LessonProvider interface {
	Name() string
	LessonURL(lesson int) string
	FetchLesson(ctx context.Context, lesson int) ([]domain.SentencePair, error)
	FetchAudio(ctx context.Context, lang domain.LanguageCode, soundID string) ([]byte, error)
}
