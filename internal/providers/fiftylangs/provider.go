package fiftylangs

import (
	"context"

	"phrasedeck/internal/domain"
)

// Provider adapts the client into the internal providers.LessonProvider
// interface for one language pair. LessonOffset is added to the lesson
// number when building URLs; some site mirrors shift their numbering.
type Provider struct {
	C            *Client
	Source       domain.LanguageCode
	Dest         domain.LanguageCode
	LessonOffset int
	Extractor    DestExtractor
}

func (p *Provider) Name() string { return "50languages" }

func (p *Provider) LessonURL(lesson int) string {
	return p.C.LessonURL(p.Source, p.Dest, lesson+p.LessonOffset)
}

func (p *Provider) FetchLesson(ctx context.Context, lesson int) ([]domain.SentencePair, error) {
	page, err := p.C.GetLessonPage(ctx, p.Source, p.Dest, lesson+p.LessonOffset)
	if err != nil {
		return nil, err
	}
	extract := p.Extractor
	if extract == nil {
		extract = MarkupExtractor{}
	}
	return ParseLesson(page, lesson, extract)
}

func (p *Provider) FetchAudio(ctx context.Context, lang domain.LanguageCode, soundID string) ([]byte, error) {
	return p.C.GetAudio(ctx, lang, soundID)
}
