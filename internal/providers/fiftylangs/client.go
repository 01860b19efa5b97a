package fiftylangs

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"phrasedeck/internal/domain"
	"phrasedeck/internal/httpx"
)

// Client talks to the two remote endpoints: the phrasebook lesson pages
// and the audio host. URL shapes:
//
//	<LessonBaseURL>/<src>/<dest>/<lesson>
//	<SoundBaseURL>/<lang>/SOUND/<soundID>.mp3
type Client struct {
	LessonBaseURL string
	SoundBaseURL  string
	HTTP          *http.Client
	Retry         httpx.RetryConfig
}

func New(lessonBaseURL, soundBaseURL string) *Client {
	return &Client{
		LessonBaseURL: lessonBaseURL,
		SoundBaseURL:  soundBaseURL,
		HTTP: &http.Client{
			Timeout: 2 * time.Minute,
		},
		Retry: httpx.DefaultRetryConfig(),
	}
}

func (c *Client) LessonURL(src, dest domain.LanguageCode, lesson int) string {
	return fmt.Sprintf("%s/%s/%s/%d", c.LessonBaseURL, src, dest, lesson)
}

func (c *Client) SoundURL(lang domain.LanguageCode, soundID string) string {
	return fmt.Sprintf("%s/%s/SOUND/%s.mp3", c.SoundBaseURL, lang, soundID)
}

// GetLessonPage fetches the raw HTML of one lesson page.
func (c *Client) GetLessonPage(ctx context.Context, src, dest domain.LanguageCode, lesson int) ([]byte, error) {
	body, err := httpx.Get(ctx, c.HTTP, c.LessonURL(src, dest, lesson), c.Retry)
	if err != nil {
		return nil, fmt.Errorf("fiftylangs: lesson %d: %w", lesson, err)
	}
	return body, nil
}

// GetAudio fetches the raw mp3 bytes of one clip.
func (c *Client) GetAudio(ctx context.Context, lang domain.LanguageCode, soundID string) ([]byte, error) {
	body, err := httpx.Get(ctx, c.HTTP, c.SoundURL(lang, soundID), c.Retry)
	if err != nil {
		return nil, fmt.Errorf("fiftylangs: audio %s/%s: %w", lang, soundID, err)
	}
	return body, nil
}
