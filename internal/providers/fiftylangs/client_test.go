package fiftylangs

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"phrasedeck/internal/httpx"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestLessonURL(t *testing.T) {
	c := New("https://www.50languages.com/phrasebook/lesson", "https://www.book2.nl/book2")

	got := c.LessonURL("en", "fr", 5)
	want := "https://www.50languages.com/phrasebook/lesson/en/fr/5"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSoundURL(t *testing.T) {
	c := New("https://www.50languages.com/phrasebook/lesson", "https://www.book2.nl/book2")

	got := c.SoundURL("fr", "1234")
	want := "https://www.book2.nl/book2/fr/SOUND/1234.mp3"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestGetLessonPage(t *testing.T) {
	var requested string
	c := New("https://lessons.test", "https://sound.test")
	c.Retry = httpx.RetryConfig{MaxAttempts: 1, BaseDelay: 1, MaxDelay: 1}
	c.HTTP = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requested = req.URL.String()
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{},
			Body:       io.NopCloser(bytes.NewBufferString("<html>ok</html>")),
		}, nil
	})}

	body, err := c.GetLessonPage(context.Background(), "en", "fr", 9)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if requested != "https://lessons.test/en/fr/9" {
		t.Errorf("Unexpected URL %q", requested)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("Unexpected body %q", string(body))
	}
}

func TestProviderAppliesLessonOffset(t *testing.T) {
	p := &Provider{
		C:            New("https://lessons.test", "https://sound.test"),
		Source:       "en",
		Dest:         "fr",
		LessonOffset: 2,
	}

	got := p.LessonURL(5)
	if got != "https://lessons.test/en/fr/7" {
		t.Errorf("Expected offset applied, got %q", got)
	}
}
