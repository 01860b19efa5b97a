package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"phrasedeck/internal/cache"
	"phrasedeck/internal/concurrency"
	"phrasedeck/internal/domain"
	"phrasedeck/internal/httpx"
	"phrasedeck/internal/providers"
)

// NoteSink receives assembled note records as the engine produces them.
// Records arrive streaming, in lesson order; within a fetched lesson they
// follow page order, within a cached lesson sorted sound-id order.
type NoteSink interface {
	Add(domain.NoteRecord) error
}

// Stats summarizes one engine run.
type Stats struct {
	Lessons     int
	CacheHits   int
	Fetched     int
	Notes       int
	AudioMisses int
}

// Engine walks a lesson range sequentially. Per lesson it either
// reconstructs notes from the two language caches or fetches the lesson
// remotely, persisting both caches only after the whole lesson parsed.
// Transient network failures are retried against the same lesson at a
// fixed interval, so a killed run resumes at the first uncached lesson.
type Engine struct {
	Provider  providers.LessonProvider
	Source    domain.LanguageCode
	Dest      domain.LanguageCode
	Sentences *cache.SentenceStore
	Audio     *cache.AudioStore

	// Backoff is the pause before re-trying a lesson after a transient
	// failure. Defaults to 60s.
	Backoff time.Duration

	// MaxFetchRetries bounds the transient retry loop. 0 retries forever,
	// which matches the politeness-first original behavior; bounding it is
	// a deliberate deviation for unattended runs.
	MaxFetchRetries int

	// Delay returns the politeness pause inserted after each remote lesson
	// fetch. Defaults to a uniform 1..29s.
	Delay func() time.Duration

	// PrefetchWorkers bounds the parallel audio prefetch on cache hits.
	PrefetchWorkers int

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (e *Engine) backoff() time.Duration {
	if e.Backoff > 0 {
		return e.Backoff
	}
	return 60 * time.Second
}

func (e *Engine) delay() time.Duration {
	if e.Delay != nil {
		return e.Delay()
	}
	return time.Duration(1+rand.Intn(29)) * time.Second
}

// Run processes lessons start..end inclusive, emitting every note into
// sink. It stops at the first unrecoverable error; everything persisted up
// to that point stays durable, so re-running the same range resumes.
func (e *Engine) Run(ctx context.Context, start, end int, sink NoteSink) (Stats, error) {
	var stats Stats

	if err := domain.ValidateRange(start, end); err != nil {
		return stats, err
	}

	for lesson := start; lesson <= end; lesson++ {
		stats.Lessons++

		srcCached, err := e.Sentences.Lesson(e.Source, lesson)
		if err != nil {
			return stats, err
		}
		dstCached, err := e.Sentences.Lesson(e.Dest, lesson)
		if err != nil {
			return stats, err
		}

		if len(srcCached) > 0 && len(dstCached) > 0 {
			e.logf("lesson %d: using cached sentences", lesson)
			stats.CacheHits++
			if err := e.emitCached(ctx, lesson, srcCached, dstCached, sink, &stats); err != nil {
				return stats, err
			}
			continue
		}

		e.logf("lesson %d: fetching", lesson)
		if err := e.fetchAndEmit(ctx, lesson, sink, &stats); err != nil {
			return stats, err
		}
		stats.Fetched++

		if lesson < end {
			if err := sleep(ctx, e.delay()); err != nil {
				return stats, err
			}
		}
	}

	return stats, nil
}

// emitCached rebuilds a lesson's notes from the two cache entries. Sound
// ids present on only one side are skipped with a warning rather than
// aborting the run; a hand-edited cache degrades per row.
func (e *Engine) emitCached(ctx context.Context, lesson int, src, dst map[string]string, sink NoteSink, stats *Stats) error {
	ids := make([]string, 0, len(src))
	for id := range src {
		if _, ok := dst[id]; !ok {
			e.logf("lesson %d: sound id %s cached for %s but not %s, skipping", lesson, id, e.Source, e.Dest)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Warm the audio store with bounded parallelism before emitting, so a
	// cache-hit pass over a cold audio dir is not serialized on downloads.
	prefetchErrs := concurrency.ForEach(ctx, ids, e.PrefetchWorkers, func(ctx context.Context, id string) error {
		return e.withTransientRetry(ctx, fmt.Sprintf("lesson %d audio %s", lesson, id), func() error {
			_, err := e.Audio.Ensure(ctx, e.Dest, id, e.Provider.FetchAudio)
			return err
		})
	})
	if len(prefetchErrs) > 0 {
		return prefetchErrs[0]
	}

	link := e.Provider.LessonURL(lesson)
	for _, id := range ids {
		path, err := e.Audio.Ensure(ctx, e.Dest, id, e.Provider.FetchAudio)
		if err != nil {
			return err
		}
		if err := sink.Add(domain.NoteRecord{
			Source:        src[id],
			Dest:          dst[id],
			AudioFilename: e.Audio.Filename(e.Dest, id),
			AudioPath:     path,
			LessonLink:    link,
		}); err != nil {
			return err
		}
		stats.Notes++
	}
	return nil
}

// fetchAndEmit is the cache-miss path: fetch+parse (retrying the whole
// lesson on transient failure, before anything is emitted), then stream
// notes while accumulating both language maps, and persist the two cache
// entries only once the lesson is complete.
func (e *Engine) fetchAndEmit(ctx context.Context, lesson int, sink NoteSink, stats *Stats) error {
	var pairs []domain.SentencePair
	err := e.withTransientRetry(ctx, fmt.Sprintf("lesson %d", lesson), func() error {
		var err error
		pairs, err = e.Provider.FetchLesson(ctx, lesson)
		return err
	})
	if err != nil {
		return err
	}

	link := e.Provider.LessonURL(lesson)
	src := make(map[string]string, len(pairs))
	dst := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		var path string
		err := e.withTransientRetry(ctx, fmt.Sprintf("lesson %d audio %s", lesson, pair.SoundID), func() error {
			var err error
			path, err = e.Audio.Ensure(ctx, e.Dest, pair.SoundID, func(ctx context.Context, lang domain.LanguageCode, soundID string) ([]byte, error) {
				stats.AudioMisses++
				return e.Provider.FetchAudio(ctx, lang, soundID)
			})
			return err
		})
		if err != nil {
			return err
		}

		if err := sink.Add(domain.NoteRecord{
			Source:        pair.Source,
			Dest:          pair.Dest,
			AudioFilename: e.Audio.Filename(e.Dest, pair.SoundID),
			AudioPath:     path,
			LessonLink:    link,
		}); err != nil {
			return err
		}
		stats.Notes++

		src[pair.SoundID] = pair.Source
		dst[pair.SoundID] = pair.Dest
	}

	// Persist only now: an entry's presence means the lesson is complete.
	if err := e.Sentences.PutLesson(e.Source, lesson, src); err != nil {
		return err
	}
	if err := e.Sentences.PutLesson(e.Dest, lesson, dst); err != nil {
		return err
	}
	return nil
}

// withTransientRetry runs fn, sleeping the fixed backoff and trying again
// for as long as it keeps failing with httpx.ErrTransient (or until
// MaxFetchRetries, when set). Any other error passes through untouched.
func (e *Engine) withTransientRetry(ctx context.Context, what string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, httpx.ErrTransient) {
			return err
		}
		if e.MaxFetchRetries > 0 && attempt+1 >= e.MaxFetchRetries {
			return fmt.Errorf("%s: gave up after %d transient failures: %w", what, attempt+1, err)
		}
		e.logf("%s: transient failure (%v), retrying in %s", what, err, e.backoff())
		if err := sleep(ctx, e.backoff()); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
