package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"phrasedeck/internal/cache"
	"phrasedeck/internal/config"
	"phrasedeck/internal/domain"
	"phrasedeck/internal/export"
	"phrasedeck/internal/providers/fiftylangs"
	"phrasedeck/internal/sftpclient"
	"phrasedeck/internal/sync"
)

func main() {
	var (
		srcLang    = flag.String("srclang", "", "code of source language (required)")
		destLang   = flag.String("destlang", "", "code of destination language (required)")
		start      = flag.Int("start", domain.MinLesson, "first lesson to sync (1-100)")
		end        = flag.Int("end", domain.MaxLesson, "last lesson to sync (1-100)")
		modelID    = flag.Int64("model-id", 0, "fixed Anki model id (0 = random; fix it so re-imports update in place)")
		outPath    = flag.String("out", "", "output .apkg path (default derived from languages and range)")
		plainDest  = flag.Bool("plain-dest", false, "strip markup from destination sentences instead of preserving it")
		maxRetries = flag.Int("max-retries", 0, "max transient retries per fetch (0 = retry forever)")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated package via SFTP")
	)
	flag.Parse()

	if *srcLang == "" || *destLang == "" {
		log.Fatal("missing required flags: -srclang and -destlang")
	}
	if err := domain.ValidateRange(*start, *end); err != nil {
		log.Fatal(err)
	}

	src := domain.LanguageCode(*srcLang)
	dest := domain.LanguageCode(*destLang)

	// timeout general grande: a full 100-lesson refresh with politeness
	// delays can take a while
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Hour)
	defer cancel()

	cfg := config.Load()

	sentences, err := cache.NewSentenceStore(cfg.Storage.SentencesDir)
	if err != nil {
		log.Fatal(err)
	}
	audio, err := cache.NewAudioStore(cfg.Storage.AudioDir)
	if err != nil {
		log.Fatal(err)
	}

	var extractor fiftylangs.DestExtractor = fiftylangs.MarkupExtractor{}
	if *plainDest {
		extractor = fiftylangs.TextExtractor{}
	}

	provider := &fiftylangs.Provider{
		C:            fiftylangs.New(cfg.LessonBaseURL, cfg.SoundBaseURL),
		Source:       src,
		Dest:         dest,
		LessonOffset: cfg.LessonOffset,
		Extractor:    extractor,
	}

	mid := *modelID
	if mid == 0 {
		mid = export.RandomID()
	}
	model := export.NewPhrasebookModel(mid, src, dest)
	deck := export.NewPhrasebookDeck(export.RandomID(), src, dest)
	builder := export.NewDeckBuilder(deck, model)

	engine := &sync.Engine{
		Provider:        provider,
		Source:          src,
		Dest:            dest,
		Sentences:       sentences,
		Audio:           audio,
		MaxFetchRetries: *maxRetries,
	}

	out := *outPath
	if out == "" {
		out = export.DefaultPackageName(src, dest, *start, *end)
	}
	if dir := filepath.Dir(out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("generating %s", out)

	stats, err := engine.Run(ctx, *start, *end, builder)
	if err != nil {
		// Fully processed lessons stay cached; re-running the same range
		// resumes from the first uncached lesson.
		log.Fatalf("sync aborted after %d lesson(s): %v", stats.Lessons-1, err)
	}

	if err := builder.Package().WriteFile(out); err != nil {
		log.Fatal(err)
	}

	log.Printf(
		"wrote %s (lessons=%d cached=%d fetched=%d notes=%d audio-downloads=%d)",
		out, stats.Lessons, stats.CacheHits, stats.Fetched, stats.Notes, stats.AudioMisses,
	)

	if *uploadSFTP {
		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPRemoteDir,
			InsecureIgnoreHostKey: true,
		}
		if err := sftpclient.Upload(ctx, upCfg, out); err != nil {
			log.Fatalf("sftp upload failed: %v", err)
		}
		log.Printf("uploaded %s to %s:%s", filepath.Base(out), upCfg.Host, upCfg.RemoteDir)
	}
}
