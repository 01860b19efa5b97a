package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"phrasedeck/internal/config"
	"phrasedeck/internal/devutil"
	"phrasedeck/internal/domain"
	"phrasedeck/internal/providers/fiftylangs"
)

// Operator smoke tool: fetch one lesson page, parse it, print the rows.
// Useful to check whether the remote markup still matches the parser
// before kicking off a full-range sync.
func main() {
	var (
		srcLang  = flag.String("srclang", "en", "code of source language")
		destLang = flag.String("destlang", "fr", "code of destination language")
		lesson   = flag.Int("lesson", 1, "lesson number to fetch (1-100)")
		plain    = flag.Bool("plain-dest", false, "strip markup from destination sentences")
	)
	flag.Parse()

	if err := domain.ValidateRange(*lesson, *lesson); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := config.Load()

	var extractor fiftylangs.DestExtractor = fiftylangs.MarkupExtractor{}
	if *plain {
		extractor = fiftylangs.TextExtractor{}
	}

	provider := &fiftylangs.Provider{
		C:            fiftylangs.New(cfg.LessonBaseURL, cfg.SoundBaseURL),
		Source:       domain.LanguageCode(*srcLang),
		Dest:         domain.LanguageCode(*destLang),
		LessonOffset: cfg.LessonOffset,
		Extractor:    extractor,
	}

	pairs, err := provider.FetchLesson(ctx, *lesson)
	if err != nil {
		log.Fatalf("fetch error: %v", err)
	}

	fmt.Printf("OK: %s parsed %d sentence pairs\n", provider.LessonURL(*lesson), len(pairs))
	for i, p := range pairs {
		fmt.Printf("%d) %v\n", i+1, devutil.Pick(p, "SoundID", "Source", "Dest"))
	}
}
