package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// StorageConfig locates the durable on-disk state: one JSON file per
// language under SentencesDir, one mp3 per (language, sound id) under
// AudioDir. Both are created on first use and never torn down.
type StorageConfig struct {
	CacheDir     string
	SentencesDir string
	AudioDir     string
}

type Config struct {
	// 50languages
	LessonBaseURL string
	SoundBaseURL  string
	LessonOffset  int // added to the lesson number when building the URL

	Storage StorageConfig

	// SFTP (optional deck upload)
	SFTPHost      string
	SFTPPort      int
	SFTPUser      string
	SFTPPass      string
	SFTPRemoteDir string
}

func Load() Config {
	cacheDir := getenv("PHRASEDECK_CACHE_DIR", "cache")

	return Config{
		LessonBaseURL: getenv("FIFTYLANGS_LESSON_BASE_URL", "https://www.50languages.com/phrasebook/lesson"),
		SoundBaseURL:  getenv("FIFTYLANGS_SOUND_BASE_URL", "https://www.book2.nl/book2"),
		LessonOffset:  getenvInt("FIFTYLANGS_LESSON_OFFSET", 0),

		Storage: StorageConfig{
			CacheDir:     cacheDir,
			SentencesDir: filepath.Join(cacheDir, "sentences"),
			AudioDir:     filepath.Join(cacheDir, "audio"),
		},

		SFTPHost:      os.Getenv("SFTP_HOST"),
		SFTPPort:      getenvInt("SFTP_PORT", 22),
		SFTPUser:      os.Getenv("SFTP_USER"),
		SFTPPass:      os.Getenv("SFTP_PASS"),
		SFTPRemoteDir: getenv("SFTP_REMOTE_DIR", "/"),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
