package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// dotenvCandidates are tried in order; the first that exists wins.
var dotenvCandidates = []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")}

// loadDotenv overlays the first .env it finds onto the process env and returns its path.
func loadDotenv() (string, error) {
	for _, p := range dotenvCandidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Overload(p); err != nil {
			return p, fmt.Errorf("load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}

// checkEnv reports every missing required variable at once.
func checkEnv() error {
	var errs []error
	for _, k := range []string{"DATABASE_URL", "JWT_SECRET"} {
		if os.Getenv(k) == "" {
			errs = append(errs, fmt.Errorf("missing required env %s", k))
		}
	}
	return errors.Join(errs...)
}

func mustLoadEnv() {
	p, err := loadDotenv()
	if err != nil {
		log.Fatalf("[env] %v", err)
	}
	if p != "" {
		log.Println("[env] loaded", p)
	}
	if err := checkEnv(); err != nil {
		log.Fatalf("[env] %v", err)
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("[env] OPENAI_API_KEY not set; /api/suggest-messages will answer 500")
	}
}
