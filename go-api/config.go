package main

import (
	"net/http"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL    string
	CookieName     string
	CookieSecure   bool
	CookieDomain   string
	CookieSameSite http.SameSite
	CORSOrigins    []string
	Port           string
}

func loadConfig() Config {
	secure := os.Getenv("COOKIE_SECURE") == "true"
	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CookieName:     getenv("COOKIE_NAME", "mm_auth"),
		CookieSecure:   secure,
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CookieSameSite: sameSiteFrom(os.Getenv("COOKIE_SAMESITE")),
		CORSOrigins:    splitOrigins(getenv("CORS_ORIGIN", "http://localhost:3000")),
		Port:           getenv("PORT", "8080"),
	}
}

// splitOrigins accepts a comma-separated list of origins.
func splitOrigins(s string) []string {
	var origins []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
