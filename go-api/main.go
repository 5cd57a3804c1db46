package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func main() {
	mustLoadEnv()
	cfg := loadConfig()
	cookieName = cfg.CookieName
	cookieSecure = cfg.CookieSecure
	cookieDomain = cfg.CookieDomain
	cookieSameSite = cfg.CookieSameSite

	dsn := cfg.DatabaseURL
	// local only: allow sslmode=disable if using localhost
	if strings.Contains(dsn, "localhost") && !strings.Contains(dsn, "sslmode=") {
		if strings.Contains(dsn, "?") {
			dsn += "&sslmode=disable"
		} else {
			dsn += "?sslmode=disable"
		}
	}

	// Quieter GORM logger
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold: 1500 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	var err error
	DB, err = openDatabase(dsn, gLogger)
	if err != nil {
		log.Fatalf("[DB] connect failed: %v", err)
	}
	if err := autoMigrate(DB); err != nil {
		log.Fatalf("[DB] migrate failed: %v", err)
	}
	log.Println("[DB] connected")

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("API listening on", addr, "CORS_ORIGIN:", strings.Join(cfg.CORSOrigins, ","))
	log.Fatal(srv.ListenAndServe())
}

func newRouter(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// Finish bare OPTIONS quickly
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Use(withSession)

	// ---- Routes
	// Auth
	r.Post("/api/sign-up", handleSignUp)
	r.Post("/api/sign-in", handleSignIn)
	r.Post("/api/sign-out", handleSignOut)
	r.Get("/api/auth/session", handleSession)
	r.Get("/api/check-username-unique", handleCheckUsername)

	// Owner settings & inbox
	r.Get("/api/accept-messages", requireUser(handleGetAcceptMessages))
	r.Post("/api/accept-messages", requireUser(handleSetAcceptMessages))
	r.Get("/api/get-messages", requireUser(handleGetMessages))
	r.Delete("/api/delete-message/{messageId}", requireUser(handleDeleteMessage))
	r.Post("/api/accept-message/{messageId}", requireUser(handleAcceptMessage))
	r.Get("/api/message-stats", requireUser(handleMessageStats))

	// Public intake
	r.Get("/api/u/{username}", handlePublicProfile)
	r.Post("/api/send-message", handleSendMessage)

	// OpenAI: question suggestions (streamed)
	r.Post("/api/suggest-messages", handleSuggestMessages)

	// Health & metrics
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
