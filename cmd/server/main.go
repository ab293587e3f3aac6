package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/statafric/consultation/internal/api"
	"github.com/statafric/consultation/internal/middleware"
	"github.com/statafric/consultation/internal/services"
	"github.com/statafric/consultation/internal/utils"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	addr := utils.SafeEnv("CONSULTATION_ADDR", ":8080")
	commit := os.Getenv("CONSULTATION_COMMIT")
	buildTime := os.Getenv("CONSULTATION_BUILD_TIME")

	store, dbPath, err := openStore(os.Getenv("CONSULTATION_DB"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	log.Printf("using database %s", dbPath)

	reference := services.NewReferenceService(utils.SafeEnv("CONSULTATION_DATA_DIR", "data"))

	mux := http.NewServeMux()
	api.NewRouter(store, reference).Register(mux)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"name":   "Consultation API",
			"locale": locale,
			"msg":    utils.T(locale, "health.ok"),
		})
	})

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":          commit,
			"build_time":      buildTime,
			"scoring_version": services.ScoringVersion,
		})
	})

	// The questionnaire frontend, when bundled into the same image.
	if staticDir := os.Getenv("CONSULTATION_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.CORS(
		middleware.SecureHeaders(
			middleware.NoStore(
				middleware.LocaleMiddleware(
					middleware.WithAuth(mux)))))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(utils.SafeEnvInt("CONSULTATION_READ_TIMEOUT", 15)) * time.Second,
	}

	log.Printf("consultation server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
