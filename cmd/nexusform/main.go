// nexusform is the HTTP host for the form-filling agent: it wires the chat
// model, the verification MCP submitter, the SQLite session store and the
// session engine behind a small REST surface.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/farhan32742/nexusform/clarify"
	"github.com/farhan32742/nexusform/extract"
	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/httpapi"
	"github.com/farhan32742/nexusform/session"
	"github.com/farhan32742/nexusform/store"
	"github.com/farhan32742/nexusform/submit"
)

func main() {
	_ = godotenv.Load()
	slog.SetLogLoggerLevel(slog.LevelInfo)

	port := getenv("PORT", "8080")
	dbPath := getenv("DATABASE_PATH", "data/nexusform.db")

	schemaURL := os.Getenv("FORM_GET_SCHEMA_URL")
	if schemaURL == "" {
		log.Fatal("FORM_GET_SCHEMA_URL is not set")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	ctx := context.Background()

	// --- chat model (one per process, shared read-only) ---
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   getenv("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
	})
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}

	// --- durable session store ---
	sessionStore, err := store.NewSQLite(dbPath)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer sessionStore.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sessionStore.Ping(pingCtx); err != nil {
		log.Fatalf("session store ping: %v", err)
	}

	// --- verification server over MCP stdio ---
	verifydCmd := strings.Fields(getenv("VERIFYD_COMMAND", "verifyd"))
	submitter, err := submit.NewMCPSubmitter(ctx, verifydCmd[0], verifydCmd[1:]...)
	if err != nil {
		log.Fatalf("start verification server: %v", err)
	}
	defer submitter.Close()

	// --- engine wiring ---
	engine := session.NewEngine(
		formschema.NewHTTPSource(schemaURL, nil),
		extract.NewToolBasedExtractor(chatModel),
		clarify.NewFailbackClarifier(
			clarify.NewToolBasedClarifier(chatModel),
			clarify.LocalClarifier{},
		),
		submitter,
		sessionStore,
		session.Config{
			HistoryWindow:            getenvInt("HISTORY_WINDOW", 20),
			TerminateOnBackendReject: os.Getenv("TERMINATE_ON_BACKEND_REJECT") == "1",
			CallTimeout:              time.Duration(getenvInt("CALL_TIMEOUT_SECONDS", 60)) * time.Second,
		},
	)

	// --- router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	httpapi.RegisterRoutes(r, httpapi.NewHandler(engine))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	slog.Info("listening", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
