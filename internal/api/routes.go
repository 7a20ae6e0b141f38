// Route registration and go-chi router setup.
// Public routes (/health, /auth/token) vs JWT-protected routes (/api/v1/*).
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matiasleandrokruk/beacon/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/beacon/internal/api/middleware"
	domainauth "github.com/matiasleandrokruk/beacon/internal/domain/auth"
	domainsession "github.com/matiasleandrokruk/beacon/internal/domain/session"
	domaintool "github.com/matiasleandrokruk/beacon/internal/domain/tool"
	"github.com/matiasleandrokruk/beacon/internal/infra/config"
	"github.com/matiasleandrokruk/beacon/internal/infra/eventbus"
	"github.com/matiasleandrokruk/beacon/internal/infra/llm"
)

// NewRouter creates and configures a new chi router with all routes.
// registry holds the executable tools (builtins plus any proxied MCP tools);
// nil means builtins only. provider is the upstream LLM adapter; nil means a
// fresh Anthropic adapter built from cfg.
func NewRouter(db *sql.DB, cfg config.Config, registry *domaintool.Registry, provider llm.Provider) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Auth endpoints — public, no JWT required
	authHandler := handlers.NewAuthHandler(domainauth.NewService(db))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.IssueToken) // POST /auth/token
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	// All /api/v1/* routes require a valid Bearer JWT token.
	// AuthMiddleware validates the token and injects ClientID into context.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		// Shared app services for protected APIs
		bus := eventbus.New()
		if registry == nil {
			registry = domaintool.NewRegistry()
			_ = domaintool.RegisterBuiltins(registry)
		}
		if provider == nil {
			provider = llm.NewAnthropicProvider(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamModel, nil)
		}
		invocationLog := domaintool.NewInvocationLog(db)
		runner := domaintool.NewRunner(registry, invocationLog, bus)
		sessionService := domainsession.NewService(db, cfg.MCPBetaFlag)
		go sessionService.StartActivityLoop(context.Background(), bus)

		sessionHandler := handlers.NewSessionHandler(sessionService)
		toolHandler := handlers.NewToolHandler(runner, registry, invocationLog, sessionService)
		usageHandler := handlers.NewUsageHandler(sessionService)
		chatHandler := handlers.NewChatHandler(provider, sessionService)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)  // POST /api/v1/sessions
			r.Get("/", sessionHandler.ListSessions)    // GET /api/v1/sessions
			r.Get("/{id}", sessionHandler.GetSession)  // GET /api/v1/sessions/{id}
			r.Post("/{id}/save", sessionHandler.SaveSession)
			r.Post("/{id}/resume", sessionHandler.ResumeSession)
			r.Post("/{id}/tools/execute", toolHandler.ExecuteTool)
			r.Get("/{id}/tools/invocations", toolHandler.ListInvocations)
			r.Get("/{id}/usage", usageHandler.GetUsage)
			r.Post("/{id}/chat", chatHandler.Chat)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", toolHandler.ListTools) // GET /api/v1/tools
		})
	})

	return r
}
