// Package httpapi exposes the public REST surface: auth endpoints under
// /api/Auth and ticket endpoints under /api/TicketForm.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesadesk/ticketdesk/internal/logging"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
}

// New wires the routers with the given providers. The verifier must share
// key and issuer settings with the auth provider minting the tokens.
func New(addr string, auth AuthProvider, tickets TicketProvider, reports ReportProvider,
	verifier tokenVerifier, logger logging.Logger) *Server {

	requireAuth := RequireAuth(verifier)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Route("/api/Auth", func(r chi.Router) {
		AuthRouter(r, auth, requireAuth)
	})
	router.Route("/api/TicketForm", func(r chi.Router) {
		TicketRouter(r, tickets, reports, logger, requireAuth)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
	}
}

// Router exposes the chi router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
