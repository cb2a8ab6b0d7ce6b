package receipt

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// SessionCookieName is the cookie that carries the session ID
const SessionCookieName = "receipt_session"

type sessionKey struct{}

// Server handles HTTP requests for the receipt generator
type Server struct {
	service   *Service
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		service:   service,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Receipt Maker"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// withSession loads the caller's session from its cookie, starting a new
// one when the cookie is missing or names an unknown session
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
			_, err := s.service.GetSession(c.Value)
			switch {
			case err == nil:
				next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, c.Value)))
				return
			case !errors.Is(err, ErrNotFound):
				slog.Error("Error loading session", "session", c.Value, "error", err)
				corsError(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		session, err := s.service.NewSession()
		if err != nil {
			slog.Error("Error creating session", "error", err)
			corsError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session.ID)))
	})
}

// sessionID returns the session ID stored by withSession
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	// Static files
	s.mux.HandleFunc("GET /static/app.css", s.requireAuth(s.handleStaticCSS))
	s.mux.HandleFunc("GET /static/app.js", s.requireAuth(s.handleStaticJS))

	// API endpoints - template
	s.mux.HandleFunc("GET /api/template", s.withSession(s.handleGetTemplate))
	s.mux.HandleFunc("POST /api/template", s.withSession(s.handleUploadTemplate))

	// API endpoints - records
	s.mux.HandleFunc("POST /api/records/parse", s.withSession(s.handleParseRecords))
	s.mux.HandleFunc("POST /api/records/scan", s.withSession(s.handleScanRecords))
	s.mux.HandleFunc("GET /api/records", s.withSession(s.handleListRecords))
	s.mux.HandleFunc("PUT /api/records", s.withSession(s.handleUpdateRecords))
	s.mux.HandleFunc("DELETE /api/records", s.withSession(s.handleClearRecords))

	// API endpoints - receipts
	s.mux.HandleFunc("POST /api/receipts/bulk", s.withSession(s.handleRenderBulk))
	s.mux.HandleFunc("POST /api/receipts", s.withSession(s.handleRenderSingle))

	// Static HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /index.html", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("GET /", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.corsMiddleware(s.mux))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
