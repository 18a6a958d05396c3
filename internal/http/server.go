package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"chitieu/internal/chat"
	applog "chitieu/internal/log"
	"chitieu/internal/middleware/ratelimit"
	"chitieu/internal/report"
	appweb "chitieu/web"
)

// ChatHandler runs one turn of the expense dialogue.
type ChatHandler interface {
	Handle(ctx context.Context, sessionID, userID, message string) (chat.Reply, error)
}

// ReportBuilder assembles the monthly report.
type ReportBuilder interface {
	Build(ctx context.Context, userID string, year, month int, now time.Time) (report.Report, error)
}

// Pinger checks storage connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the collaborators the server routes to.
type Deps struct {
	Chat       ChatHandler
	Reports    ReportBuilder
	DB         Pinger
	Limiter    *ratelimit.Limiter
	Logger     *applog.Logger
	UserID     string
	SessionTTL time.Duration
	Now        func() time.Time
}

type Server struct {
	http.Server
	templates  *template.Template
	chat       ChatHandler
	reports    ReportBuilder
	db         Pinger
	limiter    *ratelimit.Limiter
	logger     *applog.Logger
	userID     string
	sessionTTL time.Duration
	now        func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		chat:       deps.Chat,
		reports:    deps.Reports,
		db:         deps.DB,
		limiter:    deps.Limiter,
		logger:     logger.WithComponent(applog.ComponentHTTP),
		userID:     deps.UserID,
		sessionTTL: deps.SessionTTL,
		now:        now,
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("POST /api/chat", s.rateLimited(http.HandlerFunc(s.handleChat)))
	mux.HandleFunc("GET /api/report", s.handleReport)

	var handler http.Handler = mux
	handler = s.withSecurityHeaders(handler)
	handler = applog.RequestIDMiddleware(requestIDFromContext)(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = s.withRequestID(handler)
	s.Handler = handler

	return s
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})(next)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type requestIDKey struct{}

func requestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// withRequestID tags each request with an ID, echoes it in X-Request-ID and
// logs start and completion.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		clientIP := extractClientIP(r)
		s.logger.DebugContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		fields := applog.NewFields().
			WithHTTPResponse(r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds())
		fields[applog.FieldRequestID] = requestID
		fields[applog.FieldClientIP] = clientIP
		s.logger.InfoContext(ctx, "Request completed", fields.ToSlice()...)
	})
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
