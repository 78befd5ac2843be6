// Package health serves the liveness endpoints hosting platforms poll.
package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// BotStatus reports whether the Discord session is ready. A nil BotStatus
// means the bot is not running.
type BotStatus interface {
	Connected() bool
}

// Report is the body of GET /health.
type Report struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	BotStatus string  `json:"bot_status"`
}

type Server struct {
	addr    string
	started time.Time
	bot     BotStatus
	log     *zap.Logger
	now     func() time.Time
}

func NewServer(addr string, bot BotStatus, log *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		started: time.Now(),
		bot:     bot,
		log:     log,
		now:     time.Now,
	}
}

func (s *Server) report() Report {
	status := StatusDisconnected
	if s.bot != nil && s.bot.Connected() {
		status = StatusConnected
	}
	now := s.now()
	return Report{
		Status:    "healthy",
		Uptime:    now.Sub(s.started).Seconds(),
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		BotStatus: status,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RealIP,
		requestLogger(s.log),
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(s.report()); err != nil {
			s.log.Warn("Failed to write health report", zap.Error(err))
		}
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(version.AppName + " is running! 👻"))
	})
	return r
}

// Run listens until ctx is done, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("Shutting down health server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("Health check server running", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
