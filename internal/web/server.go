package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/journal"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the Histofy web UI.
func NewServer(jc *journal.Collection, cfg *config.Config, logger *zap.Logger, version, bind string, port int) *http.Server {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		logger.Fatal("failed to create template sub-FS", zap.Error(err))
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		logger.Fatal("failed to create static sub-FS", zap.Error(err))
	}

	renderer := NewRenderer(templateSub, version, logger)

	h := &Handlers{
		journal:  jc,
		cfg:      cfg,
		renderer: renderer,
		logger:   logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/journals", http.StatusFound)
	})
	mux.HandleFunc("GET /journals", h.HandleList)
	mux.HandleFunc("POST /journals", h.HandleAdd)
	mux.HandleFunc("GET /journals/search", h.HandleSearch)
	mux.HandleFunc("GET /journals/{id}", h.HandleDetail)
	mux.HandleFunc("POST /journals/{id}/favorite", h.HandleFavorite)
	mux.HandleFunc("POST /journals/{id}/remove", h.HandleRemove)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("Histofy UI running", zap.String("addr", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
