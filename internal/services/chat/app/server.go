// Package server wires the chat relay runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maisonhq/maison/internal/auth"
	"github.com/maisonhq/maison/internal/platform/config"
	chatrest "github.com/maisonhq/maison/internal/services/chat/api/rest"
	historysqlite "github.com/maisonhq/maison/internal/services/chat/history/sqlite"
	"github.com/maisonhq/maison/internal/services/chat/upstream"
)

type serverEnv struct {
	DBPath      string `env:"MAISON_CHAT_DB_PATH"`
	UpstreamURL string `env:"MAISON_CHAT_UPSTREAM_URL"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "chat.db")
	}
	return cfg
}

// Server hosts the chat REST API and history storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	cache      *historysqlite.Cache
}

// New creates a configured chat server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured chat server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	authCfg, err := auth.LoadConfigFromEnv(time.Now)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	env := loadServerEnv()
	assistant, err := upstream.NewClient(env.UpstreamURL)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	cache, err := openHistoryCache(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/api/", chatrest.NewHandler(cache, assistant).Mux(authCfg))

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cache: cache,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a chat server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("chat server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases chat server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Printf("close chat history cache: %v", err)
		}
	}
}

func openHistoryCache(path string) (*historysqlite.Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	cache, err := historysqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chat history cache: %w", err)
	}
	return cache, nil
}
