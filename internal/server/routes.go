package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/no-panic/callserver/internal/config"
	"github.com/no-panic/callserver/internal/signaling"
)

// statusTimeout bounds how long /status waits for the hub loop.
const statusTimeout = 2 * time.Second

// NewRouter wires every HTTP endpoint of the call server.
func NewRouter(hub *signaling.Hub, cfg *config.Config, logger *slog.Logger) http.Handler {
	logger = logger.With(slog.String("component", "server"))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthCheckHandler)
	r.Get("/status", statusHandler(hub))
	r.Get("/ice-servers", iceServersHandler(cfg))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/ws", ServeWs(hub, cfg, logger))

	return r
}

// ServeWs returns an http.HandlerFunc that upgrades to a WebSocket and hands
// the new client to the hub.
func ServeWs(hub *signaling.Hub, cfg *config.Config, logger *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024, // 64 KB
		WriteBufferSize: 64 * 1024, // 64 KB
		Subprotocols:    signaling.Subprotocols,
		CheckOrigin:     originChecker(cfg),
	}
	clientOpts := signaling.ClientOptions{
		SendBuffer: cfg.SendBuffer,
		EventRate:  cfg.EventRate,
		EventBurst: cfg.EventBurst,
		Logger:     logger,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			logger.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}

		client := signaling.NewClient(hub, conn, clientOpts)
		if err := hub.Register(client); err != nil {
			logger.Warn("hub unavailable, closing connection", slog.Any("error", err))
			conn.Close()
			return
		}
		logger.Info("client connected",
			slog.String("conn", string(client.ID)),
			slog.String("remote", conn.RemoteAddr().String()),
			slog.String("codec", conn.Subprotocol()),
		)

		go client.WritePump()
		go client.ReadPump()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

func statusHandler(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), statusTimeout)
		defer cancel()

		stats, err := hub.Stats(ctx)
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, stats)
	}
}

func iceServersHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, cfg.ICEServers)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", slog.Any("error", err))
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from an allowed origin.
func originChecker(cfg *config.Config) func(r *http.Request) bool {
	if cfg.AllowsAnyOrigin() {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.AllowedOrigins, origin)
	}
}

// requestLogger logs plain HTTP requests. WebSocket upgrades are logged by
// ServeWs once the client has an id.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/ws" {
				logger.Debug("incoming HTTP request",
					slog.String("method", r.Method),
					slog.String("uri", r.RequestURI),
					slog.String("ip", r.RemoteAddr),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}
