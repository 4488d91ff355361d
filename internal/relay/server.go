package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nostr-rly/relay/internal/bus"
)

// RelayInfo is the NIP-11 relay information document.
type RelayInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PubKey        string   `json:"pubkey"`
	Software      string   `json:"software"`
	Version       string   `json:"version"`
	SupportedNIPs []int    `json:"supported_nips"`
}

// Server is the HTTP/WebSocket surface in front of Handler + Bus: the relay
// upgrade at "/", a "/health" text endpoint, and NIP-11 content negotiation
// on "/".
type Server struct {
	Addr      string
	Handler   *Handler
	Bus       *bus.Bus
	Info      RelayInfo
	Log       zerolog.Logger
	upgrader  websocket.Upgrader
	http      *http.Server
}

// NewServer builds the router and binds it to Addr.
func NewServer(addr string, handler *Handler, b *bus.Bus, info RelayInfo, log zerolog.Logger) *Server {
	s := &Server{
		Addr:    addr,
		Handler: handler,
		Bus:     b,
		Info:    info,
		Log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
	router.Get("/health", s.handleHealth)
	router.Get("/", s.handleRoot)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP/WebSocket traffic until the server is
// shut down.
func (s *Server) ListenAndServe() error {
	s.Log.Info().Str("addr", s.Addr).Msg("relay listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops accepting new connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("OK"))
}

// handleRoot serves the NIP-11 relay info document for clients that ask
// for it, and upgrades everything else to a WebSocket connection.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "application/nostr+json" {
		w.Header().Set("Content-Type", "application/nostr+json")
		json.NewEncoder(w).Encode(s.Info)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := NewConnection(conn, s.Handler, s.Bus, s.Log)
	go c.Run()
}
