package server

import (
	"context"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"mafia-server/internal/config"
	"mafia-server/internal/store"
)

// Server wires the coordination core together: state store, session
// manager, lobby manager, game engine, notification gateway and the
// websocket broker. Everything is in-memory; restarting loses all state.
type Server struct {
	cfg      config.ServerConfig
	store    *store.Store
	broker   *Broker
	notifier *Notifier
	sessions *SessionManager
	lobbies  *LobbyManager
	engine   *GameEngine
}

func NewServer() (*Server, *http.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	srv := newServer(cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return srv, httpServer, nil
}

func newServer(cfg config.ServerConfig) *Server {
	st := store.New()
	locks := newLobbyLocks()
	broker := NewBroker()
	notifier := NewNotifier(broker)

	sessions := NewSessionManager(st, locks)
	lobbies := NewLobbyManager(st, sessions, notifier, locks, cfg.LobbyMaxPlayers)
	engine := NewGameEngine(st, notifier, locks)
	sessions.wire(lobbies, engine, broker)

	return &Server{
		cfg:      cfg,
		store:    st,
		broker:   broker,
		notifier: notifier,
		sessions: sessions,
		lobbies:  lobbies,
		engine:   engine,
	}
}

// Shutdown closes every live websocket. There is nothing to persist.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("closing websocket connections")
	s.broker.CloseAll("server shutting down")
	return nil
}
