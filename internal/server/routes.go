package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"mafia-server/internal/game"
	"mafia-server/internal/store"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.corsMiddleware)

	r.Get("/health", s.healthHandler)
	r.Route("/api/lobby", func(r chi.Router) {
		r.Post("/create", s.handleCreateLobby)
		r.Post("/join", s.handleJoinLobby)
		r.Get("/{lobbyID}", s.handleGetLobbyInfo)
	})
	r.Get("/ws", s.websocketHandler)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.lobbies.CreateLobby(req.GodName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	var req JoinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.lobbies.JoinLobby(req.LobbyID, req.PlayerName, req.Token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLobbyInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lobbies.GetLobbyInfo(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// websocketHandler is the connection gateway. The token is validated
// before the upgrade so invalid clients never cost a socket, then the
// three lifecycle calls (open, subscribe via frames, close) are driven
// from here in true per-connection order.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, ok := s.sessions.Authenticate(token); !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		return
	}
	defer sock.Close(websocket.StatusGoingAway, "server closing")

	connID := store.NewID()
	s.broker.AddConn(connID, sock)
	defer func() {
		s.broker.RemoveConn(connID)
		s.sessions.OnConnectionClose(connID)
	}()

	if err := s.sessions.OnConnectionOpen(token, connID); err != nil {
		// Token was revoked between upgrade and open, or the lobby is
		// gone.
		s.sendError(connID, err.Error())
		return
	}

	ctx := r.Context()
	for {
		msgType, data, err := sock.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				log.Debug().Str("conn_id", connID).Err(err).Msg("connection read ended")
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(connID, "invalid JSON")
			continue
		}

		switch msg.Type {
		case "subscribe":
			s.handleSubscribe(connID, msg.Payload)
		case "assign_roles":
			s.handleAssignRoles(connID, msg.Payload)
		case "next_phase":
			s.handleNextPhase(connID, msg.Payload)
		case "finish_game":
			s.handleFinishGame(connID, msg.Payload)
		case "announce":
			s.handleAnnounce(connID, msg.Payload)
		default:
			s.sendError(connID, "unknown message type: "+msg.Type)
		}
	}
}

// handleSubscribe registers the connection on a destination. A
// connection may only subscribe to its own player queue and its own
// lobby's topic; anything else is refused.
func (s *Server) handleSubscribe(connID string, payload json.RawMessage) {
	var req SubscribeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "invalid subscribe payload")
		return
	}

	ref, ok := s.store.GetConn(connID)
	if !ok {
		return
	}

	var kind DestinationKind
	switch req.Destination {
	case PlayerQueue(ref.PlayerID):
		kind = DestinationPlayerQueue
	case LobbyTopic(ref.LobbyID):
		kind = DestinationLobbyTopic
	default:
		s.sendError(connID, ErrBadDestination.Error())
		return
	}

	if !s.broker.Subscribe(connID, req.Destination) {
		return
	}
	s.sessions.OnSubscribed(connID, kind)
}

func (s *Server) handleAssignRoles(connID string, payload json.RawMessage) {
	var req AssignRolesRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "invalid assign_roles payload")
		return
	}

	lobbyID, err := s.requireOwner(connID)
	if err != nil {
		s.sendError(connID, err.Error())
		return
	}

	roleCounts := make(map[game.Role]int, len(req.RoleCounts))
	for name, n := range req.RoleCounts {
		roleCounts[game.Role(strings.ToUpper(name))] = n
	}

	if err := s.engine.AssignRoles(lobbyID, roleCounts); err != nil {
		s.sendError(connID, err.Error())
	}
}

func (s *Server) handleNextPhase(connID string, payload json.RawMessage) {
	var req NextPhaseRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "invalid next_phase payload")
		return
	}

	lobbyID, err := s.requireOwner(connID)
	if err != nil {
		s.sendError(connID, err.Error())
		return
	}

	if err := s.engine.NextPhase(lobbyID, req.Announcement); err != nil {
		s.sendError(connID, err.Error())
	}
}

func (s *Server) handleFinishGame(connID string, payload json.RawMessage) {
	var req NextPhaseRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "invalid finish_game payload")
		return
	}

	lobbyID, err := s.requireOwner(connID)
	if err != nil {
		s.sendError(connID, err.Error())
		return
	}

	if err := s.engine.FinishGame(lobbyID, req.Announcement); err != nil {
		s.sendError(connID, err.Error())
	}
}

func (s *Server) handleAnnounce(connID string, payload json.RawMessage) {
	var req AnnounceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connID, "invalid announce payload")
		return
	}

	lobbyID, err := s.requireOwner(connID)
	if err != nil {
		s.sendError(connID, err.Error())
		return
	}

	if err := s.engine.Announce(lobbyID, req.Message); err != nil {
		s.sendError(connID, err.Error())
	}
}

// requireOwner resolves the connection to its lobby and verifies the
// sender is that lobby's God.
func (s *Server) requireOwner(connID string) (string, error) {
	ref, ok := s.store.GetConn(connID)
	if !ok {
		return "", ErrUnauthorized
	}
	lobby, ok := s.store.GetLobby(ref.LobbyID)
	if !ok {
		return "", ErrLobbyNotFound
	}
	if ref.PlayerID != lobby.OwnerID {
		return "", ErrNotOwner
	}
	return ref.LobbyID, nil
}

func (s *Server) sendError(connID, message string) {
	frame, err := json.Marshal(Envelope{Type: MsgError, Data: ErrorData{Message: message}})
	if err != nil {
		return
	}
	s.broker.SendTo(connID, frame)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLobbyNotFound), errors.Is(err, ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLobbyFull), errors.Is(err, ErrNameInvalid), errors.Is(err, ErrNameTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
