package server

import (
	"encoding/json"
	"sync"

	"mafia-server/internal/config"
	"mafia-server/internal/store"
)

// fakePublisher records everything the gateway publishes so tests can
// assert on destinations, envelope types and payloads without a live
// websocket.
type fakePublisher struct {
	mu     sync.Mutex
	frames []publishedFrame
}

type publishedFrame struct {
	Destination string
	Type        MessageType
	Data        json.RawMessage
}

func (f *fakePublisher) Publish(destination string, frame []byte) {
	var env struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(frame, &env)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, publishedFrame{
		Destination: destination,
		Type:        env.Type,
		Data:        env.Data,
	})
}

func (f *fakePublisher) all() []publishedFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedFrame(nil), f.frames...)
}

func (f *fakePublisher) to(destination string) []publishedFrame {
	var out []publishedFrame
	for _, fr := range f.all() {
		if fr.Destination == destination {
			out = append(out, fr)
		}
	}
	return out
}

func (f *fakePublisher) countType(destination string, msgType MessageType) int {
	n := 0
	for _, fr := range f.to(destination) {
		if fr.Type == msgType {
			n++
		}
	}
	return n
}

func (f *fakePublisher) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

type testCore struct {
	store    *store.Store
	pub      *fakePublisher
	locks    *lobbyLocks
	sessions *SessionManager
	lobbies  *LobbyManager
	engine   *GameEngine
}

func newTestCore() *testCore {
	st := store.New()
	locks := newLobbyLocks()
	pub := &fakePublisher{}
	notifier := NewNotifier(pub)

	sessions := NewSessionManager(st, locks)
	lobbies := NewLobbyManager(st, sessions, notifier, locks, 20)
	engine := NewGameEngine(st, notifier, locks)
	sessions.wire(lobbies, engine, nil)

	return &testCore{
		store:    st,
		pub:      pub,
		locks:    locks,
		sessions: sessions,
		lobbies:  lobbies,
		engine:   engine,
	}
}

func newTestServer() *Server {
	srv := newServer(config.ServerConfig{
		HTTPAddr:        ":0",
		LobbyMaxPlayers: 20,
		AllowedOrigins:  []string{"*"},
	})
	return srv
}
