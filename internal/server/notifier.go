package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Publisher delivers an already-encoded frame to every subscriber of a
// destination. The broker implements it for websockets; tests substitute
// a recorder.
type Publisher interface {
	Publish(destination string, frame []byte)
}

// LobbyTopic is the shared broadcast destination for one lobby.
func LobbyTopic(lobbyID string) string {
	return fmt.Sprintf("lobby/%s", lobbyID)
}

// PlayerQueue is the private unicast destination for one player.
func PlayerQueue(playerID string) string {
	return fmt.Sprintf("player/%s", playerID)
}

// Notifier is the single point that turns internal state into outbound
// messages. It wraps every payload in an Envelope and guarantees that
// messages to the same destination go out in the order they were sent.
// No ordering holds across destinations.
type Notifier struct {
	pub Publisher

	mu    sync.Mutex
	dests map[string]*sync.Mutex
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{
		pub:   pub,
		dests: make(map[string]*sync.Mutex),
	}
}

// BroadcastToLobby publishes an envelope on the lobby's shared topic.
func (n *Notifier) BroadcastToLobby(lobbyID string, msgType MessageType, data any) {
	n.send(LobbyTopic(lobbyID), msgType, data)
}

// SendToPlayer publishes an envelope on the player's private queue.
func (n *Notifier) SendToPlayer(playerID string, msgType MessageType, data any) {
	n.send(PlayerQueue(playerID), msgType, data)
}

func (n *Notifier) send(destination string, msgType MessageType, data any) {
	frame, err := json.Marshal(Envelope{Type: msgType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("destination", destination).
			Str("type", string(msgType)).Msg("failed to encode envelope")
		return
	}

	mu := n.destLock(destination)
	mu.Lock()
	defer mu.Unlock()
	n.pub.Publish(destination, frame)
}

func (n *Notifier) destLock(destination string) *sync.Mutex {
	n.mu.Lock()
	defer n.mu.Unlock()
	mu, ok := n.dests[destination]
	if !ok {
		mu = &sync.Mutex{}
		n.dests[destination] = mu
	}
	return mu
}
