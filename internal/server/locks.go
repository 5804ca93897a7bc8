package server

import "sync"

// lobbyLocks provides one mutex per lobby id so membership, role and
// phase mutations on the same lobby never interleave, while different
// lobbies proceed fully in parallel. Critical sections stay short: state
// mutation and payload composition only, never transport writes.
type lobbyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLobbyLocks() *lobbyLocks {
	return &lobbyLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the lobby's mutex and returns its unlock func.
func (l *lobbyLocks) acquire(lobbyID string) func() {
	l.mu.Lock()
	mu, ok := l.locks[lobbyID]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[lobbyID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
