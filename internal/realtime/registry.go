package realtime

import "sync"

// Registry maps a user identity to its single live connection. The lock
// makes the check-then-evict-then-store sequence in Register one critical
// section, so two concurrent registrations for the same user cannot both
// survive.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Client),
	}
}

// Register binds userID to client and returns the superseded connection if
// a different one was bound before. The caller notifies and closes the
// returned client; the mapping is already overwritten when Register returns.
func (r *Registry) Register(userID string, client *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.sessions[userID]
	if old == client {
		return nil
	}
	r.sessions[userID] = client
	return old
}

// Unregister removes whichever entry points at client. A linear scan is
// fine here; registrations are bounded by the connection ceiling.
func (r *Registry) Unregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, c := range r.sessions {
		if c == client {
			delete(r.sessions, userID)
			return
		}
	}
}

// Bound returns the connection currently bound to userID.
func (r *Registry) Bound(userID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.sessions[userID]
	return client, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
