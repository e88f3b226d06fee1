// Package naming implements the naming server's metadata engine: the
// hierarchical path tree with per-node locking (spec.md §4.4), the
// replication policy, and the registration coordinator (spec.md §4.5).
package naming

import (
	"sync"

	"dfs.io/dfs"
	"dfs.io/errors"
)

// Registry holds the naming server's two parallel, append-only lists of
// client and command stubs (spec.md §3 "Storage registry"), indexed by
// dfs.ReplicaIndex. Appends happen only under the root's exclusive lock
// (enforced by Register); indexed reads elsewhere need no further
// guarding beyond the RWMutex used here to make slice growth itself race
// free, since once written an entry is never replaced.
type Registry struct {
	mu       sync.RWMutex
	clients  []dfs.Storage
	commands []dfs.Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append adds a new client/command stub pair and returns its replica index.
func (r *Registry) Append(client dfs.Storage, command dfs.Command) dfs.ReplicaIndex {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := dfs.ReplicaIndex(len(r.clients))
	r.clients = append(r.clients, client)
	r.commands = append(r.commands, command)
	return idx
}

// Client returns the client stub at idx.
func (r *Registry) Client(idx dfs.ReplicaIndex) (dfs.Storage, error) {
	const op = "naming.Registry.Client"
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx < 0 || int(idx) >= len(r.clients) {
		return nil, errors.E(op, errors.State, errors.Str("replica index out of range"))
	}
	return r.clients[idx], nil
}

// Command returns the command stub at idx.
func (r *Registry) Command(idx dfs.ReplicaIndex) (dfs.Command, error) {
	const op = "naming.Registry.Command"
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx < 0 || int(idx) >= len(r.commands) {
		return nil, errors.E(op, errors.State, errors.Str("replica index out of range"))
	}
	return r.commands[idx], nil
}

// Count returns the number of registered storage servers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Contains reports whether client or command is already registered.
func (r *Registry) Contains(client dfs.Storage, command dfs.Command) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.clients {
		if r.clients[i] == client || r.commands[i] == command {
			return true
		}
	}
	return false
}
