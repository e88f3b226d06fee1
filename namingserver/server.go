// Package namingserver wires the naming server's metadata engine
// (dfs.io/naming) to the RPC transport, giving the cmd/namingserver
// binary a single Start/Stop lifecycle, mirroring storageserver's shape.
package namingserver

import (
	"dfs.io/dfs"
	"dfs.io/errors"
	"dfs.io/log"
	"dfs.io/naming"
	"dfs.io/transport"
)

// Server is a naming server: the in-memory tree plus the RPC listener
// exposing its Service and Registration endpoints.
type Server struct {
	Tree *naming.Tree

	service  *naming.Server
	listener *transport.Listener
	started  bool
}

// New returns an empty naming server.
func New() *Server {
	registry := naming.NewRegistry()
	tree := naming.NewTree(registry)
	return &Server{Tree: tree, service: naming.NewServer(tree)}
}

// Start starts the naming server's client-facing Service endpoint and
// storage-facing Registration endpoint bound to addr.
func (s *Server) Start(addr string) error {
	const op = "namingserver.Start"
	if s.started {
		return errors.E(op, errors.Invalid, errors.Str("already started"))
	}
	dialStorage := func(a dfs.NetAddr) (dfs.Storage, error) { return transport.DialStorage(a) }
	dialCommand := func(a dfs.NetAddr) (dfs.Command, error) { return transport.DialCommand(a) }
	ln, err := transport.ServeNaming(addr, s.service, s.service, dialStorage, dialCommand)
	if err != nil {
		return errors.E(op, err)
	}
	s.listener = ln
	s.started = true
	log.Info.Printf("namingserver: started at %s", ln.Addr())
	return nil
}

// Addr returns the address the naming server is listening on.
func (s *Server) Addr() dfs.NetAddr { return s.listener.Addr() }

// Service returns the naming server's dfs.Service implementation,
// suitable for an in-process dfs.io/client.Client that wants to avoid a
// redundant network hop to the server it is already embedded with.
func (s *Server) Service() dfs.Service { return s.service }

// Stop stops the RPC listener. The server is not restartable after Stop.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
}
