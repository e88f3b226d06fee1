// Package storageserver implements the storage server's startup and
// shutdown lifecycle (spec.md §4.6): starting its RPC endpoints,
// registering with the naming server, and reconciling the files it
// already holds locally against the naming tree's view of the world.
package storageserver

import (
	"dfs.io/dfs"
	"dfs.io/errors"
	"dfs.io/log"
	"dfs.io/path"
	"dfs.io/storage"
	"dfs.io/transport"
)

// Server is a single storage server: a file engine rooted at a local
// directory, plus the RPC listener that exposes it and the registration
// state tying it to a naming server.
type Server struct {
	root *storage.Root

	listener *transport.Listener
	reg      *transport.RegistrationClient

	started bool

	// Stopped is invoked after Stop finishes; the default is a no-op.
	// Overridable per upspin.io's pattern of hook fields rather than
	// subclassing.
	Stopped func()
}

// New returns a storage server rooted at localDir. The directory must
// already exist.
func New(localDir string) (*Server, error) {
	const op = "storageserver.New"
	root, err := storage.New(localDir)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return &Server{root: root, Stopped: func() {}}, nil
}

// Start starts the storage server's client-facing Storage endpoint and
// naming-facing Command endpoint bound to addr, then registers with the
// naming server at namingAddr: it enumerates every file under the local
// root, calls Register, and deletes every path Register reports as a
// duplicate so that exactly one replica of each file remains after
// registration (spec.md §4.6).
func (s *Server) Start(addr string, namingAddr dfs.NetAddr) error {
	const op = "storageserver.Start"
	if s.started {
		return errors.E(op, errors.Invalid, errors.Str("already started"))
	}

	dialStorage := func(a dfs.NetAddr) (dfs.Storage, error) { return transport.DialStorage(a) }
	ln, err := transport.ServeStorage(addr, s.root, s.root, dialStorage)
	if err != nil {
		return errors.E(op, err)
	}
	s.listener = ln

	clientStub, err := transport.DialStorage(ln.Addr())
	if err != nil {
		return errors.E(op, err)
	}
	commandStub, err := transport.DialCommand(ln.Addr())
	if err != nil {
		return errors.E(op, err)
	}

	reg, err := transport.DialRegistration(namingAddr)
	if err != nil {
		return errors.E(op, err)
	}
	s.reg = reg

	var declared []path.Path
	if err := s.root.Walk(func(p path.Path) error {
		declared = append(declared, p)
		return nil
	}); err != nil {
		return errors.E(op, err)
	}

	duplicates, err := reg.Register(clientStub, commandStub, declared)
	if err != nil {
		return errors.E(op, err)
	}
	for _, p := range duplicates {
		if ok, err := s.root.Delete(p); err != nil || !ok {
			log.Error.Printf("storageserver.Start: failed to delete duplicate %s: %v", p, err)
		}
	}

	s.started = true
	log.Info.Printf("storageserver: started at %s, registered with naming server at %s (%d duplicates pruned)",
		ln.Addr(), namingAddr, len(duplicates))
	return nil
}

// Stop closes the RPC listener and the registration connection, then
// invokes the Stopped hook. The server is not restartable after Stop.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	if s.reg != nil {
		s.reg.Close()
	}
	s.Stopped()
}
