package naming

import (
	"dfs.io/dfs"
	"dfs.io/path"
)

// Server adapts a Tree to the wire-level dfs.Service and
// dfs.Registration interfaces, so that transport listeners have a
// single object to dispatch RPCs against.
type Server struct {
	tree *Tree
}

var _ dfs.Service = (*Server)(nil)
var _ dfs.Registration = (*Server)(nil)

// NewServer returns a Server backed by tree.
func NewServer(tree *Tree) *Server {
	return &Server{tree: tree}
}

func (s *Server) Lock(p path.Path, exclusive bool) error   { return s.tree.Lock(p, exclusive) }
func (s *Server) Unlock(p path.Path, exclusive bool) error { return s.tree.Unlock(p, exclusive) }
func (s *Server) IsDirectory(p path.Path) (bool, error)    { return s.tree.IsDirectory(p) }
func (s *Server) List(p path.Path) ([]string, error)       { return s.tree.List(p) }
func (s *Server) CreateFile(p path.Path) (bool, error)     { return s.tree.CreateFile(p) }
func (s *Server) CreateDirectory(p path.Path) (bool, error) {
	return s.tree.CreateDirectory(p)
}
func (s *Server) Delete(p path.Path) (bool, error)                { return s.tree.Delete(p) }
func (s *Server) GetStorage(p path.Path) (dfs.Storage, error)     { return s.tree.GetStorage(p) }

// Register implements dfs.Registration.
func (s *Server) Register(client dfs.Storage, command dfs.Command, declaredFiles []path.Path) ([]path.Path, error) {
	return s.tree.Register(client, command, declaredFiles)
}
