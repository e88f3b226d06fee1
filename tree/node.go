// Package tree implements the FS tree node: a directory-or-file variant
// with its own reader/writer lock, used as the building block of the
// naming server's in-memory path tree.
package tree

import "dfs.io/errors"

// Kind discriminates the two shapes an FSNode can take. It is the single
// source of truth for which payload is valid; the payload fields
// themselves are never used to infer kind, to avoid the silent kind
// confusion a nil-sentinel design invites.
type Kind int

const (
	// Directory nodes own a mapping from child component name to child node.
	Directory Kind = iota
	// File nodes own an ordered, non-empty list of replica indices and a
	// read counter used to trigger replication.
	File
)

// Node is a single entry in the path tree: either a directory or a file.
type Node struct {
	kind Kind
	lock *Lock

	dir  *dirPayload  // valid iff kind == Directory
	file *filePayload // valid iff kind == File
}

type dirPayload struct {
	children map[string]*Node
}

type filePayload struct {
	// replicas holds the indices of storage servers holding a copy of
	// this file. replicas[0] is always the primary.
	replicas []int
	// reads counts consecutive shared locks since the last reset.
	reads int
}

// NewDirectory returns a new, empty directory node.
func NewDirectory() *Node {
	return &Node{
		kind: Directory,
		lock: NewLock(),
		dir:  &dirPayload{children: make(map[string]*Node)},
	}
}

// NewFile returns a new file node whose sole replica is primary.
func NewFile(primary int) *Node {
	return &Node{
		kind: File,
		lock: NewLock(),
		file: &filePayload{replicas: []int{primary}},
	}
}

// Kind reports whether the node is a Directory or a File.
func (n *Node) Kind() Kind { return n.kind }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.kind == Directory }

// Lock returns the node's own lock, used both for the client-visible
// lock/unlock protocol and, transiently, for safe concurrent access to a
// directory's children map.
func (n *Node) Lock() *Lock { return n.lock }

// Find returns the named child of a directory node. It fails with
// errors.NotExist if name is absent, or if n is not a directory.
func (n *Node) Find(name string) (*Node, error) {
	const op = "tree.Find"
	if n.kind != Directory {
		return nil, errors.E(op, name, errors.NotExist, errors.Str("not a directory"))
	}
	var child *Node
	n.lock.RLockTransient(func() {
		child = n.dir.children[name]
	})
	if child == nil {
		return nil, errors.E(op, name, errors.NotExist)
	}
	return child, nil
}

// PutChild installs child under name in a directory node, overwriting any
// existing entry. The caller must hold n's lock exclusively.
func (n *Node) PutChild(name string, child *Node) {
	n.dir.children[name] = child
}

// RemoveChild removes name from a directory node. The caller must hold
// n's lock exclusively.
func (n *Node) RemoveChild(name string) {
	delete(n.dir.children, name)
}

// HasChild reports whether name exists in a directory node. The caller
// must hold n's lock at least in shared mode.
func (n *Node) HasChild(name string) bool {
	_, ok := n.dir.children[name]
	return ok
}

// ChildNames returns the names of a directory node's children in
// unspecified order. The caller must hold n's lock at least in shared mode.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.dir.children))
	for name := range n.dir.children {
		names = append(names, name)
	}
	return names
}

// Children returns a directory node's children map directly, for
// callers (e.g. naming's Register and Delete) that already hold the appropriate
// lock. The caller must hold n's lock at least in shared mode.
func (n *Node) Children() map[string]*Node {
	return n.dir.children
}

// Replicas returns a file node's current replica list. The caller must
// hold n's lock.
func (n *Node) Replicas() []int {
	return n.file.replicas
}

// Primary returns a file node's primary replica index.
func (n *Node) Primary() int {
	return n.file.replicas[0]
}

// SetReplicas overwrites a file node's replica list. The caller must hold
// n's lock exclusively.
func (n *Node) SetReplicas(replicas []int) {
	n.file.replicas = replicas
}

// AppendReplica appends a new replica index. The caller must hold n's
// lock (shared is sufficient since only the read counter and replica
// slice, both owned by this node's own locking path, are touched).
func (n *Node) AppendReplica(index int) {
	n.file.replicas = append(n.file.replicas, index)
}

// ReadCount returns a file node's current read counter.
func (n *Node) ReadCount() int {
	return n.file.reads
}

// IncrementReadCount increments and returns the new read counter value.
func (n *Node) IncrementReadCount() int {
	n.file.reads++
	return n.file.reads
}

// ResetReadCount zeroes a file node's read counter.
func (n *Node) ResetReadCount() {
	n.file.reads = 0
}

// EachFile invokes visit on every file-node descendant of n (including n
// itself if it is a file), in unspecified order. The caller must hold
// locks sufficient to safely read every directory visited; EachFile
// itself takes no locks beyond the transient ones Find already uses.
func (n *Node) EachFile(visit func(*Node)) {
	if n.kind == File {
		visit(n)
		return
	}
	var children map[string]*Node
	n.lock.RLockTransient(func() {
		children = make(map[string]*Node, len(n.dir.children))
		for name, c := range n.dir.children {
			children[name] = c
		}
	})
	for _, c := range children {
		c.EachFile(visit)
	}
}
