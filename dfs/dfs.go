// Package dfs defines the shared vocabulary of the distributed
// filesystem: the wire-level interfaces exposed by the naming server and
// by each storage server, and the small value types used to address them.
//
// These interfaces are the external, black-box contract spec.md §6
// describes; concrete implementations live in dfs.io/naming,
// dfs.io/storage, dfs.io/storageserver, and their transport adapters in
// dfs.io/transport.
package dfs

import "dfs.io/path"

// NetAddr is the network address of a service, interpreted by a
// transport's Dial to connect to it.
type NetAddr string

// ReplicaIndex identifies a registered storage server; it is an index
// into both the client-stub and command-stub registries held by the
// naming server.
type ReplicaIndex int

// Storage is the client-facing, data-plane interface of a storage
// server (spec.md §6 "Storage").
type Storage interface {
	// Size returns the byte length of the file at path.
	Size(p path.Path) (int64, error)
	// Read returns exactly length bytes starting at offset.
	Read(p path.Path, offset, length int64) ([]byte, error)
	// Write writes data at offset, extending the file if necessary.
	Write(p path.Path, offset int64, data []byte) error
}

// Command is the naming-facing, control-plane interface of a storage
// server (spec.md §6 "Command").
type Command interface {
	// Create creates an empty regular file, creating missing ancestor
	// directories as needed.
	Create(p path.Path) (bool, error)
	// Delete recursively removes the target and prunes newly empty
	// ancestor directories.
	Delete(p path.Path) (bool, error)
	// Copy pulls the file named p from source, replacing any local copy.
	Copy(p path.Path, source Storage) (bool, error)
}

// Service is the naming server's client-facing interface (spec.md §6
// "Service").
type Service interface {
	Lock(p path.Path, exclusive bool) error
	Unlock(p path.Path, exclusive bool) error
	IsDirectory(p path.Path) (bool, error)
	List(p path.Path) ([]string, error)
	CreateFile(p path.Path) (bool, error)
	CreateDirectory(p path.Path) (bool, error)
	Delete(p path.Path) (bool, error)
	GetStorage(p path.Path) (Storage, error)
}

// Registration is the naming server's storage-facing interface (spec.md
// §6 "Registration").
type Registration interface {
	// Register onboards a storage server, returning the subset of
	// declaredFiles that already existed under a different replica
	// (and so must be deleted locally by the caller).
	Register(client Storage, command Command, declaredFiles []path.Path) ([]path.Path, error)
}
