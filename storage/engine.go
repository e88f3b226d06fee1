// Package storage implements the per-host file-service engine: create,
// delete-with-pruning, random-access read/write, and inter-server copy
// over a rooted local directory (spec.md §4.2).
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dfs.io/dfs"
	"dfs.io/errors"
	"dfs.io/log"
	"dfs.io/path"
)

// Root is a storage engine rooted at a local directory. All paths passed
// to its methods are interpreted relative to that root. Every operation
// holds the engine's exclusive guard for its duration, serializing all
// local file I/O on this host (spec.md §4.2 Concurrency).
type Root struct {
	root string
	mu   sync.Mutex
}

var _ dfs.Storage = (*Root)(nil)
var _ dfs.Command = (*Root)(nil)

// New returns a storage engine rooted at dir. The directory must already
// exist.
func New(dir string) (*Root, error) {
	const op = "storage.New"
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if !fi.IsDir() {
		return nil, errors.E(op, dir, errors.Invalid, errors.Str("root is not a directory"))
	}
	return &Root{root: dir}, nil
}

// localPath maps a tree path onto a local filesystem path under the root.
func (r *Root) localPath(p path.Path) string {
	return filepath.Join(r.root, filepath.Join(p.Components()...))
}

// Size returns the byte length of the file at p.
func (r *Root) Size(p path.Path) (int64, error) {
	const op = "storage.Size"
	r.mu.Lock()
	defer r.mu.Unlock()
	fi, err := os.Stat(r.localPath(p))
	if err != nil {
		return 0, errors.E(op, p.String(), errors.NotExist, err)
	}
	if fi.IsDir() {
		return 0, errors.E(op, p.String(), errors.NotExist, errors.Str("is a directory"))
	}
	return fi.Size(), nil
}

// Read returns exactly length bytes starting at offset.
func (r *Root) Read(p path.Path, offset, length int64) ([]byte, error) {
	const op = "storage.Read"
	if offset < 0 || length < 0 {
		return nil, errors.E(op, p.String(), errors.OutOfRange)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.localPath(p))
	if err != nil {
		return nil, errors.E(op, p.String(), errors.NotExist, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.E(op, p.String(), errors.IO, err)
	}
	if fi.IsDir() {
		return nil, errors.E(op, p.String(), errors.NotExist, errors.Str("is a directory"))
	}
	if offset+length > fi.Size() {
		return nil, errors.E(op, p.String(), errors.OutOfRange)
	}
	buf := make([]byte, length)
	if length > 0 {
		if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, errors.E(op, p.String(), errors.IO, err)
		}
	}
	return buf, nil
}

// Write writes data at offset, extending the file if necessary.
func (r *Root) Write(p path.Path, offset int64, data []byte) error {
	const op = "storage.Write"
	if offset < 0 {
		return errors.E(op, p.String(), errors.OutOfRange)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	local := r.localPath(p)
	fi, err := os.Stat(local)
	if err != nil {
		return errors.E(op, p.String(), errors.NotExist, err)
	}
	if fi.IsDir() {
		return errors.E(op, p.String(), errors.NotExist, errors.Str("is a directory"))
	}
	f, err := os.OpenFile(local, os.O_WRONLY, 0o644)
	if err != nil {
		return errors.E(op, p.String(), errors.IO, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(data, offset); err != nil {
		return errors.E(op, p.String(), errors.IO, err)
	}
	return nil
}

// Create creates an empty regular file, creating missing ancestor
// directories. It returns false (with no error) if p is the root, if
// ancestor creation fails, or if the file already exists.
func (r *Root) Create(p path.Path) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(p)
}

func (r *Root) create(p path.Path) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	local := r.localPath(p)
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		log.Error.Printf("storage.Create: mkdir ancestors for %s: %v", p, err)
		return false, nil
	}
	f, err := os.OpenFile(local, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		log.Error.Printf("storage.Create: %s: %v", p, err)
		return false, nil
	}
	f.Close()
	return true, nil
}

// Delete recursively removes the target (file or directory subtree),
// then walks upward removing each now-empty ancestor directory up to but
// not including the root. It returns false if p is root or any removal
// fails.
func (r *Root) Delete(p path.Path) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delete(p)
}

func (r *Root) delete(p path.Path) (bool, error) {
	if p.IsRoot() {
		return false, nil
	}
	local := r.localPath(p)
	if err := os.RemoveAll(local); err != nil {
		log.Error.Printf("storage.Delete: %s: %v", p, err)
		return false, nil
	}
	// Prune now-empty ancestor directories, up to but not including root.
	cur := p.Parent()
	for {
		if cur.IsRoot() {
			break
		}
		localDir := r.localPath(cur)
		entries, err := os.ReadDir(localDir)
		if err != nil {
			// Ancestor already gone or unreadable; nothing more to prune.
			break
		}
		if len(entries) > 0 {
			break
		}
		if err := os.Remove(localDir); err != nil {
			log.Error.Printf("storage.Delete: pruning %s: %v", cur, err)
			return false, nil
		}
		cur = cur.Parent()
	}
	return true, nil
}

// Copy pulls the file named p from source, replacing any local copy.
// It queries source's size, removes any local copy, creates a fresh
// file, and writes the fetched bytes at offset 0. It returns false if p
// is root.
func (r *Root) Copy(p path.Path, source dfs.Storage) (bool, error) {
	const op = "storage.Copy"
	if p.IsRoot() {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	size, err := source.Size(p)
	if err != nil {
		return false, errors.E(op, p.String(), errors.Remote, err)
	}
	data, err := source.Read(p, 0, size)
	if err != nil {
		return false, errors.E(op, p.String(), errors.Remote, err)
	}

	// Remove any existing local copy (ignore "doesn't exist").
	_, _ = r.delete(p)
	if ok, err := r.create(p); err != nil {
		return false, errors.E(op, p.String(), err)
	} else if !ok {
		return false, errors.E(op, p.String(), errors.IO, errors.Str("failed to create destination file"))
	}
	if len(data) == 0 {
		return true, nil
	}
	local := r.localPath(p)
	f, err := os.OpenFile(local, os.O_WRONLY, 0o644)
	if err != nil {
		return false, errors.E(op, p.String(), errors.IO, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(data, 0); err != nil {
		return false, errors.E(op, p.String(), errors.IO, err)
	}
	return true, nil
}

// Walk enumerates every regular file currently stored under the root,
// yielding the tree path relative to it. Used by the storage server at
// startup to announce its existing files during registration.
func (r *Root) Walk(visit func(path.Path) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filepath.WalkDir(r.root, func(fullPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.root, fullPath)
		if err != nil {
			return err
		}
		components := strings.Split(filepath.ToSlash(rel), "/")
		p := path.Root
		for _, c := range components {
			p, err = p.Append(c)
			if err != nil {
				return err
			}
		}
		return visit(p)
	})
}
