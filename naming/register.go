package naming

import (
	"dfs.io/dfs"
	"dfs.io/errors"
	"dfs.io/path"
	"dfs.io/tree"
)

// Register onboards a storage server (spec.md §4.5). It rejects a stub
// pair that duplicates a previously registered one, then holds the
// root's exclusive lock for the whole operation: it appends the new
// stubs to the registry, walks declaredFiles creating any missing
// ancestor directories, and for each declared file either installs a new
// file node (naming this server its primary) or, if an entry already
// exists under a different replica, adds the path to the returned
// duplicates list without touching the existing node. The caller (the
// newly registered storage server) is expected to delete its local copy
// of every returned duplicate.
func (t *Tree) Register(client dfs.Storage, command dfs.Command, declaredFiles []path.Path) ([]path.Path, error) {
	const op = "naming.Register"
	if client == nil || command == nil {
		return nil, errors.E(op, errors.Invalid, errors.Str("nil stub"))
	}
	if t.registry.Contains(client, command) {
		return nil, errors.E(op, errors.State, errors.Str("duplicate storage server registration"))
	}

	if err := t.Lock(path.Root, true); err != nil {
		return nil, errors.E(op, err)
	}
	defer t.Unlock(path.Root, true)

	newIndex := t.registry.Append(client, command)

	var duplicates []path.Path
	for _, p := range declaredFiles {
		if p.IsRoot() {
			continue
		}
		dir := t.root
		comps := p.Components()
		for _, name := range comps[:len(comps)-1] {
			// Read dir's children directly rather than through
			// Find, which takes a transient shared lock: we
			// already hold the root's lock exclusively for the
			// whole call, and Find-ing back into the root (or
			// re-locking any node we're the sole holder of) would
			// self-deadlock against that same lock.
			child, ok := dir.Children()[name]
			if !ok {
				child = tree.NewDirectory()
				dir.PutChild(name, child)
			} else if !child.IsDir() {
				return nil, errors.E(op, p.String(), errors.State, errors.Str("ancestor already exists as a file"))
			}
			dir = child
		}
		name := p.Last()
		if dir.HasChild(name) {
			duplicates = append(duplicates, p)
			continue
		}
		dir.PutChild(name, tree.NewFile(int(newIndex)))
	}
	return duplicates, nil
}
