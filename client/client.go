// Package client wraps the call sequence spec.md §2 describes for a
// consumer of the distributed filesystem: lock, resolve storage,
// read or write bytes directly against that storage server, unlock.
// Modeled on upspin.io/client's Client wrapping the Lookup/Get/Put
// sequence for its DirServer/StoreServer pair.
package client

import (
	"dfs.io/dfs"
	"dfs.io/errors"
	"dfs.io/path"
)

// Client talks to a single naming server on behalf of one caller.
type Client struct {
	service dfs.Service
}

// New returns a Client backed by service.
func New(service dfs.Service) *Client {
	return &Client{service: service}
}

// ReadFile reads the entire contents of the file at p: it locks p for
// shared access, resolves its storage server, reads its full size, and
// unlocks p, in that order, mirroring spec.md §2's data-flow paragraph.
func (c *Client) ReadFile(p path.Path) ([]byte, error) {
	const op = "client.ReadFile"
	if err := c.service.Lock(p, false); err != nil {
		return nil, errors.E(op, err)
	}
	defer c.service.Unlock(p, false)

	storage, err := c.service.GetStorage(p)
	if err != nil {
		return nil, errors.E(op, err)
	}
	size, err := storage.Size(p)
	if err != nil {
		return nil, errors.E(op, err)
	}
	data, err := storage.Read(p, 0, size)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return data, nil
}

// WriteFile creates p if it does not already exist, then writes data to
// it at offset 0. CreateFile is idempotent (it reports false, not an
// error, if p already exists) so it runs unlocked before the exclusive
// hold; the write itself locks p for exclusive access, resolves its
// storage server, writes the bytes, and unlocks p, mirroring spec.md
// §2's data-flow paragraph.
func (c *Client) WriteFile(p path.Path, data []byte) error {
	const op = "client.WriteFile"
	if _, err := c.service.CreateFile(p); err != nil {
		return errors.E(op, err)
	}

	if err := c.service.Lock(p, true); err != nil {
		return errors.E(op, err)
	}
	defer c.service.Unlock(p, true)

	storage, err := c.service.GetStorage(p)
	if err != nil {
		return errors.E(op, err)
	}
	if err := storage.Write(p, 0, data); err != nil {
		return errors.E(op, err)
	}
	return nil
}
