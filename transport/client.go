package transport

import (
	"net/rpc"

	"dfs.io/dfs"
	"dfs.io/errors"
	"dfs.io/path"
)

// StorageClient is a network-addressable client-side stub implementing
// dfs.Storage.
type StorageClient struct {
	addr dfs.NetAddr
	rpc  *rpc.Client
}

var _ dfs.Storage = (*StorageClient)(nil)

// DialStorage connects to a storage server's data-plane endpoint.
func DialStorage(addr dfs.NetAddr) (*StorageClient, error) {
	const op = "transport.DialStorage"
	c, err := rpc.Dial("tcp", string(addr))
	if err != nil {
		return nil, errors.E(op, errors.Remote, err)
	}
	return &StorageClient{addr: addr, rpc: c}, nil
}

// Addr returns the dialed address, so this stub can be forwarded as the
// source of a Copy or the subject of a Register call.
func (s *StorageClient) Addr() dfs.NetAddr { return s.addr }

func (s *StorageClient) Size(p path.Path) (int64, error) {
	var reply sizeReply
	err := s.rpc.Call("Storage.Size", pathArgs{Path: p}, &reply)
	return reply.Size, err
}

func (s *StorageClient) Read(p path.Path, offset, length int64) ([]byte, error) {
	var reply readReply
	err := s.rpc.Call("Storage.Read", readArgs{Path: p, Offset: offset, Length: length}, &reply)
	return reply.Data, err
}

func (s *StorageClient) Write(p path.Path, offset int64, data []byte) error {
	var reply emptyReply
	return s.rpc.Call("Storage.Write", writeArgs{Path: p, Offset: offset, Data: data}, &reply)
}

// Close releases the underlying connection.
func (s *StorageClient) Close() error { return s.rpc.Close() }

// CommandClient is a network-addressable client-side stub implementing
// dfs.Command.
type CommandClient struct {
	addr dfs.NetAddr
	rpc  *rpc.Client
}

var _ dfs.Command = (*CommandClient)(nil)

// DialCommand connects to a storage server's control-plane endpoint.
func DialCommand(addr dfs.NetAddr) (*CommandClient, error) {
	const op = "transport.DialCommand"
	c, err := rpc.Dial("tcp", string(addr))
	if err != nil {
		return nil, errors.E(op, errors.Remote, err)
	}
	return &CommandClient{addr: addr, rpc: c}, nil
}

// Addr returns the dialed address.
func (c *CommandClient) Addr() dfs.NetAddr { return c.addr }

func (c *CommandClient) Create(p path.Path) (bool, error) {
	var reply boolReply
	err := c.rpc.Call("Command.Create", pathArgs{Path: p}, &reply)
	return reply.Ok, err
}

func (c *CommandClient) Delete(p path.Path) (bool, error) {
	var reply boolReply
	err := c.rpc.Call("Command.Delete", pathArgs{Path: p}, &reply)
	return reply.Ok, err
}

func (c *CommandClient) Copy(p path.Path, source dfs.Storage) (bool, error) {
	const op = "transport.CommandClient.Copy"
	addr, err := addrOf(op, source)
	if err != nil {
		return false, err
	}
	var reply boolReply
	err = c.rpc.Call("Command.Copy", copyArgs{Path: p, Source: addr}, &reply)
	return reply.Ok, err
}

// Close releases the underlying connection.
func (c *CommandClient) Close() error { return c.rpc.Close() }

// ServiceClient is a client-side stub implementing dfs.Service, used by
// dfs.io/client to talk to the naming server.
type ServiceClient struct {
	rpc *rpc.Client
}

var _ dfs.Service = (*ServiceClient)(nil)

// DialService connects to a naming server's client-facing endpoint.
func DialService(addr dfs.NetAddr) (*ServiceClient, error) {
	const op = "transport.DialService"
	c, err := rpc.Dial("tcp", string(addr))
	if err != nil {
		return nil, errors.E(op, errors.Remote, err)
	}
	return &ServiceClient{rpc: c}, nil
}

func (s *ServiceClient) Lock(p path.Path, exclusive bool) error {
	var reply emptyReply
	return s.rpc.Call("Service.Lock", lockArgs{Path: p, Exclusive: exclusive}, &reply)
}

func (s *ServiceClient) Unlock(p path.Path, exclusive bool) error {
	var reply emptyReply
	return s.rpc.Call("Service.Unlock", lockArgs{Path: p, Exclusive: exclusive}, &reply)
}

func (s *ServiceClient) IsDirectory(p path.Path) (bool, error) {
	var reply boolReply
	err := s.rpc.Call("Service.IsDirectory", pathArgs{Path: p}, &reply)
	return reply.Ok, err
}

func (s *ServiceClient) List(p path.Path) ([]string, error) {
	var reply listReply
	err := s.rpc.Call("Service.List", pathArgs{Path: p}, &reply)
	return reply.Names, err
}

func (s *ServiceClient) CreateFile(p path.Path) (bool, error) {
	var reply boolReply
	err := s.rpc.Call("Service.CreateFile", pathArgs{Path: p}, &reply)
	return reply.Ok, err
}

func (s *ServiceClient) CreateDirectory(p path.Path) (bool, error) {
	var reply boolReply
	err := s.rpc.Call("Service.CreateDirectory", pathArgs{Path: p}, &reply)
	return reply.Ok, err
}

func (s *ServiceClient) Delete(p path.Path) (bool, error) {
	var reply boolReply
	err := s.rpc.Call("Service.Delete", pathArgs{Path: p}, &reply)
	return reply.Ok, err
}

func (s *ServiceClient) GetStorage(p path.Path) (dfs.Storage, error) {
	var reply getStorageReply
	if err := s.rpc.Call("Service.GetStorage", pathArgs{Path: p}, &reply); err != nil {
		return nil, err
	}
	return DialStorage(reply.Addr)
}

// Close releases the underlying connection.
func (s *ServiceClient) Close() error { return s.rpc.Close() }

// RegistrationClient is a client-side stub implementing dfs.Registration,
// used by dfs.io/storageserver to register with the naming server.
type RegistrationClient struct {
	rpc *rpc.Client
}

var _ dfs.Registration = (*RegistrationClient)(nil)

// DialRegistration connects to a naming server's storage-facing endpoint.
func DialRegistration(addr dfs.NetAddr) (*RegistrationClient, error) {
	const op = "transport.DialRegistration"
	c, err := rpc.Dial("tcp", string(addr))
	if err != nil {
		return nil, errors.E(op, errors.Remote, err)
	}
	return &RegistrationClient{rpc: c}, nil
}

func (r *RegistrationClient) Register(client dfs.Storage, command dfs.Command, declaredFiles []path.Path) ([]path.Path, error) {
	const op = "transport.RegistrationClient.Register"
	clientAddr, err := addrOf(op, client)
	if err != nil {
		return nil, err
	}
	commandAddr, err := addrOf(op, command)
	if err != nil {
		return nil, err
	}
	var reply registerReply
	err = r.rpc.Call("Registration.Register", registerArgs{
		ClientAddr:    clientAddr,
		CommandAddr:   commandAddr,
		DeclaredFiles: declaredFiles,
	}, &reply)
	return reply.Duplicates, err
}

// Close releases the underlying connection.
func (r *RegistrationClient) Close() error { return r.rpc.Close() }
