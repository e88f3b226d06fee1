package transport

import (
	"net"
	"net/rpc"

	"dfs.io/dfs"
	"dfs.io/errors"
)

// DialStorageFunc dials the storage client stub at addr; supplied to
// commandServer so that a Copy can turn the source address it receives
// into a stub, and to registrationServer for the registering server's
// client stub. serviceServer.GetStorage replies with a bare address,
// which ServiceClient.GetStorage dials itself.
type DialStorageFunc func(dfs.NetAddr) (dfs.Storage, error)

// storageServer is the net/rpc-registered wrapper around a data-plane
// Storage implementation (normally a *storage.Root).
type storageServer struct {
	impl dfs.Storage
}

func (s *storageServer) Size(args pathArgs, reply *sizeReply) error {
	size, err := s.impl.Size(args.Path)
	reply.Size = size
	return err
}

func (s *storageServer) Read(args readArgs, reply *readReply) error {
	data, err := s.impl.Read(args.Path, args.Offset, args.Length)
	reply.Data = data
	return err
}

func (s *storageServer) Write(args writeArgs, reply *emptyReply) error {
	return s.impl.Write(args.Path, args.Offset, args.Data)
}

// commandServer is the net/rpc-registered wrapper around a control-plane
// Command implementation.
type commandServer struct {
	impl dfs.Command
	dial DialStorageFunc
}

func (c *commandServer) Create(args pathArgs, reply *boolReply) error {
	ok, err := c.impl.Create(args.Path)
	reply.Ok = ok
	return err
}

func (c *commandServer) Delete(args pathArgs, reply *boolReply) error {
	ok, err := c.impl.Delete(args.Path)
	reply.Ok = ok
	return err
}

func (c *commandServer) Copy(args copyArgs, reply *boolReply) error {
	const op = "transport.commandServer.Copy"
	source, err := c.dial(args.Source)
	if err != nil {
		return errors.E(op, errors.Remote, err)
	}
	ok, err := c.impl.Copy(args.Path, source)
	reply.Ok = ok
	return err
}

// serviceServer is the net/rpc-registered wrapper around the naming
// server's client-facing Service implementation.
type serviceServer struct {
	impl        dfs.Service
	dialStorage DialStorageFunc
}

func (s *serviceServer) Lock(args lockArgs, reply *emptyReply) error {
	return s.impl.Lock(args.Path, args.Exclusive)
}

func (s *serviceServer) Unlock(args lockArgs, reply *emptyReply) error {
	return s.impl.Unlock(args.Path, args.Exclusive)
}

func (s *serviceServer) IsDirectory(args pathArgs, reply *boolReply) error {
	ok, err := s.impl.IsDirectory(args.Path)
	reply.Ok = ok
	return err
}

func (s *serviceServer) List(args pathArgs, reply *listReply) error {
	names, err := s.impl.List(args.Path)
	reply.Names = names
	return err
}

func (s *serviceServer) CreateFile(args pathArgs, reply *boolReply) error {
	ok, err := s.impl.CreateFile(args.Path)
	reply.Ok = ok
	return err
}

func (s *serviceServer) CreateDirectory(args pathArgs, reply *boolReply) error {
	ok, err := s.impl.CreateDirectory(args.Path)
	reply.Ok = ok
	return err
}

func (s *serviceServer) Delete(args pathArgs, reply *boolReply) error {
	ok, err := s.impl.Delete(args.Path)
	reply.Ok = ok
	return err
}

func (s *serviceServer) GetStorage(args pathArgs, reply *getStorageReply) error {
	const op = "transport.serviceServer.GetStorage"
	st, err := s.impl.GetStorage(args.Path)
	if err != nil {
		return err
	}
	addr, err := addrOf(op, st)
	if err != nil {
		return err
	}
	reply.Addr = addr
	return nil
}

// registrationServer is the net/rpc-registered wrapper around the naming
// server's storage-facing Registration implementation.
type registrationServer struct {
	impl        dfs.Registration
	dialStorage DialStorageFunc
	dialCommand func(dfs.NetAddr) (dfs.Command, error)
}

func (r *registrationServer) Register(args registerArgs, reply *registerReply) error {
	const op = "transport.registrationServer.Register"
	client, err := r.dialStorage(args.ClientAddr)
	if err != nil {
		return errors.E(op, errors.Remote, err)
	}
	command, err := r.dialCommand(args.CommandAddr)
	if err != nil {
		return errors.E(op, errors.Remote, err)
	}
	dup, err := r.impl.Register(client, command, args.DeclaredFiles)
	reply.Duplicates = dup
	return err
}

// Listener runs a net/rpc server over one TCP listener, accepting
// connections on its own goroutine until Close.
type Listener struct {
	ln  net.Listener
	srv *rpc.Server
}

func newListener(addr string) (*Listener, error) {
	const op = "transport.newListener"
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.E(op, errors.Remote, err)
	}
	return &Listener{ln: ln, srv: rpc.NewServer()}, nil
}

func (l *Listener) start() {
	go func() {
		for {
			conn, err := l.ln.Accept()
			if err != nil {
				return
			}
			go l.srv.ServeConn(conn)
		}
	}()
}

// Addr returns the address the listener is bound to.
func (l *Listener) Addr() dfs.NetAddr { return dfs.NetAddr(l.ln.Addr().String()) }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.ln.Close() }

// ServeStorage starts a listener exposing storageImpl and commandImpl
// (typically the same *storage.Root) as the Storage and Command RPC
// interfaces, bound to addr (port 0 lets the OS pick a free port,
// useful in tests).
func ServeStorage(addr string, storageImpl dfs.Storage, commandImpl dfs.Command, dial DialStorageFunc) (*Listener, error) {
	const op = "transport.ServeStorage"
	l, err := newListener(addr)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if err := l.srv.RegisterName("Storage", &storageServer{impl: storageImpl}); err != nil {
		return nil, errors.E(op, err)
	}
	if err := l.srv.RegisterName("Command", &commandServer{impl: commandImpl, dial: dial}); err != nil {
		return nil, errors.E(op, err)
	}
	l.start()
	return l, nil
}

// ServeNaming starts a listener exposing serviceImpl and registrationImpl
// as the Service and Registration RPC interfaces.
func ServeNaming(addr string, serviceImpl dfs.Service, registrationImpl dfs.Registration, dialStorage DialStorageFunc, dialCommand func(dfs.NetAddr) (dfs.Command, error)) (*Listener, error) {
	const op = "transport.ServeNaming"
	l, err := newListener(addr)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if err := l.srv.RegisterName("Service", &serviceServer{impl: serviceImpl, dialStorage: dialStorage}); err != nil {
		return nil, errors.E(op, err)
	}
	if err := l.srv.RegisterName("Registration", &registrationServer{impl: registrationImpl, dialStorage: dialStorage, dialCommand: dialCommand}); err != nil {
		return nil, errors.E(op, err)
	}
	l.start()
	return l, nil
}
