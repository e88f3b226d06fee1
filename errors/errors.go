// Package errors defines the error handling used across the naming and
// storage servers. It follows the same shape throughout the system so that
// callers can inspect a failure's Kind without parsing message text.
package errors

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"

	"dfs.io/log"
)

// Error is the type that implements the error interface.
// A value may leave some fields unset.
type Error struct {
	// Path is the path of the item being accessed, if any.
	Path string
	// Op is the operation being performed, usually the method name.
	Op string
	// Kind classifies the error, or Other if unknown.
	Kind Kind
	// Err is the underlying error that triggered this one, if any.
	Err error
}

var zeroErr Error

// Separator is used to join nested errors onto new, indented lines.
var Separator = ":\n\t"

// Kind defines the class of error.
type Kind uint8

// The kinds of error named by the naming/storage protocol.
const (
	Other    Kind = iota // Unclassified error; not printed.
	Invalid              // Malformed argument, e.g. a bad path or mismatched unlock.
	IO                   // Local filesystem failure on a storage host.
	Exist                // Item already exists.
	NotExist             // Item does not exist, or is the wrong kind.
	OutOfRange           // Byte offsets outside the file.
	Remote               // Transport failure on a cross-server RPC.
	State                // Protocol violation: duplicate stub, no storage servers, inconsistent replica state.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Invalid:
		return "invalid argument"
	case IO:
		return "I/O error"
	case Exist:
		return "item already exists"
	case NotExist:
		return "item does not exist"
	case OutOfRange:
		return "value out of range"
	case Remote:
		return "remote error"
	case State:
		return "invalid state"
	}
	return "unknown error kind"
}

// E builds an error value from its arguments. The type of each argument
// determines its meaning:
//
//	string       the operation (first string) or the item's path (later ones)
//	errors.Kind  the class of error
//	error        the underlying error that triggered this one
//
// The first string argument is treated as Op; a second is treated as Path.
// Otherwise, if more than one argument of a given type is supplied, the
// last one wins.
// If Kind is unset (Other) and the wrapped error is itself an *Error, the
// wrapped Kind is promoted.
func E(args ...interface{}) error {
	if len(args) == 0 {
		return nil
	}
	e := &Error{}
	sawOp := false
	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			if !sawOp {
				e.Op = arg
				sawOp = true
			} else {
				e.Path = arg
			}
		case Kind:
			e.Kind = arg
		case *Error:
			cp := *arg
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("errors.E: bad call from %s:%d: %v", file, line, args)
			return Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}
	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}
	if prev.Path == e.Path {
		prev.Path = ""
	}
	if prev.Kind == e.Kind {
		prev.Kind = Other
	}
	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}
	return e
}

func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(str)
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		pad(b, ": ")
		b.WriteString(e.Path)
	}
	if e.Kind != 0 {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		if prevErr, ok := e.Err.(*Error); ok {
			if *prevErr != zeroErr {
				pad(b, Separator)
				b.WriteString(e.Err.Error())
			}
		} else {
			pad(b, ": ")
			b.WriteString(e.Err.Error())
		}
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// Unwrap allows errors.Is/As from the standard library to see through E.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err is (or wraps) an *Error of the given Kind.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	if e.Kind != Other {
		return e.Kind == kind
	}
	return Is(kind, e.Err)
}

// Str returns an error that formats as the given text. It is intended to
// be used as the error-typed argument to E.
func Str(text string) error {
	return &errorString{text}
}

type errorString struct {
	s string
}

func (e *errorString) Error() string { return e.s }

// Errorf is equivalent to fmt.Errorf but returns a plain error so callers
// that only import this package can build ad hoc messages.
func Errorf(format string, args ...interface{}) error {
	return &errorString{fmt.Sprintf(format, args...)}
}

// Match reports whether the error's message contains text, a convenience
// for tests that don't want to depend on exact Kind wiring.
func Match(text string, err error) bool {
	return err != nil && strings.Contains(err.Error(), text)
}
