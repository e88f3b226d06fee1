// Package flags defines command-line flags shared between the naming
// server and storage server binaries, modeled on upspin.io/flags: a
// fixed set of variables registered through a single Parse function so
// binaries pick a consistent subset rather than redeclaring flags
// ad hoc.
package flags

import (
	"flag"
	"fmt"
	"reflect"

	"dfs.io/log"
)

// We define the flags in two steps so clients don't have to write *flags.Flag.

var (
	// Config names a YAML config file loaded by dfs.io/config.
	Config = ""

	// Addr is the network address this server listens on for its
	// client-facing endpoint (Service for naming, Storage for storage).
	Addr = ":0"

	// Root is the local directory a storage server serves files from.
	// Unused by the naming server.
	Root = ""

	// Naming is the network address of the naming server's
	// Registration endpoint. Unused by the naming server itself.
	Naming = ""

	// Log sets the level of logging.
	Log logFlag
)

type logFlag string

// String implements flag.Value.
func (l *logFlag) String() string { return string(*l) }

// Set implements flag.Value.
func (l *logFlag) Set(level string) error {
	if err := log.SetLevel(level); err != nil {
		return err
	}
	*l = logFlag(level)
	return nil
}

// Get implements flag.Getter.
func (l *logFlag) Get() interface{} { return string(*l) }

// Parse sets up the command-line flags for the given flag variables and
// calls flag.Parse. Passing an unknown variable triggers a panic, the
// same discipline upspin.io/flags uses so a typo is caught at startup
// rather than silently ignored.
//
// For example:
//
//	flags.Parse(&flags.Addr, &flags.Root, &flags.Naming)
func Parse(vars ...interface{}) error {
	for i, v := range vars {
		unknown := false
		switch v := v.(type) {
		case *string:
			switch v {
			case &Config:
				flag.StringVar(v, "config", Config, "`file` with YAML server configuration")
			case &Addr:
				flag.StringVar(v, "addr", Addr, "network address to listen on")
			case &Root:
				flag.StringVar(v, "root", Root, "local directory to serve files from")
			case &Naming:
				flag.StringVar(v, "naming", Naming, "address of the naming server's registration endpoint")
			default:
				unknown = true
			}
		case *logFlag:
			switch v {
			case &Log:
				v.Set("info")
				flag.Var(v, "log", "`level` of logging: debug, info, error, disabled")
			default:
				unknown = true
			}
		default:
			unknown = true
		}
		if unknown {
			msg := fmt.Sprintf("flags: unknown flag (%#v, arg %d)", v, i)
			if reflect.TypeOf(v).Kind() != reflect.Ptr {
				msg += ", expected pointer type"
			}
			panic(msg)
		}
	}
	flag.Parse()
	return nil
}
