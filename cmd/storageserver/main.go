// Storageserver runs a single storage server: a file-service engine
// rooted at a local directory, registered with a naming server so
// clients can discover it as a replica host.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"dfs.io/config"
	"dfs.io/dfs"
	"dfs.io/flags"
	"dfs.io/log"
	"dfs.io/storageserver"
)

func main() {
	flags.Parse(&flags.Config, &flags.Addr, &flags.Root, &flags.Naming, &flags.Log)

	addr, root, naming := flags.Addr, flags.Root, flags.Naming
	if flags.Config != "" {
		cfg, err := config.FromFile(flags.Config)
		if err != nil {
			log.Error.Printf("storageserver: loading config %s: %v", flags.Config, err)
			os.Exit(1)
		}
		if cfg.Addr != "" {
			addr = cfg.Addr
		}
		if cfg.Root != "" {
			root = cfg.Root
		}
		if cfg.Naming != "" {
			naming = cfg.Naming
		}
		if cfg.Log != "" {
			log.SetLevel(cfg.Log)
		}
	}
	if root == "" {
		log.Error.Printf("storageserver: -root is required")
		os.Exit(1)
	}
	if naming == "" {
		log.Error.Printf("storageserver: -naming is required")
		os.Exit(1)
	}

	s, err := storageserver.New(root)
	if err != nil {
		log.Error.Printf("storageserver: %v", err)
		os.Exit(1)
	}
	if err := s.Start(addr, dfs.NetAddr(naming)); err != nil {
		log.Error.Printf("storageserver: %v", err)
		os.Exit(1)
	}
	log.Info.Printf("storageserver: serving %s, registered with naming server at %s", root, naming)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	s.Stop()
}
