// Namingserver runs the distributed filesystem's naming server: the
// single process that owns the directory tree metadata and accepts
// registrations from storage servers.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"dfs.io/config"
	"dfs.io/flags"
	"dfs.io/log"
	"dfs.io/namingserver"
)

func main() {
	flags.Parse(&flags.Config, &flags.Addr, &flags.Log)

	addr := flags.Addr
	if flags.Config != "" {
		cfg, err := config.FromFile(flags.Config)
		if err != nil {
			log.Error.Printf("namingserver: loading config %s: %v", flags.Config, err)
			os.Exit(1)
		}
		if cfg.Addr != "" {
			addr = cfg.Addr
		}
		if cfg.Log != "" {
			log.SetLevel(cfg.Log)
		}
	}

	s := namingserver.New()
	if err := s.Start(addr); err != nil {
		log.Error.Printf("namingserver: %v", err)
		os.Exit(1)
	}
	log.Info.Printf("namingserver: listening at %s", s.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	s.Stop()
}
