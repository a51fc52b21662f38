// ABOUTME: Entry point for the echo responder server
// ABOUTME: Parses CLI flags and serves timestamped echo sessions until interrupted
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/echolat/echolat-go/internal/config"
	"github.com/echolat/echolat-go/internal/logging"
	"github.com/echolat/echolat-go/internal/responder"
	"github.com/echolat/echolat-go/internal/version"
)

var (
	port        = flag.Int("port", 8947, "Port to listen on")
	name        = flag.String("name", "", "Responder name for mDNS (default: hostname-echolat)")
	colo        = flag.String("colo", "", "Location identifier advertised by this responder")
	enableMDNS  = flag.Bool("mdns", true, "Advertise via mDNS")
	logFile     = flag.String("log-file", "", "Log file path (empty = stdout only)")
	logLevel    = flag.String("log-level", "info", "Log level")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s-responder %s\n", version.Product, version.Version)
		return
	}

	logging.Init(config.LoggingConfig{
		Level:     *logLevel,
		File:      *logFile,
		MaxSizeMB: 10,
		MaxAge:    7,
	}, false)
	log := logging.L()

	responderName := *name
	if responderName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		responderName = fmt.Sprintf("%s-echolat", hostname)
	}

	server := responder.New(responder.Config{
		Port:       *port,
		Name:       responderName,
		Colo:       *colo,
		EnableMDNS: *enableMDNS,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Infof("interrupt received, stopping")
		server.Stop()
	}()

	if err := server.Start(); err != nil {
		log.Errorf("responder failed: %v", err)
		os.Exit(1)
	}
}
