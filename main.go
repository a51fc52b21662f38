// ABOUTME: Entry point for the echolat measurement client
// ABOUTME: Parses CLI flags, runs the orchestrator, renders and exports results
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echolat/echolat-go/internal/config"
	"github.com/echolat/echolat-go/internal/discovery"
	"github.com/echolat/echolat-go/internal/export"
	"github.com/echolat/echolat-go/internal/geo"
	"github.com/echolat/echolat-go/internal/logging"
	"github.com/echolat/echolat-go/internal/orchestrator"
	"github.com/echolat/echolat-go/internal/ui"
	"github.com/echolat/echolat-go/internal/version"
)

var (
	serverAddr  = flag.String("server", "", "Responder address (host:port or ws:// URL); empty = discover via mDNS")
	clients     = flag.Int("clients", config.DefaultClients, "Number of concurrent sessions")
	samples     = flag.Int("samples", config.DefaultSamples, "Samples per session")
	region      = flag.String("region", "", "Region/placement hint forwarded to the responder")
	processing  = flag.Bool("processing", false, "Request processing-enabled echo mode")
	interval    = flag.Duration("interval", config.DefaultSampleInterval, "Fixed inter-sample delay")
	configPath  = flag.String("config", "", "Optional YAML config file")
	exportPath  = flag.String("export", "", "Report file path (default: timestamped, \"-\" for stdout)")
	noExport    = flag.Bool("no-export", false, "Skip writing the JSON report")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, log progress instead")
	regionURL   = flag.String("region-lookup-url", "", "Optional URL of a colo location table")
	logFile     = flag.String("log-file", "", "Log file path (default from config)")
	logLevel    = flag.String("log-level", "", "Log level (default from config)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "echolat: %v\n", err)
		os.Exit(1)
	}

	useTUI := !*noTUI
	logging.Init(cfg.Logging, useTUI)
	log := logging.L()

	// Discover a responder when no endpoint is configured.
	if cfg.Endpoint == "" {
		addr, err := discoverResponder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "echolat: %v\n", err)
			os.Exit(1)
		}
		cfg.Endpoint = addr
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "echolat: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	regions := geo.NewProvider(geo.Config{RefreshURL: *regionURL})
	regions.Start()
	defer regions.Stop()

	var result *orchestrator.Result
	var runErr error

	if useTUI {
		prog := ui.Run(cfg.Endpoint, cfg.Region, cfg.Clients, cfg.Samples)

		done := make(chan struct{})
		go func() {
			defer close(done)
			result, runErr = orchestrator.Run(ctx, cfg, func(session, collected int) {
				prog.Send(ui.ProgressMsg{Session: session, Collected: collected})
			})
			prog.Send(ui.DoneMsg{Err: runErr})
		}()

		if _, err := prog.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
		}
		cancel() // quitting the TUI aborts outstanding sessions
		<-done
	} else {
		result, runErr = orchestrator.Run(ctx, cfg, func(session, collected int) {
			log.Debugf("session %d: %d/%d samples", session, collected, cfg.Samples)
		})
	}

	if result == nil {
		fmt.Fprintf(os.Stderr, "echolat: %v\n", runErr)
		os.Exit(1)
	}

	regionName := ""
	if cfg.Region != "" {
		regionName = regions.Describe(cfg.Region)
	}

	fmt.Print(ui.Summary(result, regionName))

	if !*noExport {
		path, err := export.Write(cfg.ExportPath, export.Build(cfg, result, regionName))
		if err != nil {
			log.Errorf("export failed: %v", err)
		} else if path != "-" {
			fmt.Printf("report written to %s\n", path)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "echolat: run failed: %v\n", runErr)
		os.Exit(1)
	}
}

// buildConfig loads the optional config file and applies explicitly set
// flags on top of it.
func buildConfig() (config.Config, error) {
	cfg := config.Default()

	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["server"] {
		cfg.Endpoint = *serverAddr
	}
	if set["clients"] {
		cfg.Clients = *clients
	}
	if set["samples"] {
		cfg.Samples = *samples
	}
	if set["region"] {
		cfg.Region = *region
	}
	if set["processing"] {
		cfg.Processing = *processing
	}
	if set["interval"] {
		cfg.SampleInterval = *interval
	}
	if set["export"] {
		cfg.ExportPath = *exportPath
	}
	if set["log-file"] {
		cfg.Logging.File = *logFile
	}
	if set["log-level"] {
		cfg.Logging.Level = *logLevel
	}

	return cfg, nil
}

// discoverResponder browses mDNS briefly and returns the first
// responder found.
func discoverResponder() (string, error) {
	mgr := discovery.NewManager(discovery.Config{})
	defer mgr.Stop()
	mgr.Browse()

	select {
	case info := <-mgr.Responders():
		return info.Addr(), nil
	case <-time.After(5 * time.Second):
		return "", fmt.Errorf("no responder configured and none discovered on the local network")
	}
}
