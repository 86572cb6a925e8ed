package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/TripleSteak/Final-Aisle/pkg/datastore"
	"github.com/TripleSteak/Final-Aisle/pkg/email"
	"github.com/TripleSteak/Final-Aisle/pkg/logging"
	"github.com/TripleSteak/Final-Aisle/pkg/server"
	"github.com/TripleSteak/Final-Aisle/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()

	configFile := flag.String("config", "", "YAML config file (flags override)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	addr := flag.String("addr", "", "TCP bind address for the game protocol")
	dbPath := flag.String("db", "", "SQLite database file path")
	metricsAddr := flag.String("metrics", "", "HTTP bind address for Prometheus /metrics (empty to disable)")
	logLevel := flag.String("log-level", "", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "", "Log format: text or json")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *configFile != "" {
		loaded, err := server.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	st, err := datastore.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}

	var mail email.Sender
	if cfg.SMTP.Host != "" {
		mail = email.NewSMTPSender(cfg.SMTP)
	}

	srv := server.New(cfg, server.Dependencies{Store: st, Mail: mail})
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
