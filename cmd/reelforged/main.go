// Command reelforged runs the reelforge daemon in the foreground. The
// reelforge CLI normally launches the daemon on demand, but this entrypoint
// suits service managers that want a long-lived process.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(strings.TrimSpace(*configPath))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	level := strings.TrimSpace(*logLevel)
	if level == "" {
		level = cfg.Logging.Level
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: level}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("daemon exited: %v", err)
	}
}
