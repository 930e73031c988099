package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"tesla-bridge-core/utils"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "Runner config JSON file (defaults when empty)")
		scenPath = flag.String("scenario", "", "Scenario JSON file, overrides the config")
		logLevel = flag.String("log", "info", "trace|debug|info|warn|error|critical")
		dryRun   = flag.Bool("dry-run", false, "Use in-memory loopback buses instead of SocketCAN")
	)
	flag.Parse()

	cfg, err := LoadRunnerConfig(*cfgPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *scenPath != "" {
		cfg.ScenarioPath = *scenPath
	}

	log, err := utils.NewFileLogger(cfg.LogPath, utils.ParseLevel(*logLevel), true)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open " + cfg.LogPath + ": " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	scen, err := LoadScenario(cfg.ScenarioPath)
	if err != nil {
		log.Critical("Load scenario %s: %v", cfg.ScenarioPath, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := NewRunner(ctx, cfg, scen, log, *dryRun)
	if err != nil {
		log.Critical("Startup failed: %v", err)
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}
