package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexanderramin/compass/internal/advisor"
	"github.com/alexanderramin/compass/internal/budget"
	"github.com/alexanderramin/compass/internal/cache"
	"github.com/alexanderramin/compass/internal/cli"
	"github.com/alexanderramin/compass/internal/datasource"
	"github.com/alexanderramin/compass/internal/localstore"
	"github.com/alexanderramin/compass/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine local store path: env var or default ~/.compass/compass.db
	storePath := os.Getenv("COMPASS_DB")
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		storePath = filepath.Join(home, ".compass", "compass.db")
	}

	store, err := localstore.Open(storePath)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer store.Close()

	ds := datasource.NewHTTPClient(datasource.LoadConfig())

	var coordOpts []cache.Option
	if os.Getenv("COMPASS_LOG_FETCHES") != "" {
		coordOpts = append(coordOpts, cache.WithObserver(cache.NewLogObserver(os.Stderr)))
	}
	if v := os.Getenv("COMPASS_WATCHDOG_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			coordOpts = append(coordOpts, cache.WithWatchdog(time.Duration(n)*time.Millisecond))
		}
	}
	coord := cache.NewCoordinator(coordOpts...)
	estimates := budget.NewEstimateStore(ds, store)

	var svcOpts []service.ServiceOption
	advisorCfg := advisor.LoadConfig()
	var advisorObs advisor.Observer
	if advisorCfg.LogCalls {
		advisorObs = advisor.NewLogObserver(os.Stderr)
	}
	if est := advisor.NewEstimator(advisorCfg, advisorObs); est != nil {
		svcOpts = append(svcOpts, service.WithAdvisor(est))
	}

	app := &cli.App{
		Insights: service.NewInsightService(ds, coord, estimates, svcOpts...),
	}

	// Detect interactive terminal for the dashboard entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
