// fetchparams downloads and verifies the shielded proof system parameter
// files a node needs before it can validate or create shielded
// transactions.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
	"github.com/umbranet/umbrad/build"
	"github.com/umbranet/umbrad/paramfetch"
)

var defaultParamsDir = btcutil.AppDataDir("umbrad", false)

type config struct {
	Dir string `long:"dir" description:"Directory to store the parameter files in."`

	Timeout time.Duration `long:"timeout" description:"Overall timeout for fetching all files. 0 means no timeout."`

	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems."`
}

func main() {
	cfg := config{
		Dir:        defaultParamsDir,
		DebugLevel: "info",
	}
	if _, err := flags.Parse(&cfg); err != nil {
		os.Exit(1)
	}

	logManager := build.NewSubLoggerManager(btclog.NewBackend(os.Stdout))
	logger := logManager.GenSubLogger(paramfetch.Subsystem)
	paramfetch.UseLogger(logger)
	err := build.ParseAndSetDebugLevels(cfg.DebugLevel, logManager)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	fetcher := paramfetch.NewFetcher(cfg.Dir, nil)
	err = fetcher.Fetch(
		ctx, paramfetch.DefaultParamFiles,
		func(name string, pct int) {
			logger.Infof("%s: [%d%%]", name, pct)
		},
	)
	if err != nil {
		logger.Errorf("Unable to fetch parameters: %v", err)
		os.Exit(1)
	}

	fmt.Printf("All parameter files verified in %s\n", cfg.Dir)
}
