// Command pumpwatch watches a pump.fun-style bonding-curve program for new
// token launches, applies operator-configured creation filters, and
// monitors every surviving mint's trades and curve price until one of the
// exit rules fires.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gagliardetto/solana-go"

	"github.com/tommyca/pumpwatch/internal/config"
	"github.com/tommyca/pumpwatch/internal/curve"
	"github.com/tommyca/pumpwatch/internal/dispatch"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/monitor"
	"github.com/tommyca/pumpwatch/internal/poller"
	"github.com/tommyca/pumpwatch/internal/sink"
	"github.com/tommyca/pumpwatch/internal/stream"
	"github.com/tommyca/pumpwatch/internal/watcher"
)

func main() {
	envFile := flag.String("env-file", ".private/env.conf", "optional dotenv file to seed environment variables from")
	nameContains := flag.String("name-contains", "", "only monitor creations whose name or symbol contains this substring (case-insensitive)")
	creator := flag.String("creator", "", "only monitor creations made by this creator address")
	rpcRatePerSec := flag.Float64("rpc-rate", 10, "max curve-account poll requests per second")
	rpcBurst := flag.Int("rpc-burst", 10, "curve-account poll request burst size")
	thresholdsFile := flag.String("thresholds-file", "", "optional YAML file overriding the default termination thresholds")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logging.Error("startup failed", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	logging.SetGlobal(log)

	curveClient := curve.NewClient(cfg.RPCHTTPEndpoint, *rpcRatePerSec, *rpcBurst)
	dispatcher := dispatch.New(cfg.PumpProgram, log)
	snapshotSink := sink.NewLogSink(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	thresholds := monitor.DefaultThresholds()
	if *thresholdsFile != "" {
		loaded, err := monitor.LoadThresholds(*thresholdsFile)
		if err != nil {
			log.Error("invalid --thresholds-file", "error", err)
			os.Exit(1)
		}
		thresholds = loaded
	}

	reg := newSpawningRegistrar(ctx, dispatcher, curveClient, snapshotSink, thresholds, log)

	var filterOpts []watcher.Option
	if *nameContains != "" {
		filterOpts = append(filterOpts, watcher.WithNameContains(*nameContains))
	}
	if *creator != "" {
		creatorKey, err := solana.PublicKeyFromBase58(*creator)
		if err != nil {
			log.Error("invalid --creator address", "error", err)
			os.Exit(1)
		}
		filterOpts = append(filterOpts, watcher.WithCreatorAddress(creatorKey))
	}
	filter := watcher.New(log, filterOpts...)

	mintPoller := poller.New(curveClient, dispatcher, log)
	listener := stream.New(cfg.SolanaNodeWSSEndpoint, cfg.PumpProgram, dispatcher, log)

	g, ctx := errgroup.WithContext(ctx)
	log.Info("pumpwatch starting", "program", cfg.PumpProgram.String())

	g.Go(func() error {
		listener.Run(ctx)
		return nil
	})
	g.Go(func() error {
		mintPoller.Run(ctx)
		return nil
	})
	g.Go(func() error {
		filter.Run(ctx, dispatcher.WatcherQueue(), reg)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("pumpwatch stopped with error", "error", err)
		reg.wait()
		_ = log.Sync()
		os.Exit(1)
	}

	reg.wait()
	log.Info("pumpwatch shut down gracefully")
	_ = log.Sync()
}
