package main

import (
	"context"
	"sync"

	"github.com/tommyca/pumpwatch/internal/curve"
	"github.com/tommyca/pumpwatch/internal/dispatch"
	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/monitor"
	"github.com/tommyca/pumpwatch/internal/project"
	"github.com/tommyca/pumpwatch/internal/sink"
)

// spawningRegistrar wraps the Dispatcher's RegisterProject so that every
// newly monitored project gets its own Monitor goroutine. The Dispatcher
// itself has no notion of "monitor" - it only routes events - so this is
// the one place that wires project registration to monitor lifecycle.
type spawningRegistrar struct {
	ctx         context.Context
	dispatcher  *dispatch.Dispatcher
	curveClient *curve.Client
	sink        sink.Sink
	thresholds  monitor.Thresholds
	log         *logging.Logger

	wg sync.WaitGroup
}

func newSpawningRegistrar(ctx context.Context, d *dispatch.Dispatcher, curveClient *curve.Client, snapshotSink sink.Sink, thresholds monitor.Thresholds, log *logging.Logger) *spawningRegistrar {
	return &spawningRegistrar{
		ctx:         ctx,
		dispatcher:  d,
		curveClient: curveClient,
		sink:        snapshotSink,
		thresholds:  thresholds,
		log:         log,
	}
}

// RegisterProject satisfies watcher.Registrar. It delegates to the
// Dispatcher for the actual bookkeeping, then starts a Monitor goroutine
// against the returned queue - but only on a fresh registration. A repeat
// registration of an already-monitored mint (e.g. a recent-mint-index
// eviction letting the same creation reappear) must not spawn a second
// Monitor racing the original as consumer of the same queue.
func (r *spawningRegistrar) RegisterProject(p *project.Project) (chan events.Event, bool) {
	queue, fresh := r.dispatcher.RegisterProject(p)
	if !fresh {
		return queue, false
	}

	m := monitor.New(p, queue, r.curveClient, r.dispatcher, r.sink, r.thresholds, r.log)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.log.Info("monitor starting", "mint", p.Mint.String(), "name", p.Name, "symbol", p.Symbol)
		m.Run(r.ctx)
		r.log.Info("monitor stopped", "mint", p.Mint.String())
	}()

	return queue, true
}

// wait blocks until every spawned Monitor has returned.
func (r *spawningRegistrar) wait() {
	r.wg.Wait()
}
