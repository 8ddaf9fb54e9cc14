// Package poller implements the CurvePoller: a fairness-bounded sweep over
// the monitored set that refreshes each mint's on-chain bonding-curve
// price and publishes changes onto its monitor queue.
package poller

import (
	"context"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/tommyca/pumpwatch/internal/curve"
	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/project"
)

// minDelayPerCall and idleThreshold implement the fairness contract of
// §4.6: delay_per_call = max(0.1s, 1.0/max(N,10)).
const (
	minDelayPerCall = 100 * time.Millisecond
	pollFloor       = time.Second
	idleThreshold   = 10 * time.Second
	sweepPause      = 100 * time.Millisecond
	priceTolerance  = 1e-10
)

// Registry is the subset of the Dispatcher the CurvePoller depends on.
type Registry interface {
	Projects() map[solana.PublicKey]*project.Project
	LastActivity(mint solana.PublicKey) time.Time
	MonitorQueue(mint solana.PublicKey) chan events.Event
}

// Poller periodically reads each monitored mint's bonding-curve account
// and publishes price updates, sharing RPC budget fairly across a growing
// working set.
type Poller struct {
	client   *curve.Client
	registry Registry
	log      *logging.Logger

	lastPolled    map[solana.PublicKey]time.Time
	lastSentPrice map[solana.PublicKey]decimal.Decimal

	now func() time.Time
}

// New builds a CurvePoller against client, reading the monitored set from
// registry.
func New(client *curve.Client, registry Registry, log *logging.Logger) *Poller {
	return &Poller{
		client:        client,
		registry:      registry,
		log:           log,
		lastPolled:    make(map[solana.PublicKey]time.Time),
		lastSentPrice: make(map[solana.PublicKey]decimal.Decimal),
		now:           time.Now,
	}
}

// Run sweeps the monitored set until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(sweepPause):
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	projects := p.registry.Projects()
	p.purgeObsolete(projects)

	n := len(projects)
	delay := time.Duration(float64(time.Second) / math.Max(float64(n), 10))
	if delay < minDelayPerCall {
		delay = minDelayPerCall
	}

	for mint, proj := range projects {
		if ctx.Err() != nil {
			return
		}
		p.pollOne(ctx, mint, proj)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (p *Poller) purgeObsolete(projects map[solana.PublicKey]*project.Project) {
	for mint := range p.lastSentPrice {
		if _, ok := projects[mint]; !ok {
			delete(p.lastSentPrice, mint)
			delete(p.lastPolled, mint)
		}
	}
}

func (p *Poller) pollOne(ctx context.Context, mint solana.PublicKey, proj *project.Project) {
	now := p.now()

	if now.Sub(p.registry.LastActivity(mint)) > idleThreshold {
		return
	}
	if now.Sub(p.lastPolled[mint]) < pollFloor {
		return
	}
	p.lastPolled[mint] = now

	queue := p.registry.MonitorQueue(mint)
	if queue == nil {
		return
	}

	raw, err := p.client.GetAccountData(ctx, proj.BondingCurve)
	if err != nil {
		p.log.Debug("curve fetch failed", "mint", mint, "error", err)
		return
	}
	state, err := curve.Parse(raw)
	if err != nil {
		p.log.Debug("curve parse failed", "mint", mint, "error", err)
		return
	}
	price, err := state.Price()
	if err != nil {
		p.log.Debug("curve price invalid", "mint", mint, "error", err)
		return
	}

	if last, ok := p.lastSentPrice[mint]; ok {
		diff, _ := price.Sub(last).Float64()
		if math.Abs(diff) < priceTolerance {
			return
		}
	}
	p.lastSentPrice[mint] = price

	select {
	case queue <- events.Event{Price: &events.PriceUpdate{Price: price, Timestamp: now}}:
	default:
		p.log.Warn("monitor queue full, dropping price update", "mint", mint)
	}
}
