// Package monitor implements the per-mint state machine: it integrates
// trade instructions and price updates into rolling aggregates and holder
// accounting, and runs the termination rules that decide when to stop
// watching a mint.
package monitor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/tommyca/pumpwatch/internal/curve"
	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/project"
	"github.com/tommyca/pumpwatch/internal/sink"
)

const (
	ruleEvalInterval = 500 * time.Millisecond
	initRetries      = 2
	initRetryDelay   = time.Second
)

// Unregisterer is the subset of the Dispatcher a Monitor depends on at
// exit.
type Unregisterer interface {
	UnregisterProject(mint solana.PublicKey)
}

// Monitor is one task per registered mint, consuming its monitor queue and
// running the termination rules on a sibling goroutine that shares the
// same State.
type Monitor struct {
	project    *project.Project
	queue      <-chan events.Event
	curveClnt  *curve.Client
	dispatcher Unregisterer
	sink       sink.Sink
	thresholds Thresholds
	log        *logging.Logger

	state *State
	now   func() time.Time
}

// New builds a Monitor for p, consuming queue. sink may be nil, in which
// case sink.Null{} is used.
func New(p *project.Project, queue <-chan events.Event, curveClnt *curve.Client, dispatcher Unregisterer, snapshotSink sink.Sink, thresholds Thresholds, log *logging.Logger) *Monitor {
	if snapshotSink == nil {
		snapshotSink = sink.Null{}
	}
	return &Monitor{
		project:    p,
		queue:      queue,
		curveClnt:  curveClnt,
		dispatcher: dispatcher,
		sink:       snapshotSink,
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
	}
}

// Run fetches the initial bonding-curve price (aborting and unregistering
// the mint if that fails twice) and then runs the event loop and rule
// evaluator until a termination rule fires or ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	t0 := m.now()
	m.state = NewState(t0)

	if !m.initialise(ctx) {
		m.dispatcher.UnregisterProject(m.project.Mint)
		return
	}

	exit := make(chan Verdict, 1)
	evalCtx, cancelEval := context.WithCancel(ctx)
	defer cancelEval()
	go m.runRuleEvaluator(evalCtx, exit)

	m.eventLoop(ctx, exit)
	m.dispatcher.UnregisterProject(m.project.Mint)
}

// initialise performs the best-effort initial curve fetch: up to
// initRetries attempts separated by initRetryDelay.
func (m *Monitor) initialise(ctx context.Context) bool {
	for attempt := 1; attempt <= initRetries; attempt++ {
		price, err := m.fetchCurrentPrice(ctx)
		if err == nil {
			m.state.SeedPrice(price, m.now())
			return true
		}
		m.log.Warn("initial curve fetch failed", "mint", m.project.Mint, "attempt", attempt, "error", err)
		if attempt < initRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(initRetryDelay):
			}
		}
	}
	return false
}

func (m *Monitor) fetchCurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	raw, err := m.curveClnt.GetAccountData(ctx, m.project.BondingCurve)
	if err != nil {
		return decimal.Decimal{}, err
	}
	state, err := curve.Parse(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return state.Price()
}

func (m *Monitor) eventLoop(ctx context.Context, exit <-chan Verdict) {
	for {
		select {
		case <-ctx.Done():
			return
		case verdict := <-exit:
			m.log.Info("monitor exiting", "mint", m.project.Mint, "reason", verdict.Reason)
			return
		case evt, ok := <-m.queue:
			if !ok {
				return
			}
			m.apply(evt)
			m.emit(ctx)
		}
	}
}

// apply integrates evt using the timestamp the Dispatcher or CurvePoller
// stamped it with at enqueue time, not the time this goroutine happens to
// dequeue it - queueing delay must not skew which second an update lands
// in.
func (m *Monitor) apply(evt events.Event) {
	switch {
	case evt.Price != nil:
		m.state.ApplyPriceUpdate(evt.Price.Price, evt.Price.Timestamp)
	case evt.Trade != nil:
		t := evt.Trade
		if t.Side == events.Buy {
			m.state.ApplyBuy(t.Actor, t.TokenAmount, t.SolAmount, t.Timestamp)
		} else {
			m.state.ApplySell(t.Actor, t.TokenAmount, t.SolAmount, t.Timestamp)
		}
	}
}

func (m *Monitor) emit(ctx context.Context) {
	snap := m.state.Snapshot()
	rec := sink.Record{
		Mint:            m.project.Mint,
		Timestamp:       m.now(),
		Price:           snap.Price,
		PriceTxEstimate: snap.PriceTxEstimate,
		Holders:         snap.HolderCount,
		TxCount:         snap.TxCount,
		Buyers:          snap.Buyers,
		Sellers:         snap.Sellers,
		ProjectName:     m.project.Name,
		ProjectSymbol:   m.project.Symbol,
	}
	if err := m.sink.Emit(ctx, rec); err != nil {
		m.log.Warn("sink emit failed", "mint", m.project.Mint, "error", err)
	}
}

func (m *Monitor) runRuleEvaluator(ctx context.Context, exit chan<- Verdict) {
	ticker := time.NewTicker(ruleEvalInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := m.state.Snapshot()
			verdict := Evaluate(m.state, snap, m.thresholds, m.now())
			if verdict.ShouldExit {
				select {
				case exit <- verdict:
				default:
				}
				return
			}
		}
	}
}
