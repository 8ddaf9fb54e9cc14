// Package dispatch routes decoded instructions by discriminator and mint to
// the correct consumer: newly observed creations to the watcher queue,
// trades to the owning mint's monitor queue. It also owns the monitored-set
// lifecycle and per-mint activity tracking.
package dispatch

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/project"
	"github.com/tommyca/pumpwatch/internal/ring"
	"github.com/tommyca/pumpwatch/internal/wire"
)

// monitorQueueCapacity bounds the otherwise unbounded-in-principle monitor
// queue so a stalled Monitor can't grow memory without limit.
const monitorQueueCapacity = 4096

// watcherQueueCapacity bounds the creation-candidate queue feeding the
// CreationFilter.
const watcherQueueCapacity = 1024

// seenSignaturesCapacity is the duplicate-suppression index size.
const seenSignaturesCapacity = 10_000

// mintAccountIndex is the positional index of the "mint" account in both
// the buy and sell instruction account lists, per the program's IDL.
const mintAccountIndex = 2

// actorAccountIndex is the positional index of the trading actor (signer)
// account in both the buy and sell instruction account lists.
const actorAccountIndex = 6

// CreateCandidate is a decoded creation instruction handed to the
// CreationFilter via the watcher queue.
type CreateCandidate struct {
	Args      *wire.CreateArgs
	Signature solana.Signature
}

// Dispatcher owns the monitored-set lifecycle, the duplicate-suppression
// index, per-mint activity clocks, and the queues that fan decoded
// instructions out to their consumers.
type Dispatcher struct {
	log *logging.Logger

	programID solana.PublicKey

	mu            sync.RWMutex
	monitoredSet  map[solana.PublicKey]struct{}
	projects      map[solana.PublicKey]*project.Project
	monitorQueues map[solana.PublicKey]chan events.Event
	activityClock map[solana.PublicKey]time.Time

	seenSignatures *ring.Dedupe[solana.Signature]

	watcherQueue chan CreateCandidate

	now func() time.Time
}

// New builds a Dispatcher scoped to a single program address.
func New(programID solana.PublicKey, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		log:            log,
		programID:      programID,
		monitoredSet:   make(map[solana.PublicKey]struct{}),
		projects:       make(map[solana.PublicKey]*project.Project),
		monitorQueues:  make(map[solana.PublicKey]chan events.Event),
		activityClock:  make(map[solana.PublicKey]time.Time),
		seenSignatures: ring.New[solana.Signature](seenSignaturesCapacity),
		watcherQueue:   make(chan CreateCandidate, watcherQueueCapacity),
		now:            time.Now,
	}
}

// WatcherQueue returns the channel the CreationFilter consumes.
func (d *Dispatcher) WatcherQueue() <-chan CreateCandidate {
	return d.watcherQueue
}

// DispatchTransaction implements the fast-reject / decode / dedupe / route
// pipeline of §4.4. Decode and per-instruction errors are logged and
// absorbed: a malformed instruction or transaction never stops the block
// loop.
func (d *Dispatcher) DispatchTransaction(raw []byte) {
	if !wire.FastContains(raw, wire.KnownDiscriminators) {
		return
	}

	tx, err := wire.DecodeTransaction(raw)
	if err != nil {
		d.log.Debug("dropping undecodable transaction", "error", err)
		return
	}
	if len(tx.Signatures) == 0 {
		return
	}

	sig := tx.Signatures[0]
	if !d.seenSignatures.Add(sig) {
		return
	}

	for _, ix := range tx.Instructions {
		if ix.ProgramID != d.programID {
			continue
		}
		d.dispatchInstruction(tx, ix, sig)
	}
}

func (d *Dispatcher) dispatchInstruction(tx *wire.Transaction, ix wire.Instruction, sig solana.Signature) {
	disc := ix.Discriminator()

	switch disc {
	case wire.CreateDiscriminator:
		args, err := wire.DecodeCreate(ix.Data, ix.Accounts)
		if err != nil {
			d.log.Debug("dropping undecodable create instruction", "error", err)
			return
		}
		select {
		case d.watcherQueue <- CreateCandidate{Args: args, Signature: sig}:
		default:
			d.log.Warn("watcher queue full, dropping create candidate", "mint", args.Mint)
		}

	case wire.BuyDiscriminator, wire.SellDiscriminator:
		if mintAccountIndex >= len(ix.Accounts) || actorAccountIndex >= len(ix.Accounts) {
			return
		}
		mint := ix.Accounts[mintAccountIndex]

		d.mu.RLock()
		_, monitored := d.monitoredSet[mint]
		queue := d.monitorQueues[mint]
		d.mu.RUnlock()
		if !monitored || queue == nil {
			return
		}

		trade, err := wire.DecodeTrade(ix.Data)
		if err != nil {
			d.log.Debug("dropping undecodable trade instruction", "error", err)
			return
		}

		side := events.Buy
		if disc == wire.SellDiscriminator {
			side = events.Sell
		}
		evt := events.Event{Trade: &events.TradeEvent{
			Side:        side,
			Actor:       ix.Accounts[actorAccountIndex],
			TokenAmount: trade.TokenAmount,
			SolAmount:   trade.SolAmount,
			Signature:   sig,
			Timestamp:   d.now(),
		}}

		d.mu.Lock()
		d.activityClock[mint] = d.now()
		d.mu.Unlock()

		select {
		case queue <- evt:
		default:
			d.log.Warn("monitor queue full, dropping trade event", "mint", mint)
		}
	}
}

// RegisterProject adds mint to the monitored set, stores its definition,
// and creates its monitor queue on first registration. Idempotent: a
// second registration of an already-monitored mint is a no-op
// (RegisterConflict) that returns the existing queue. The bool return
// reports whether this call performed a fresh registration, so a caller
// that spawns one Monitor per registration doesn't spawn a second one
// racing the first as consumer of the same queue.
func (d *Dispatcher) RegisterProject(p *project.Project) (chan events.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.monitoredSet[p.Mint]; exists {
		return d.monitorQueues[p.Mint], false
	}

	d.monitoredSet[p.Mint] = struct{}{}
	d.projects[p.Mint] = p
	queue := make(chan events.Event, monitorQueueCapacity)
	d.monitorQueues[p.Mint] = queue
	return queue, true
}

// UnregisterProject removes mint from the monitored set, its project
// definition, and its monitor queue atomically. Safe to call more than
// once.
func (d *Dispatcher) UnregisterProject(mint solana.PublicKey) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.monitoredSet, mint)
	delete(d.projects, mint)
	delete(d.monitorQueues, mint)
	delete(d.activityClock, mint)
}

// Projects returns a snapshot of the currently registered project
// definitions, keyed by mint. Used by the CurvePoller to iterate the
// working set each sweep.
func (d *Dispatcher) Projects() map[solana.PublicKey]*project.Project {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot := make(map[solana.PublicKey]*project.Project, len(d.projects))
	for mint, p := range d.projects {
		snapshot[mint] = p
	}
	return snapshot
}

// MonitorQueue returns the queue for mint, or nil if it is not currently
// monitored.
func (d *Dispatcher) MonitorQueue(mint solana.PublicKey) chan events.Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.monitorQueues[mint]
}

// LastActivity returns the last time a trade was routed to mint's monitor
// queue, or the zero time if none has been recorded.
func (d *Dispatcher) LastActivity(mint solana.PublicKey) time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.activityClock[mint]
}

// IsMonitored reports whether mint is currently in the monitored set.
func (d *Dispatcher) IsMonitored(mint solana.PublicKey) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.monitoredSet[mint]
	return ok
}
