// Package watcher implements the CreationFilter: it consumes creation
// candidates from the dispatcher's watcher queue, applies optional
// name/creator predicates, and hands survivors back to the dispatcher for
// registration.
package watcher

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/tommyca/pumpwatch/internal/dispatch"
	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/project"
	"github.com/tommyca/pumpwatch/internal/ring"
)

// recentMintCapacity is the size of the recent-mint de-duplication index.
const recentMintCapacity = 1000

// Registrar is the subset of the Dispatcher the CreationFilter depends on.
type Registrar interface {
	RegisterProject(p *project.Project) (chan events.Event, bool)
}

// Filter is the CreationFilter: it owns the recent-mint index and the
// optional name/creator predicates applied to survivors of the duplicate
// check.
type Filter struct {
	log *logging.Logger

	recentMints *ring.Dedupe[solana.PublicKey]

	nameContains     string
	creatorAddress   solana.PublicKey
	hasCreatorFilter bool
}

// Option configures optional predicates on a Filter.
type Option func(*Filter)

// WithNameContains rejects creations whose name and symbol, concatenated,
// do not contain substr (case-insensitive).
func WithNameContains(substr string) Option {
	return func(f *Filter) { f.nameContains = strings.ToLower(substr) }
}

// WithCreatorAddress rejects creations whose user account does not equal
// creator exactly.
func WithCreatorAddress(creator solana.PublicKey) Option {
	return func(f *Filter) {
		f.creatorAddress = creator
		f.hasCreatorFilter = true
	}
}

// New builds a CreationFilter with the given optional predicates.
func New(log *logging.Logger, opts ...Option) *Filter {
	f := &Filter{
		log:         log,
		recentMints: ring.New[solana.PublicKey](recentMintCapacity),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run consumes candidates until ctx is cancelled or queue is closed,
// registering survivors with reg.
func (f *Filter) Run(ctx context.Context, queue <-chan dispatch.CreateCandidate, reg Registrar) {
	for {
		select {
		case <-ctx.Done():
			return
		case cand, ok := <-queue:
			if !ok {
				return
			}
			f.process(cand, reg)
		}
	}
}

func (f *Filter) process(cand dispatch.CreateCandidate, reg Registrar) {
	args := cand.Args

	if !f.recentMints.Add(args.Mint) {
		return
	}

	if f.nameContains != "" {
		haystack := strings.ToLower(args.Name + args.Symbol)
		if !strings.Contains(haystack, f.nameContains) {
			return
		}
	}
	if f.hasCreatorFilter && args.User != f.creatorAddress {
		return
	}

	p := &project.Project{
		Mint:                   args.Mint,
		BondingCurve:           args.BondingCurve,
		AssociatedBondingCurve: args.AssociatedBondingCurve,
		Creator:                args.User,
		Name:                   args.Name,
		Symbol:                 args.Symbol,
		URI:                    args.URI,
	}
	if _, fresh := reg.RegisterProject(p); fresh {
		f.log.Info("registered project", "mint", p.Mint, "name", p.Name, "symbol", p.Symbol)
	}
}
