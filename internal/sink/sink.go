// Package sink defines the outbound snapshot contract: the Monitor emits
// one Record per processed event, in emission order, to whatever
// downstream collector is wired in. No acknowledgement is required, and a
// nil Sink silently drops every record.
package sink

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Record is one monitored-mint snapshot, emitted in the order the Monitor
// produced it.
type Record struct {
	Mint            solana.PublicKey
	Timestamp       time.Time
	Price           decimal.Decimal
	PriceTxEstimate decimal.Decimal
	Holders         int
	TxCount         int
	Buyers          []solana.PublicKey
	Sellers         []solana.PublicKey
	ProjectName     string
	ProjectSymbol   string
}

// Sink accepts monitor snapshots. Implementations must not block the
// Monitor goroutine for long; a slow downstream should buffer internally.
type Sink interface {
	Emit(ctx context.Context, rec Record) error
}

// Null is a Sink that drops every record; used when no outbound collector
// is configured.
type Null struct{}

// Emit implements Sink by discarding rec.
func (Null) Emit(context.Context, Record) error { return nil }
