// Package events defines the element types carried on a mint's monitor
// queue: trades routed by the Dispatcher and price updates published by the
// CurvePoller.
package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gagliardetto/solana-go"
)

// Side distinguishes a buy from a sell instruction.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// TradeEvent is a decoded buy or sell instruction routed to a mint's
// monitor queue.
type TradeEvent struct {
	Side        Side
	Actor       solana.PublicKey
	TokenAmount decimal.Decimal
	SolAmount   decimal.Decimal
	Signature   solana.Signature
	Timestamp   time.Time
}

// PriceUpdate is a bonding-curve-derived spot price published by the
// CurvePoller.
type PriceUpdate struct {
	Price     decimal.Decimal
	Timestamp time.Time
}

// Event is the sum type carried on a MonitorQueue: exactly one of Trade or
// Price is non-nil.
type Event struct {
	Trade *TradeEvent
	Price *PriceUpdate
}
