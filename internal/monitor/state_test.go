package monitor

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

func TestApplyBuyThenSellTracksHolderTrajectory(t *testing.T) {
	s := NewState(time.Now())
	actor := solana.NewWallet().PublicKey()
	now := time.Now()

	if s.Snapshot().HolderCount != 0 {
		t.Fatal("expected 0 holders initially")
	}

	s.ApplyBuy(actor, decimal.NewFromInt(10), decimal.NewFromFloat(0.5), now)
	if got := s.Snapshot().HolderCount; got != 1 {
		t.Fatalf("expected 1 holder after buy, got %d", got)
	}

	s.ApplyBuy(actor, decimal.NewFromInt(5), decimal.NewFromFloat(0.1), now)
	if got := s.Snapshot().HolderCount; got != 1 {
		t.Fatalf("expected holder count to stay at 1 on repeat buy, got %d", got)
	}

	s.ApplySell(actor, decimal.NewFromInt(15), decimal.NewFromFloat(0.6), now)
	if got := s.Snapshot().HolderCount; got != 0 {
		t.Fatalf("expected 0 holders after full sell, got %d", got)
	}
}

func TestApplySellNeverGoesNegativeBalance(t *testing.T) {
	s := NewState(time.Now())
	actor := solana.NewWallet().PublicKey()
	now := time.Now()

	s.ApplySell(actor, decimal.NewFromInt(100), decimal.NewFromFloat(1), now)

	bal, ok := s.balances[actor]
	if !ok || bal.IsNegative() {
		t.Fatalf("expected non-negative balance, got %s", bal)
	}
	if s.holderCount != 0 {
		t.Fatalf("expected holder count to stay 0, got %d", s.holderCount)
	}
}

func TestPriceTxEstimateIsRatioOfCumulativeBuys(t *testing.T) {
	s := NewState(time.Now())
	actor := solana.NewWallet().PublicKey()
	now := time.Now()

	s.ApplyBuy(actor, decimal.NewFromInt(10), decimal.NewFromInt(2), now)
	s.ApplyBuy(actor, decimal.NewFromInt(10), decimal.NewFromInt(2), now)

	snap := s.Snapshot()
	want := decimal.NewFromInt(4).Div(decimal.NewFromInt(20))
	if !snap.PriceTxEstimate.Equal(want) {
		t.Fatalf("expected price_tx_estimate %s, got %s", want, snap.PriceTxEstimate)
	}
}

func TestTxCountIncrementsOnEveryTrade(t *testing.T) {
	s := NewState(time.Now())
	actor := solana.NewWallet().PublicKey()
	now := time.Now()

	s.ApplyBuy(actor, decimal.NewFromInt(1), decimal.NewFromInt(1), now)
	s.ApplySell(actor, decimal.NewFromInt(1), decimal.NewFromInt(1), now)

	if got := s.Snapshot().TxCount; got != 2 {
		t.Fatalf("expected tx_count 2, got %d", got)
	}
}
