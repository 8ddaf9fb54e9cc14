package wire

import (
	"encoding/binary"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecodeTradeScalesAmounts(t *testing.T) {
	data := make([]byte, 24)
	binary.LittleEndian.PutUint64(data[8:16], 1_500_000) // 1.5 tokens at 6 decimals
	binary.LittleEndian.PutUint64(data[16:24], 250_000_000) // 0.25 SOL

	got, err := DecodeTrade(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TokenAmount.Equal(decimal.New(15, -1)) {
		t.Fatalf("expected 1.5 tokens, got %s", got.TokenAmount)
	}
	if !got.SolAmount.Equal(decimal.New(25, -2)) {
		t.Fatalf("expected 0.25 SOL, got %s", got.SolAmount)
	}
}

func TestDecodeTradeRejectsShortData(t *testing.T) {
	_, err := DecodeTrade(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for short trade data")
	}
}
