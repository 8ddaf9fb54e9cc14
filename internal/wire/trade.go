package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeArgs is the decoded payload common to buy and sell instructions.
type TradeArgs struct {
	TokenAmount decimal.Decimal // fixed decimals = 6
	SolAmount   decimal.Decimal // lamports scaled by 10^9
}

// DecodeTrade parses a buy or sell instruction: at offset 8 a 64-bit
// little-endian raw token amount, at offset 16 a 64-bit little-endian
// lamport amount.
func DecodeTrade(data []byte) (*TradeArgs, error) {
	if len(data) < 24 {
		return nil, fmt.Errorf("wire: trade instruction data too short (%d bytes, need 24)", len(data))
	}

	rawTokens := binary.LittleEndian.Uint64(data[8:16])
	rawLamports := binary.LittleEndian.Uint64(data[16:24])

	return &TradeArgs{
		TokenAmount: decimal.New(int64(rawTokens), -6),
		SolAmount:   decimal.New(int64(rawLamports), -9),
	}, nil
}
