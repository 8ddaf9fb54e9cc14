// Package curve decodes bonding-curve account data and derives spot price,
// and provides a rate-limited client for fetching that account data over
// RPC.
package curve

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tommyca/pumpwatch/internal/wire"
)

// ErrInvalidCurve is returned when a bonding-curve state has a non-positive
// virtual reserve, making spot price undefined.
var ErrInvalidCurve = errors.New("curve: invalid bonding curve state: zero or negative virtual reserves")

const stateLen = 41 // 5 * 8 bytes of reserves/supply + 1 byte complete flag

var lamportsPerSOL = decimal.New(1, 9)
var tokenUnit = decimal.New(1, 6)

// State is the parsed bonding-curve account layout: five 64-bit
// little-endian unsigned reserve/supply fields followed by a completion
// flag, immediately after the 8-byte account discriminator.
type State struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// Parse verifies the account discriminator and decodes the fixed-layout
// bonding-curve struct from raw account data.
func Parse(data []byte) (*State, error) {
	if len(data) < 8+stateLen {
		return nil, fmt.Errorf("curve: account data too short (%d bytes, need %d)", len(data), 8+stateLen)
	}
	var disc wire.Discriminator
	copy(disc[:], data[:8])
	if disc != wire.BondingCurveStateDiscriminator {
		return nil, fmt.Errorf("curve: unexpected account discriminator")
	}

	body := data[8:]
	s := &State{
		VirtualTokenReserves: binary.LittleEndian.Uint64(body[0:8]),
		VirtualSolReserves:   binary.LittleEndian.Uint64(body[8:16]),
		RealTokenReserves:    binary.LittleEndian.Uint64(body[16:24]),
		RealSolReserves:      binary.LittleEndian.Uint64(body[24:32]),
		TokenTotalSupply:     binary.LittleEndian.Uint64(body[32:40]),
		Complete:             body[40] != 0,
	}
	return s, nil
}

// Price computes spot price as (virtual_sol_reserves / 10^9) /
// (virtual_token_reserves / 10^6). Undefined, and an error, if either
// virtual reserve is non-positive.
func (s *State) Price() (decimal.Decimal, error) {
	if s.VirtualTokenReserves == 0 || s.VirtualSolReserves == 0 {
		return decimal.Decimal{}, ErrInvalidCurve
	}
	sol := decimal.NewFromInt(int64(s.VirtualSolReserves)).Div(lamportsPerSOL)
	tokens := decimal.NewFromInt(int64(s.VirtualTokenReserves)).Div(tokenUnit)
	return sol.Div(tokens), nil
}
