package curve

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyca/pumpwatch/internal/wire"
)

func encodeState(t *testing.T, s State) []byte {
	t.Helper()
	buf := make([]byte, 8+stateLen)
	copy(buf[:8], wire.BondingCurveStateDiscriminator[:])
	binary.LittleEndian.PutUint64(buf[8:16], s.VirtualTokenReserves)
	binary.LittleEndian.PutUint64(buf[16:24], s.VirtualSolReserves)
	binary.LittleEndian.PutUint64(buf[24:32], s.RealTokenReserves)
	binary.LittleEndian.PutUint64(buf[32:40], s.RealSolReserves)
	binary.LittleEndian.PutUint64(buf[40:48], s.TokenTotalSupply)
	if s.Complete {
		buf[48] = 1
	}
	return buf
}

func TestParseRoundTrips(t *testing.T) {
	want := State{
		VirtualTokenReserves: 1_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    500_000_000_000,
		RealSolReserves:      15_000_000_000,
		TokenTotalSupply:     1_000_000_000_000,
		Complete:             false,
	}
	got, err := Parse(encodeState(t, want))
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestParseRejectsWrongDiscriminator(t *testing.T) {
	buf := encodeState(t, State{VirtualTokenReserves: 1, VirtualSolReserves: 1})
	buf[0] ^= 0xFF
	_, err := Parse(buf)
	assert.Error(t, err)
}

func TestParseRejectsShortData(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPriceComputesRatio(t *testing.T) {
	s := &State{VirtualTokenReserves: 1_000_000_000_000, VirtualSolReserves: 30_000_000_000}
	price, err := s.Price()
	require.NoError(t, err)
	// (30_000_000_000 / 1e9) / (1_000_000_000_000 / 1e6) = 30 / 1_000_000 = 0.00003
	assert.Equal(t, "0.00003", price.String())
}

func TestPriceRejectsZeroReserves(t *testing.T) {
	cases := []State{
		{VirtualTokenReserves: 0, VirtualSolReserves: 1},
		{VirtualTokenReserves: 1, VirtualSolReserves: 0},
	}
	for _, s := range cases {
		_, err := s.Price()
		assert.ErrorIs(t, err, ErrInvalidCurve)
	}
}
