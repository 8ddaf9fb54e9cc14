// Package wire decodes raw transaction bytes into the instructions this
// pipeline cares about, without paying for a full transaction decode when a
// fast byte-substring scan already rules a transaction out.
package wire

import "encoding/binary"

// Discriminator is the fixed 8-byte instruction or account-data tag that
// identifies an instruction/account layout.
type Discriminator [8]byte

func discriminator(v uint64) Discriminator {
	var d Discriminator
	binary.LittleEndian.PutUint64(d[:], v)
	return d
}

// Fixed discriminators for the pump.fun program, authoritative per the
// program's IDL.
var (
	CreateDiscriminator            = discriminator(8576854823835016728)
	BuyDiscriminator               = discriminator(16927863322537952870)
	SellDiscriminator              = discriminator(12502976635542562355)
	BondingCurveStateDiscriminator = discriminator(6966180631402821399)
)

// KnownDiscriminators is the set fast_contains scans for.
var KnownDiscriminators = []Discriminator{CreateDiscriminator, BuyDiscriminator, SellDiscriminator}

// FastContains reports whether any known instruction discriminator appears
// anywhere in raw — a byte-substring pre-filter that lets the caller skip
// full transaction decoding for transactions that can't possibly matter.
func FastContains(raw []byte, discriminators []Discriminator) bool {
	for _, d := range discriminators {
		if containsBytes(raw, d[:]) {
			return true
		}
	}
	return false
}

func containsBytes(haystack, needle []byte) bool {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return true
		}
	}
	return false
}
