package wire

import "testing"

func TestFastContainsFindsKnownDiscriminator(t *testing.T) {
	raw := append([]byte{0xde, 0xad, 0xbe, 0xef}, BuyDiscriminator[:]...)
	raw = append(raw, 0x01, 0x02)

	if !FastContains(raw, KnownDiscriminators) {
		t.Fatal("expected buy discriminator to be found")
	}
}

func TestFastContainsRejectsUnrelatedBytes(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if FastContains(raw, KnownDiscriminators) {
		t.Fatal("expected no known discriminator to be found")
	}
}

func TestFastContainsEmptyHaystack(t *testing.T) {
	if FastContains(nil, KnownDiscriminators) {
		t.Fatal("expected empty haystack to never match")
	}
}

func TestDiscriminatorOfShortDataIsZero(t *testing.T) {
	ix := Instruction{Data: []byte{1, 2, 3}}
	var want Discriminator
	if ix.Discriminator() != want {
		t.Fatal("expected zero discriminator for short instruction data")
	}
}
