package wire

import "testing"

func TestDecodeTransactionRejectsGarbage(t *testing.T) {
	_, err := DecodeTransaction([]byte{0x01, 0x02, 0x03})
	if err == nil {
		t.Fatal("expected garbage bytes to fail decoding")
	}
}

func TestDecodeTransactionRejectsEmpty(t *testing.T) {
	_, err := DecodeTransaction(nil)
	if err == nil {
		t.Fatal("expected empty input to fail decoding")
	}
}
