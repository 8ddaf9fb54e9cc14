package wire

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction is one instruction of a decoded transaction, with its account
// list already resolved from the message's account_keys so callers never
// re-index into the transaction.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
}

// Transaction is the subset of a decoded versioned transaction this
// pipeline reads: account keys, signatures, and the ordered instruction
// list, each instruction already carrying its resolved account addresses.
type Transaction struct {
	Signatures   []solana.Signature
	AccountKeys  []solana.PublicKey
	Instructions []Instruction
}

// DecodeTransaction parses the versioned-transaction wire form carried by a
// base64-decoded blockNotification entry. A malformed transaction is
// reported as an error; the caller is expected to drop it and keep
// processing the rest of the block.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("wire: decode transaction: %w", err)
	}

	keys := tx.Message.AccountKeys
	instructions := make([]Instruction, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			continue
		}
		accounts := make([]solana.PublicKey, 0, len(ix.Accounts))
		for _, idx := range ix.Accounts {
			if int(idx) >= len(keys) {
				continue
			}
			accounts = append(accounts, keys[idx])
		}
		instructions = append(instructions, Instruction{
			ProgramID: keys[ix.ProgramIDIndex],
			Accounts:  accounts,
			Data:      ix.Data,
		})
	}

	return &Transaction{
		Signatures:   tx.Signatures,
		AccountKeys:  keys,
		Instructions: instructions,
	}, nil
}

// Discriminator returns the first 8 bytes of instruction data, or the zero
// discriminator if data is too short.
func (ix Instruction) Discriminator() Discriminator {
	var d Discriminator
	if len(ix.Data) >= 8 {
		copy(d[:], ix.Data[:8])
	}
	return d
}
