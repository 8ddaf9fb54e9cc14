package wire

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// CreateArgs is the decoded payload of a pump.fun token-creation
// instruction: the string arguments from the instruction data, plus the
// positional accounts that identify the new mint and its bonding curve.
type CreateArgs struct {
	Name   string
	Symbol string
	URI    string

	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	User                   solana.PublicKey
}

// accountIndex positions for the create instruction's account list, per the
// program's IDL.
const (
	createAccountMint                   = 0
	createAccountBondingCurve           = 2
	createAccountAssociatedBondingCurve = 3
	createAccountUser                   = 7
)

// DecodeCreate parses a create instruction: after the 8-byte discriminator,
// three consecutive length-prefixed UTF-8 strings (name, symbol, uri), then
// the mint/bondingCurve/associatedBondingCurve/user accounts are read from
// their fixed positions in accounts.
func DecodeCreate(data []byte, accounts []solana.PublicKey) (*CreateArgs, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("wire: create instruction data too short (%d bytes)", len(data))
	}
	if accounts == nil || len(accounts) <= createAccountUser {
		return nil, fmt.Errorf("wire: create instruction has %d accounts, need > %d", len(accounts), createAccountUser)
	}

	decoder := bin.NewBorshDecoder(data[8:])

	name, err := decoder.ReadString()
	if err != nil {
		return nil, fmt.Errorf("wire: create.name: %w", err)
	}
	symbol, err := decoder.ReadString()
	if err != nil {
		return nil, fmt.Errorf("wire: create.symbol: %w", err)
	}
	uri, err := decoder.ReadString()
	if err != nil {
		return nil, fmt.Errorf("wire: create.uri: %w", err)
	}

	return &CreateArgs{
		Name:                   name,
		Symbol:                 symbol,
		URI:                    uri,
		Mint:                   accounts[createAccountMint],
		BondingCurve:           accounts[createAccountBondingCurve],
		AssociatedBondingCurve: accounts[createAccountAssociatedBondingCurve],
		User:                   accounts[createAccountUser],
	}, nil
}
