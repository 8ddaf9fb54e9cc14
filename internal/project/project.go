// Package project defines the registered-mint record shared by the
// Dispatcher, CreationFilter, and CurvePoller.
package project

import "github.com/gagliardetto/solana-go"

// Project is the definition of a token the pipeline has decided to watch,
// produced by CreationFilter and consumed by the Dispatcher, CurvePoller,
// and Monitor.
type Project struct {
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	Creator                solana.PublicKey
	Name                   string
	Symbol                 string
	URI                    string
}
