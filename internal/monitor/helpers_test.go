package monitor

import "github.com/gagliardetto/solana-go"

func randomActor() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}
