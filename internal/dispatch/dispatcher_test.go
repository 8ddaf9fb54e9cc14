package dispatch

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/project"
	"github.com/tommyca/pumpwatch/internal/wire"
)

func testDispatcher() *Dispatcher {
	programID := solana.NewWallet().PublicKey()
	return New(programID, logging.New("error"))
}

func tradeInstruction(disc wire.Discriminator, mint, actor solana.PublicKey) wire.Instruction {
	data := make([]byte, 24)
	copy(data[:8], disc[:])
	return wire.Instruction{
		Accounts: []solana.PublicKey{
			solana.NewWallet().PublicKey(), // 0 global
			solana.NewWallet().PublicKey(), // 1 feeRecipient
			mint,                           // 2 mint
			solana.NewWallet().PublicKey(), // 3 bondingCurve
			solana.NewWallet().PublicKey(), // 4 associatedBondingCurve
			solana.NewWallet().PublicKey(), // 5 associatedUser
			actor,                          // 6 user/actor
		},
		Data: data,
	}
}

func TestRegisterProjectIsIdempotent(t *testing.T) {
	d := testDispatcher()
	p := &project.Project{Mint: solana.NewWallet().PublicKey()}

	q1, fresh1 := d.RegisterProject(p)
	q2, fresh2 := d.RegisterProject(p)

	assert.Equal(t, q1, q2, "expected second registration to return the same queue")
	assert.True(t, fresh1, "expected first registration to be fresh")
	assert.False(t, fresh2, "expected second registration to not be fresh")
	assert.True(t, d.IsMonitored(p.Mint))
}

func TestUnregisterProjectRemovesEverything(t *testing.T) {
	d := testDispatcher()
	p := &project.Project{Mint: solana.NewWallet().PublicKey()}
	d.RegisterProject(p)

	d.UnregisterProject(p.Mint)

	assert.False(t, d.IsMonitored(p.Mint))
	assert.Nil(t, d.MonitorQueue(p.Mint))
	_, ok := d.Projects()[p.Mint]
	assert.False(t, ok, "expected project definition to be gone")
}

func TestDispatchInstructionRoutesTradeToMonitoredMint(t *testing.T) {
	d := testDispatcher()
	p := &project.Project{Mint: solana.NewWallet().PublicKey()}
	queue, _ := d.RegisterProject(p)
	actor := solana.NewWallet().PublicKey()

	ix := tradeInstruction(wire.BuyDiscriminator, p.Mint, actor)
	d.dispatchInstruction(nil, ix, solana.Signature{})

	select {
	case evt := <-queue:
		require.NotNil(t, evt.Trade)
		assert.Equal(t, actor, evt.Trade.Actor)
		assert.Equal(t, events.Buy, evt.Trade.Side)
	default:
		t.Fatal("expected a queued trade event")
	}

	assert.False(t, d.LastActivity(p.Mint).IsZero(), "expected activity clock to be updated")
}

func TestDispatchInstructionDropsTradeForUnmonitoredMint(t *testing.T) {
	d := testDispatcher()
	unmonitored := solana.NewWallet().PublicKey()
	ix := tradeInstruction(wire.SellDiscriminator, unmonitored, solana.NewWallet().PublicKey())

	d.dispatchInstruction(nil, ix, solana.Signature{})

	assert.True(t, d.LastActivity(unmonitored).IsZero(), "expected no activity to be recorded for an unmonitored mint")
}

func TestDispatchInstructionRoutesCreateToWatcherQueue(t *testing.T) {
	d := testDispatcher()

	data := make([]byte, 8)
	data = append(data, borshStringBytes("Name")...)
	data = append(data, borshStringBytes("SYM")...)
	data = append(data, borshStringBytes("uri")...)
	copy(data[:8], wire.CreateDiscriminator[:])

	accounts := make([]solana.PublicKey, 8)
	for i := range accounts {
		accounts[i] = solana.NewWallet().PublicKey()
	}
	ix := wire.Instruction{Accounts: accounts, Data: data}

	d.dispatchInstruction(nil, ix, solana.Signature{})

	select {
	case cand := <-d.WatcherQueue():
		assert.Equal(t, accounts[0], cand.Args.Mint, "expected mint from positional account 0")
	case <-time.After(time.Second):
		t.Fatal("expected a create candidate on the watcher queue")
	}
}

func borshStringBytes(s string) []byte {
	buf := make([]byte, 4+len(s))
	buf[0] = byte(len(s))
	copy(buf[4:], s)
	return buf
}
