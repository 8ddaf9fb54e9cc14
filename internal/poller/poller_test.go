package poller

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/tommyca/pumpwatch/internal/curve"
	"github.com/tommyca/pumpwatch/internal/events"
	"github.com/tommyca/pumpwatch/internal/logging"
	"github.com/tommyca/pumpwatch/internal/project"
	"github.com/tommyca/pumpwatch/internal/wire"
)

func encodeCurveAccount(virtualTokens, virtualSol uint64) []byte {
	buf := make([]byte, 8+41)
	copy(buf[:8], wire.BondingCurveStateDiscriminator[:])
	binary.LittleEndian.PutUint64(buf[8:16], virtualTokens)
	binary.LittleEndian.PutUint64(buf[16:24], virtualSol)
	return buf
}

type fakeRegistry struct {
	projects map[solana.PublicKey]*project.Project
	activity map[solana.PublicKey]time.Time
	queues   map[solana.PublicKey]chan events.Event
}

func (r *fakeRegistry) Projects() map[solana.PublicKey]*project.Project { return r.projects }
func (r *fakeRegistry) LastActivity(mint solana.PublicKey) time.Time    { return r.activity[mint] }
func (r *fakeRegistry) MonitorQueue(mint solana.PublicKey) chan events.Event {
	return r.queues[mint]
}

func curveServer(t *testing.T, virtualTokens, virtualSol uint64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := encodeCurveAccount(virtualTokens, virtualSol)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]interface{}{
				"value": map[string]interface{}{
					"data": []string{base64.StdEncoding.EncodeToString(account), "base64"},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestPollOnePublishesPriceUpdate(t *testing.T) {
	srv := curveServer(t, 1_000_000_000_000, 30_000_000_000)
	defer srv.Close()

	mint := solana.NewWallet().PublicKey()
	proj := &project.Project{Mint: mint, BondingCurve: solana.NewWallet().PublicKey()}
	queue := make(chan events.Event, 1)
	reg := &fakeRegistry{
		projects: map[solana.PublicKey]*project.Project{mint: proj},
		activity: map[solana.PublicKey]time.Time{mint: time.Now()},
		queues:   map[solana.PublicKey]chan events.Event{mint: queue},
	}

	p := New(curve.NewClient(srv.URL, 100, 10), reg, logging.New("error"))
	p.pollOne(context.Background(), mint, proj)

	select {
	case evt := <-queue:
		if evt.Price == nil {
			t.Fatal("expected a price update")
		}
	default:
		t.Fatal("expected a price update to be queued")
	}
}

func TestPollOneSuppressesIdleMint(t *testing.T) {
	srv := curveServer(t, 1_000_000_000_000, 30_000_000_000)
	defer srv.Close()

	mint := solana.NewWallet().PublicKey()
	proj := &project.Project{Mint: mint, BondingCurve: solana.NewWallet().PublicKey()}
	queue := make(chan events.Event, 1)
	reg := &fakeRegistry{
		projects: map[solana.PublicKey]*project.Project{mint: proj},
		activity: map[solana.PublicKey]time.Time{mint: time.Now().Add(-20 * time.Second)},
		queues:   map[solana.PublicKey]chan events.Event{mint: queue},
	}

	p := New(curve.NewClient(srv.URL, 100, 10), reg, logging.New("error"))
	p.pollOne(context.Background(), mint, proj)

	select {
	case <-queue:
		t.Fatal("expected idle mint to be suppressed")
	default:
	}
}

func TestPollOneEnforcesPollFloor(t *testing.T) {
	srv := curveServer(t, 1_000_000_000_000, 30_000_000_000)
	defer srv.Close()

	mint := solana.NewWallet().PublicKey()
	proj := &project.Project{Mint: mint, BondingCurve: solana.NewWallet().PublicKey()}
	queue := make(chan events.Event, 2)
	reg := &fakeRegistry{
		projects: map[solana.PublicKey]*project.Project{mint: proj},
		activity: map[solana.PublicKey]time.Time{mint: time.Now()},
		queues:   map[solana.PublicKey]chan events.Event{mint: queue},
	}

	p := New(curve.NewClient(srv.URL, 100, 10), reg, logging.New("error"))
	p.pollOne(context.Background(), mint, proj)
	p.pollOne(context.Background(), mint, proj) // immediate second poll, should be floor-suppressed

	count := 0
	for {
		select {
		case <-queue:
			count++
			continue
		default:
		}
		break
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 price update within the poll floor, got %d", count)
	}
}
