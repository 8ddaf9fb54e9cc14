// Package stream owns the single upstream WebSocket subscription to the
// program's block stream: it maintains the subscription across
// disconnects, applies heartbeats, and hands each confirmed transaction to
// the Dispatcher.
package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"

	"github.com/tommyca/pumpwatch/internal/logging"
)

const (
	silenceBeforePing = 20 * time.Second
	reconnectBackoff  = 5 * time.Second
)

// Dispatcher is the subset of the dispatch.Dispatcher the listener depends
// on: a sink for raw, still-undecoded transaction bytes.
type Dispatcher interface {
	DispatchTransaction(raw []byte)
}

// Listener owns the single upstream block-stream subscription.
type Listener struct {
	endpoint  string
	programID solana.PublicKey
	dispatch  Dispatcher
	log       *logging.Logger

	dial func(url string) (*websocket.Conn, error)
}

// New builds a Listener subscribed to programID's instructions over
// endpoint.
func New(endpoint string, programID solana.PublicKey, dispatch Dispatcher, log *logging.Logger) *Listener {
	return &Listener{
		endpoint:  endpoint,
		programID: programID,
		dispatch:  dispatch,
		log:       log,
		dial: func(url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			return conn, err
		},
	}
}

// Run maintains the subscription until ctx is cancelled, reconnecting with
// a fixed back-off after any socket error.
func (l *Listener) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.connectAndListen(ctx); err != nil {
			l.log.Warn("stream disconnected", "error", err, "backoff", reconnectBackoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectBackoff):
		}
	}
}

func (l *Listener) connectAndListen(ctx context.Context) error {
	conn, err := l.dial(l.endpoint)
	if err != nil {
		return fmt.Errorf("stream: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(subscriptionRequest(l.programID)); err != nil {
		return fmt.Errorf("stream: subscribe: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go l.watchContext(ctx, conn, done)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(silenceBeforePing))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// 20s of silence: ping and keep waiting rather than
				// treating the idle period as a disconnect.
				if pingErr := conn.WriteMessage(websocket.PingMessage, nil); pingErr != nil {
					return fmt.Errorf("stream: ping: %w", pingErr)
				}
				continue
			}
			return fmt.Errorf("stream: read: %w", err)
		}

		if err := l.handleMessage(payload); err != nil {
			l.log.Debug("stream: dropping malformed notification", "error", err)
		}
	}
}

// watchContext closes conn if ctx is cancelled before the listener's own
// read loop exits, unblocking ReadMessage.
func (l *Listener) watchContext(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		_ = conn.Close()
	case <-done:
	}
}

type subscribeParams struct {
	MentionsAccountOrProgram string `json:"mentionsAccountOrProgram"`
}

type subscribeOptions struct {
	Commitment                     string `json:"commitment"`
	Encoding                       string `json:"encoding"`
	ShowRewards                    bool   `json:"showRewards"`
	TransactionDetails             string `json:"transactionDetails"`
	MaxSupportedTransactionVersion int    `json:"maxSupportedTransactionVersion"`
}

type subscribeRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func subscriptionRequest(programID solana.PublicKey) subscribeRequest {
	return subscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "blockSubscribe",
		Params: []interface{}{
			subscribeParams{MentionsAccountOrProgram: programID.String()},
			subscribeOptions{
				Commitment:                     "confirmed",
				Encoding:                       "base64",
				ShowRewards:                    false,
				TransactionDetails:             "full",
				MaxSupportedTransactionVersion: 0,
			},
		},
	}
}

type blockNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Block struct {
					Transactions []transactionEntry `json:"transactions"`
				} `json:"block"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

type transactionEntry struct {
	Transaction [2]json.RawMessage `json:"transaction"`
	Meta        struct {
		Err json.RawMessage `json:"err"`
	} `json:"meta"`
}

func (l *Listener) handleMessage(payload []byte) error {
	var notif blockNotification
	if err := json.Unmarshal(payload, &notif); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if notif.Method != "blockNotification" {
		return nil
	}

	for _, entry := range notif.Params.Result.Value.Block.Transactions {
		if string(entry.Meta.Err) != "" && string(entry.Meta.Err) != "null" {
			continue
		}
		var encoded string
		if err := json.Unmarshal(entry.Transaction[0], &encoded); err != nil {
			l.log.Debug("stream: undecodable transaction entry", "error", err)
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			l.log.Debug("stream: base64 decode failed", "error", err)
			continue
		}
		l.dispatch.DispatchTransaction(raw)
	}
	return nil
}
