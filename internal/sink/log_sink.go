package sink

import (
	"context"

	"github.com/tommyca/pumpwatch/internal/logging"
)

// LogSink emits every record as a structured log line. It is the default
// outbound collector when no other downstream is configured; an operator
// tailing the process log sees one line per snapshot, per monitored mint.
type LogSink struct {
	log *logging.Logger
}

// NewLogSink builds a LogSink writing through log.
func NewLogSink(log *logging.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit implements Sink.
func (s *LogSink) Emit(_ context.Context, rec Record) error {
	s.log.Info("snapshot",
		"mint", rec.Mint.String(),
		"name", rec.ProjectName,
		"symbol", rec.ProjectSymbol,
		"price", rec.Price.String(),
		"price_tx_estimate", rec.PriceTxEstimate.String(),
		"holders", rec.Holders,
		"tx_count", rec.TxCount,
		"buyers", len(rec.Buyers),
		"sellers", len(rec.Sellers),
		"timestamp", rec.Timestamp,
	)
	return nil
}
