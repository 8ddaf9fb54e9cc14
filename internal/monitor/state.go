package monitor

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/tommyca/pumpwatch/internal/ring"
)

const historyCapacity = 30

// tradeSample is one observed buy or sell, carried in the unbounded
// buy_history/sell_history logs.
type tradeSample struct {
	At          int64
	SolAmount   decimal.Decimal
	TokenAmount decimal.Decimal
}

// State is the per-mint rolling statistical view integrated from trade
// events and price updates. It is owned by exactly one Monitor goroutine,
// which is its only writer; the rule evaluator goroutine only reads it, so
// all access goes through the same mutex regardless of direction.
type State struct {
	mu sync.Mutex

	startedAt time.Time

	balances    map[solana.PublicKey]decimal.Decimal
	holderCount int

	price            decimal.Decimal
	hasPrice         bool
	firstSamplePrice decimal.Decimal

	cumulativeBuySol    decimal.Decimal
	cumulativeBuyTokens decimal.Decimal
	priceTxEstimate     decimal.Decimal

	txCount int

	buyHistory  []tradeSample
	sellHistory []tradeSample

	priceHistory   *ring.Window[decimal.Decimal]
	priceTxHistory *ring.Window[decimal.Decimal]
	buyerHistory   *ring.Window[int]
	volumeHistory  *ring.Window[decimal.Decimal]

	aggPrice      *series
	aggBuyers     *series
	aggSellers    *series
	aggVolume     *series
	aggVolumeSell *series
	aggTxCount    *series
}

// NewState builds an empty monitor state, started at t0.
func NewState(t0 time.Time) *State {
	return &State{
		startedAt:       t0,
		balances:        make(map[solana.PublicKey]decimal.Decimal),
		priceHistory:    ring.NewWindow[decimal.Decimal](historyCapacity),
		priceTxHistory:  ring.NewWindow[decimal.Decimal](historyCapacity),
		buyerHistory:    ring.NewWindow[int](historyCapacity),
		volumeHistory:   ring.NewWindow[decimal.Decimal](historyCapacity),
		aggPrice:        newSeries(),
		aggBuyers:       newSeries(),
		aggSellers:      newSeries(),
		aggVolume:       newSeries(),
		aggVolumeSell:   newSeries(),
		aggTxCount:      newSeries(),
		priceTxEstimate: decimal.Zero,
	}
}

// SeedPrice records the bonding-curve price observed at monitor start.
func (s *State) SeedPrice(price decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
	s.hasPrice = true
	s.firstSamplePrice = price
	s.priceHistory.Append(at.Unix(), price)
}

// ApplyPriceUpdate folds a CurvePoller-derived price into state.
func (s *State) ApplyPriceUpdate(price decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
	s.hasPrice = true
	s.priceHistory.Append(at.Unix(), price)
	s.aggPrice.Add(at.Unix(), price)
}

// ApplyBuy folds a buy trade into balances, holder accounting, and the
// per-second aggregates.
func (s *State) ApplyBuy(actor solana.PublicKey, tokens, sol decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.balances[actor]
	if !existed {
		prev = decimal.Zero
	}
	newBal := prev.Add(tokens)
	s.balances[actor] = newBal
	if prev.IsZero() {
		s.holderCount++
	}

	sec := at.Unix()
	s.buyHistory = append(s.buyHistory, tradeSample{At: sec, SolAmount: sol, TokenAmount: tokens})
	s.volumeHistory.Append(sec, sol)
	s.buyerHistory.Append(sec, s.holderCount)
	s.aggVolume.Add(sec, sol)
	s.aggBuyers.Add(sec, decimal.NewFromInt(1))

	s.cumulativeBuySol = s.cumulativeBuySol.Add(sol)
	s.cumulativeBuyTokens = s.cumulativeBuyTokens.Add(tokens)

	s.recordTrade(sec)
}

// ApplySell folds a sell trade into balances, holder accounting, and the
// per-second aggregates.
func (s *State) ApplySell(actor solana.PublicKey, tokens, sol decimal.Decimal, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.balances[actor]
	if !existed {
		prev = decimal.Zero
	}
	newBal := prev.Sub(tokens)
	if newBal.IsNegative() {
		newBal = decimal.Zero
	}
	s.balances[actor] = newBal
	if prev.IsPositive() && newBal.IsZero() && s.holderCount > 0 {
		s.holderCount--
	}

	sec := at.Unix()
	s.sellHistory = append(s.sellHistory, tradeSample{At: sec, SolAmount: sol, TokenAmount: tokens})
	s.aggVolumeSell.Add(sec, sol)
	s.aggSellers.Add(sec, decimal.NewFromInt(1))

	s.recordTrade(sec)
}

// recordTrade applies the updates common to every trade: tx_count,
// price_tx_estimate, and price_tx_history. Caller must hold s.mu.
func (s *State) recordTrade(sec int64) {
	s.txCount++
	s.aggTxCount.Add(sec, decimal.NewFromInt(1))

	if s.cumulativeBuyTokens.IsPositive() {
		s.priceTxEstimate = s.cumulativeBuySol.Div(s.cumulativeBuyTokens)
	}
	s.priceTxHistory.Append(sec, s.priceTxEstimate)
}

// Snapshot is a read-only copy of the fields the rule evaluator and
// external sinks need, taken under the state's lock.
type Snapshot struct {
	StartedAt        time.Time
	HolderCount      int
	Price            decimal.Decimal
	HasPrice         bool
	FirstSamplePrice decimal.Decimal
	PriceTxEstimate  decimal.Decimal
	TxCount          int
	Buyers           []solana.PublicKey
	Sellers          []solana.PublicKey
}

// Snapshot takes a consistent read of the fields needed for rule
// evaluation and sink emission. Buyers are actors currently holding a
// positive balance; Sellers are actors the state has seen with a balance
// that is currently exactly zero.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buyers, sellers []solana.PublicKey
	for actor, bal := range s.balances {
		if bal.IsPositive() {
			buyers = append(buyers, actor)
		} else {
			sellers = append(sellers, actor)
		}
	}

	return Snapshot{
		StartedAt:        s.startedAt,
		HolderCount:      s.holderCount,
		Price:            s.price,
		HasPrice:         s.hasPrice,
		FirstSamplePrice: s.firstSamplePrice,
		PriceTxEstimate:  s.priceTxEstimate,
		TxCount:          s.txCount,
		Buyers:           buyers,
		Sellers:          sellers,
	}
}

// momentumSeries returns, sorted ascending, up to the last 5 seconds of
// each of the price/buyers/volume aggregates within [from, to].
func (s *State) momentumSeries(from, to int64) (price, buyers, volume []decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggPrice.Last5InRange(from, to), s.aggBuyers.Last5InRange(from, to), s.aggVolume.Last5InRange(from, to)
}
