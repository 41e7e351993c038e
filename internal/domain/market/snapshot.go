package market

// MinSellPrice is the floor below which a good is not worth hauling to market
const MinSellPrice = 10

// TradeGood is one line of a marketplace's tradeGoods listing
type TradeGood struct {
	Symbol        string `json:"symbol"`
	Type          string `json:"type,omitempty"`
	TradeVolume   int    `json:"tradeVolume"`
	Supply        string `json:"supply"`
	Activity      string `json:"activity,omitempty"`
	PurchasePrice int    `json:"purchasePrice"`
	SellPrice     int    `json:"sellPrice"`
}

// Snapshot is the latest observed market state at a waypoint. Only the most
// recent snapshot per waypoint is kept in memory; history lives in the store.
type Snapshot struct {
	SystemSymbol   string
	WaypointSymbol string
	SeenAt         string // ISO-8601 UTC ms
	TradeGoods     []TradeGood
}

// Good returns the trade good with the given symbol, or nil
func (s *Snapshot) Good(symbol string) *TradeGood {
	for i := range s.TradeGoods {
		if s.TradeGoods[i].Symbol == symbol {
			return &s.TradeGoods[i]
		}
	}
	return nil
}

// SellsFuel reports whether FUEL is purchasable at this market
func (s *Snapshot) SellsFuel() bool {
	g := s.Good("FUEL")
	return g != nil && g.PurchasePrice > 0
}

// BuyableSymbols returns the goods this market buys above the price floor
func (s *Snapshot) BuyableSymbols(minSellPrice int) map[string]bool {
	buyable := make(map[string]bool)
	for _, g := range s.TradeGoods {
		if g.Symbol != "" && g.SellPrice > minSellPrice {
			buyable[g.Symbol] = true
		}
	}
	return buyable
}

// BuysAny reports whether the market buys at least one of the given goods
// above the price floor
func (s *Snapshot) BuysAny(symbols []string, minSellPrice int) bool {
	buyable := s.BuyableSymbols(minSellPrice)
	for _, sym := range symbols {
		if buyable[sym] {
			return true
		}
	}
	return false
}
