package market

// GoodObservation is one append-only price sighting for a good at a waypoint.
// Observations accumulate in memory per good symbol and are mirrored into the
// persistent store.
type GoodObservation struct {
	SystemSymbol   string
	WaypointSymbol string
	Good           string
	PurchasePrice  int
	SellPrice      int
	TradeVolume    int
	Supply         string
	Activity       string
	SeenAt         string // ISO-8601 UTC ms
}

// BestSell returns the observation with the highest sell price, or nil
func BestSell(observations []GoodObservation) *GoodObservation {
	var best *GoodObservation
	for i := range observations {
		if best == nil || observations[i].SellPrice > best.SellPrice {
			best = &observations[i]
		}
	}
	return best
}

// BestPurchase returns the observation with the lowest purchase price, or nil
func BestPurchase(observations []GoodObservation) *GoodObservation {
	var best *GoodObservation
	for i := range observations {
		if best == nil || observations[i].PurchasePrice < best.PurchasePrice {
			best = &observations[i]
		}
	}
	return best
}
