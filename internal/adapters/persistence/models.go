package persistence

// MarketObservationModel represents the market_observations table. One row
// per price sighting; rows are append-only and pruned by retention age.
// Timestamps are ISO-8601 UTC millisecond strings, which sort lexically.
type MarketObservationModel struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Ts          string  `gorm:"column:ts;index:idx_obs_ts;index:idx_obs_good_ts,priority:2,sort:desc;index:idx_obs_waypoint_ts,priority:2,sort:desc"`
	System      string  `gorm:"column:system;not null"`
	Waypoint    string  `gorm:"column:waypoint;not null;index:idx_obs_waypoint_ts,priority:1"`
	Good        string  `gorm:"column:good;not null;index:idx_obs_good_ts,priority:1"`
	BuyPrice    float64 `gorm:"column:buy_price"`
	SellPrice   float64 `gorm:"column:sell_price"`
	TradeVolume int     `gorm:"column:trade_volume"`
	Supply      string  `gorm:"column:supply"`
	Activity    string  `gorm:"column:activity"`
}

func (MarketObservationModel) TableName() string {
	return "market_observations"
}

// TransactionModel represents the transactions table. One row per executed
// market transaction (sell, refuel, ship purchase).
type TransactionModel struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Ts           string  `gorm:"column:ts;index:idx_tx_ship_ts,priority:2,sort:desc"`
	Ship         string  `gorm:"column:ship;not null;index:idx_tx_ship_ts,priority:1"`
	Waypoint     string  `gorm:"column:waypoint;not null"`
	Action       string  `gorm:"column:action;not null"`
	Symbol       string  `gorm:"column:symbol"`
	Units        int     `gorm:"column:units"`
	UnitPrice    float64 `gorm:"column:unit_price"`
	TotalPrice   float64 `gorm:"column:total_price"`
	CreditsAfter int64   `gorm:"column:credits_after"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}
