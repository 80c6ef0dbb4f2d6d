package models

// Budget represents a monthly spending target. At most one row exists per
// (user, month, year); spent amounts are always derived from expenses,
// never stored here.
type Budget struct {
	Base
	UserID uint    `gorm:"not null;uniqueIndex:idx_budget_period" json:"user_id"`
	Month  int     `gorm:"not null;uniqueIndex:idx_budget_period" json:"month"`
	Year   int     `gorm:"not null;uniqueIndex:idx_budget_period" json:"year"`
	Amount float64 `gorm:"not null" json:"amount"`
}
