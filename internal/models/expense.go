package models

import "time"

// Expense represents a single spending entry owned by a user.
// Category is free text and may be empty; Flagged is admin-controlled
// and independent of category or amount.
type Expense struct {
	Base
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Flagged     bool      `gorm:"not null;default:false" json:"flagged"`
}
