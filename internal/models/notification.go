package models

// Notification is an append-only per-user message. The message text is
// immutable after creation; Read only ever transitions false to true.
type Notification struct {
	Base
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Message string `gorm:"not null" json:"message"`
	Read    bool   `gorm:"column:is_read;not null;default:false" json:"read"`
}
