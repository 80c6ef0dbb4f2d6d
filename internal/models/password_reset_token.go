package models

// PasswordResetToken holds a one-time OTP for password recovery.
// At most one live token exists per email: old tokens are purged when a
// new one is requested, and the token is deleted after a successful
// password change or on expiry.
type PasswordResetToken struct {
	Base
	Email     string `gorm:"not null;index" json:"email"`
	OTP       string `gorm:"not null" json:"-"`
	ExpiresAt int64  `gorm:"not null" json:"expires_at"`
}
