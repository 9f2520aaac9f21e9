package models

import "time"

// RevokedToken is one invalidated bearer token, recorded by its jti.
// Rows older than the retention window are pruned since the token would
// have expired anyway.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"uniqueIndex;size:120;not null" json:"jti"`
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
}
