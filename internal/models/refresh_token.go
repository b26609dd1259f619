package models

import "time"

// RefreshToken is the device-scoped opaque refresh credential. At most one
// live row exists per (user_id, device_id); a new issuance for the same pair
// overwrites the prior row instead of inserting a second one.
type RefreshToken struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_device" json:"user_id"`
	DeviceID     string    `gorm:"column:device_id;size:64;not null;uniqueIndex:idx_user_device" json:"device_id"`
	RefreshToken string    `gorm:"column:refresh_token;not null;size:64;index" json:"-"`
	ExpireTime   time.Time `gorm:"column:expire_time;not null" json:"expire_time"`
	CreateTime   time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime   time.Time `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

// TableName specifies the table name for RefreshToken model
func (RefreshToken) TableName() string {
	return "ovo_user_token"
}
