package db_models

import "time"

// ConfigEntry is a key/value setting managed outside the service, e.g. PRICE_1 or PRICE_1_USD.
type ConfigEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"size:128;not null;uniqueIndex"`
	Value     string    `gorm:"size:1024;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ConfigEntry) TableName() string { return "config_entries" }
