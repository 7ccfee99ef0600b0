package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ScanFrequencyDaily   = "daily"
	ScanFrequencyWeekly  = "weekly"
	ScanFrequencyMonthly = "monthly"
)

type Store struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Domain        string         `gorm:"column:domain;index" json:"domain"`
	ScanFrequency string         `gorm:"column:scan_frequency;not null;default:monthly" json:"scan_frequency"` // daily|weekly|monthly
	LastScanAt    *time.Time     `gorm:"column:last_scan_at" json:"last_scan_at,omitempty"`
	NextScanAt    *time.Time     `gorm:"column:next_scan_at;index" json:"next_scan_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Store) TableName() string { return "store" }
