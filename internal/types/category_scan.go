package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Mention is one matched product occurrence inside a model response.
type Mention struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	Offset       int       `json:"offset"`
	Position     int       `json:"position"` // 1-based rank by offset within the response
}

// ScanResult is the transient outcome of one (model, prompt) call. The full
// array is persisted on the CategoryScan row as JSON.
type ScanResult struct {
	Model       string    `json:"model"`
	Prompt      string    `json:"prompt"`
	Response    string    `json:"response"`
	Mentions    []Mention `json:"mentions"`
	Competitors []string  `json:"competitors"`
	Failed      bool      `json:"failed,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type CategoryScan struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"store_id"`
	RunID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"run_id"`
	Category      string         `gorm:"column:category;not null;index" json:"category"`
	HeroProductID uuid.UUID      `gorm:"type:uuid" json:"hero_product_id"`
	ProductCount  int            `gorm:"column:product_count;not null" json:"product_count"`
	Models        datatypes.JSON `gorm:"type:jsonb;column:models" json:"models"`
	Visibility    int            `gorm:"column:visibility;not null" json:"visibility"` // 0-100
	Results       datatypes.JSON `gorm:"type:jsonb;column:results" json:"results"`
	Competitors   datatypes.JSON `gorm:"type:jsonb;column:competitors" json:"competitors"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (CategoryScan) TableName() string { return "category_scan" }
