package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProductVisibility struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ScanID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"scan_id"`
	ProductID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Mentioned    bool           `gorm:"column:mentioned;not null" json:"mentioned"`
	MentionCount int            `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	BestPosition *int           `gorm:"column:best_position" json:"best_position,omitempty"`
	Models       datatypes.JSON `gorm:"type:jsonb;column:models" json:"models"`
	Issues       datatypes.JSON `gorm:"type:jsonb;column:issues" json:"issues"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (ProductVisibility) TableName() string { return "product_visibility" }
