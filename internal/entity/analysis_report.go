package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisReport is the persisted form of a generated report. The full
// typed payload is stored as JSON; the scalar columns exist for filtering
// and history queries without unmarshalling.
type AnalysisReport struct {
	ID             uint           `gorm:"primaryKey"`
	StockCode      string         `gorm:"not null;index"`
	OverallScore   float64        `gorm:"not null"`
	RiskLevel      string         `gorm:"not null"`
	Recommendation string         `gorm:"not null"`
	Confidence     string         `gorm:"not null"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	GeneratedAt    time.Time      `gorm:"not null;index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}
