package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisRecord ties one uploaded chart image to its normalized analysis.
// AIResult is a database-cached copy of the artifact JSON, used as the
// read-back fallback when the artifact file is gone.
type AnalysisRecord struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	Symbol       string         `json:"symbol"`
	ImagePath    string         `json:"image_path"`
	ArtifactPath string         `json:"artifact_path"`
	AIResult     datatypes.JSON `gorm:"type:jsonb" json:"ai_result"`
	Source       string         `gorm:"not null" json:"source"`

	RawSignal      string `json:"raw_signal"`
	FinalSignal    string `json:"final_signal"`
	StrategyReason string `json:"strategy_reason"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}
