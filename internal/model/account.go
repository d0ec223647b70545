package model

import "time"

const DefaultVirtualBalance = 1000000.00

// VirtualAccount is the in-memory-ledger side of order execution. When
// IsSimulation is false the broker credentials below are used to forward
// orders to the real broker API instead.
type VirtualAccount struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserID      uint    `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance     float64 `gorm:"not null;default:1000000" json:"balance"`
	TotalAssets float64 `gorm:"not null;default:1000000" json:"total_assets"`

	IsSimulation     bool   `gorm:"not null;default:true" json:"is_simulation"`
	BrokerAppID      string `json:"-"`
	BrokerAppSecret  string `json:"-"`
	BrokerCustomerID string `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VirtualAccount) TableName() string {
	return "virtual_accounts"
}

const (
	OrderStatusPending  = "PENDING"
	OrderStatusFilled   = "FILLED"
	OrderStatusCanceled = "CANCELED"
	OrderStatusRejected = "REJECTED"
)

type PaperOrder struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	UserID           uint    `gorm:"not null;index" json:"user_id"`
	AnalysisRecordID *uint   `json:"analysis_record_id"`
	Symbol           string  `gorm:"not null" json:"symbol"`
	Direction        string  `gorm:"not null;default:BUY" json:"direction"`
	Quantity         int     `gorm:"not null" json:"quantity"`
	Price            float64 `gorm:"not null" json:"price"`
	StopLoss         float64 `json:"stop_loss"`
	TakeProfit       float64 `json:"take_profit"`
	Status           string  `gorm:"not null;default:FILLED" json:"status"`
	Commission       float64 `gorm:"not null;default:5" json:"commission"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaperOrder) TableName() string {
	return "paper_orders"
}
