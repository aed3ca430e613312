package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

// Transaction is one immutable ledger entry. Direction lives in Type,
// Quantity is always positive.
type Transaction struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Type        TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   string          `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
}

// Delta is the signed effect of the entry on stock.
func (t *Transaction) Delta() int64 {
	if t.Type == TxOut {
		return -t.Quantity
	}
	return t.Quantity
}

// TransactionInput is the body accepted by append. CreatedBy comes from the
// authenticated caller, not the body.
type TransactionInput struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Type        TransactionType `json:"type" validate:"required,oneof=IN OUT"`
	Quantity    int64           `json:"quantity" validate:"gt=0"`
	Description *string         `json:"description"`
	CreatedBy   string          `json:"-" validate:"required"`
}

// StockBalance is the running balance kept next to the log.
type StockBalance struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockReconciliation compares the running balance with a full scan.
type StockReconciliation struct {
	ProductID  uuid.UUID `json:"product_id"`
	Balance    int64     `json:"balance"`
	Scanned    int64     `json:"scanned"`
	Consistent bool      `json:"consistent"`
}

// StockMovementData is one day of the movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

// LedgerTotals sums every IN and OUT ever recorded.
type LedgerTotals struct {
	TotalIn  int64 `json:"total_in"`
	TotalOut int64 `json:"total_out"`
}

// DashboardStats for overview stats
type DashboardStats struct {
	TotalProducts int64 `json:"total_products"`
	TotalIn       int64 `json:"total_in"`
	TotalOut      int64 `json:"total_out"`
	LowStockCount int64 `json:"low_stock_count"`
}
