package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MovementIn  = "in"
	MovementOut = "out"
)

type Product struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Barcode   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"barcode"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Category  string    `gorm:"type:varchar(100);not null" json:"category"`
	Brand     string    `gorm:"type:varchar(100);not null" json:"brand"`
	Stock     int       `gorm:"not null" json:"stock"`
	MinStock  int       `gorm:"not null" json:"min_stock"`
	BuyPrice  string    `gorm:"type:varchar(32);not null" json:"buy_price"`
	SellPrice string    `gorm:"type:varchar(32);not null" json:"sell_price"`
	TaxRate   int       `gorm:"not null" json:"tax_rate"`
	Supplier  *string   `gorm:"type:varchar(200)" json:"supplier,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// StockMovement rows are append-only: a correction is a new opposing
// movement, never an update or delete.
type StockMovement struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  string    `gorm:"type:uuid;index;not null" json:"product_id"`
	Type       string    `gorm:"type:varchar(8);not null" json:"type"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  *string   `gorm:"type:varchar(32)" json:"unit_price,omitempty"`
	TotalPrice *string   `gorm:"type:varchar(32)" json:"total_price,omitempty"`
	Supplier   *string   `gorm:"type:varchar(200)" json:"supplier,omitempty"`
	Note       *string   `gorm:"type:varchar(500)" json:"note,omitempty"`
	CreatedBy  string    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
