package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// Sale is immutable once created. A correction is a new compensating sale
// or stock movement, not an edit.
type Sale struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CashierID     string    `gorm:"type:uuid;index;not null" json:"cashier_id"`
	Subtotal      string    `gorm:"type:varchar(32);not null" json:"subtotal"`
	TaxAmount     string    `gorm:"type:varchar(32);not null" json:"tax_amount"`
	Total         string    `gorm:"type:varchar(32);not null" json:"total"`
	PaymentMethod *string   `gorm:"type:varchar(16)" json:"payment_method,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SaleItem snapshots barcode, name and pricing at sale time; it never joins
// back to the live product row. LineNo preserves the request order for
// receipt rendering.
type SaleItem struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      string `gorm:"type:uuid;index;not null" json:"sale_id"`
	LineNo      int    `gorm:"not null" json:"line_no"`
	ProductID   string `gorm:"type:uuid;not null" json:"product_id"`
	Barcode     string `gorm:"type:varchar(50);not null" json:"barcode"`
	ProductName string `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	UnitPrice   string `gorm:"type:varchar(32);not null" json:"unit_price"`
	TaxRate     int    `gorm:"not null" json:"tax_rate"`
	TotalPrice  string `gorm:"type:varchar(32);not null" json:"total_price"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

const (
	FinanceIncome  = "income"
	FinanceExpense = "expense"
)

type FinanceTransaction struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string    `gorm:"type:varchar(16);not null" json:"type"`
	Amount      string    `gorm:"type:varchar(32);not null" json:"amount"`
	Date        time.Time `gorm:"index" json:"date"`
	Category    *string   `gorm:"type:varchar(100)" json:"category,omitempty"`
	Description *string   `gorm:"type:varchar(500)" json:"description,omitempty"`
	Person      *string   `gorm:"type:varchar(100)" json:"person,omitempty"`
	CreatedBy   *string   `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *FinanceTransaction) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
