package handler

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database/models"
)

type FinanceHandler struct {
	db *gorm.DB
}

func NewFinanceHandler(db *gorm.DB) *FinanceHandler {
	return &FinanceHandler{db: db}
}

type TransactionRequest struct {
	Type        string
	Amount      float64
	Date        *time.Time
	Category    *string
	Description *string
	Person      *string
}

type UpdateTransactionRequest struct {
	Type        *string
	Amount      *float64
	Date        *time.Time
	Category    *string
	Description *string
	Person      *string
}

type ListTransactionsQuery struct {
	Page     int
	PageSize int
	Type     string
}

func validateFinanceType(t string) error {
	if t != models.FinanceIncome && t != models.FinanceExpense {
		return &apperr.InvalidArgumentError{Reason: "type must be 'income' or 'expense'"}
	}
	return nil
}

func (s *FinanceHandler) CreateTransaction(ctx context.Context, req TransactionRequest, actorID string) (*models.FinanceTransaction, error) {
	if err := validateFinanceType(req.Type); err != nil {
		return nil, err
	}
	if req.Amount < 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "amount must not be negative"}
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	txn := models.FinanceTransaction{
		Type:        req.Type,
		Amount:      decimal.NewFromFloat(req.Amount).StringFixed(2),
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
		Person:      req.Person,
		CreatedBy:   &actorID,
	}
	if err := s.db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *FinanceHandler) ListTransactions(ctx context.Context, q ListTransactionsQuery) ([]models.FinanceTransaction, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 1000 {
		q.PageSize = 100
	}
	if q.Type != "" {
		if err := validateFinanceType(q.Type); err != nil {
			return nil, 0, err
		}
	}

	query := s.db.WithContext(ctx).Model(&models.FinanceTransaction{})
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.FinanceTransaction
	if err := query.Order("date DESC, id DESC").
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

func (s *FinanceHandler) UpdateTransaction(ctx context.Context, id string, req UpdateTransactionRequest) (*models.FinanceTransaction, error) {
	var txn models.FinanceTransaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "Transaction", ID: id}
		}
		return nil, err
	}

	if req.Type != nil {
		if err := validateFinanceType(*req.Type); err != nil {
			return nil, err
		}
		txn.Type = *req.Type
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, &apperr.InvalidArgumentError{Reason: "amount must not be negative"}
		}
		txn.Amount = decimal.NewFromFloat(*req.Amount).StringFixed(2)
	}
	if req.Date != nil {
		txn.Date = req.Date.UTC()
	}
	if req.Category != nil {
		txn.Category = req.Category
	}
	if req.Description != nil {
		txn.Description = req.Description
	}
	if req.Person != nil {
		txn.Person = req.Person
	}

	if err := s.db.WithContext(ctx).Save(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *FinanceHandler) DeleteTransaction(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FinanceTransaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperr.NotFoundError{Resource: "Transaction", ID: id}
	}
	return nil
}
