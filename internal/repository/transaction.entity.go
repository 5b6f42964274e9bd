package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
)

type TransactionEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID    int64           `db:"business_id"    gorm:"column:business_id;not null;index"`
	Date          time.Time       `db:"date"           gorm:"column:date;not null;index"`
	Amount        decimal.Decimal `db:"amount"         gorm:"column:amount;type:numeric(12,2);not null"`
	IsRefund      bool            `db:"is_refund"      gorm:"column:is_refund;not null;default:false"`
	Description   string          `db:"description"    gorm:"column:description;not null"`
	SubCategoryID int64           `db:"subcategory_id" gorm:"column:subcategory_id;not null;index"`
	CategoryID    int64           `db:"category_id"    gorm:"column:category_id;not null;index"`
	Type          string          `db:"type"           gorm:"column:type;not null"`
	ContactID     *int64          `db:"contact_id"     gorm:"column:contact_id"`
	JobID         *int64          `db:"job_id"         gorm:"column:job_id"`
	VehicleID     *int64          `db:"vehicle_id"     gorm:"column:vehicle_id"`
	InvoiceNumber string          `db:"invoice_number" gorm:"column:invoice_number;not null;default:''"`
	TransportType string          `db:"transport_type" gorm:"column:transport_type;not null;default:''"`
	Notes         string          `db:"notes"          gorm:"column:notes;not null;default:''"`
	CreatedAt     time.Time       `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `db:"updated_at"     gorm:"column:updated_at;autoUpdateTime"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:            m.ID,
		BusinessID:    m.BusinessID,
		Date:          m.Date,
		Amount:        m.Amount,
		IsRefund:      m.IsRefund,
		Description:   m.Description,
		SubCategoryID: m.SubCategoryID,
		CategoryID:    m.CategoryID,
		Type:          string(m.Type),
		ContactID:     m.ContactID,
		JobID:         m.JobID,
		VehicleID:     m.VehicleID,
		InvoiceNumber: m.InvoiceNumber,
		TransportType: string(m.TransportType),
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:            e.ID,
		BusinessID:    e.BusinessID,
		Date:          e.Date,
		Amount:        e.Amount,
		IsRefund:      e.IsRefund,
		Description:   e.Description,
		SubCategoryID: e.SubCategoryID,
		CategoryID:    e.CategoryID,
		Type:          model.CategoryType(e.Type),
		ContactID:     e.ContactID,
		JobID:         e.JobID,
		VehicleID:     e.VehicleID,
		InvoiceNumber: e.InvoiceNumber,
		TransportType: model.TransportType(e.TransportType),
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
