package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/apperr"
)

// TransportType qualifies transport-requiring expenses. Blank means the
// subcategory does not involve transport.
type TransportType string

const (
	TransportNone     TransportType = ""
	TransportPersonal TransportType = "personal_vehicle"
	TransportRental   TransportType = "rental_car"
	TransportBusiness TransportType = "business_vehicle"
)

// Transaction is a single ledger entry. Amount is always non-negative; sign
// semantics live in IsRefund. CategoryID and Type are derived from the
// subcategory before persistence and are never independently settable.
type Transaction struct {
	ID            int64           `json:"id"`
	BusinessID    int64           `json:"business_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	IsRefund      bool            `json:"is_refund"`
	Description   string          `json:"description"`
	SubCategoryID int64           `json:"subcategory_id"`
	CategoryID    int64           `json:"category_id"`
	Type          CategoryType    `json:"type"`
	ContactID     *int64          `json:"contact_id"`
	JobID         *int64          `json:"job_id"`
	VehicleID     *int64          `json:"vehicle_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TransportType TransportType   `json:"transport_type"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// EffectiveAmount is the signed amount: refunds negate.
func (t Transaction) EffectiveAmount() decimal.Decimal {
	if t.IsRefund {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionCreateRequest is the input for recording a ledger entry.
type TransactionCreateRequest struct {
	Date          time.Time
	Amount        decimal.Decimal
	IsRefund      bool
	Description   string
	SubCategoryID int64
	ContactID     *int64
	JobID         *int64
	VehicleID     *int64
	InvoiceNumber string
	TransportType TransportType
	Notes         string
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	Year          *int
	Type          *CategoryType
	SubCategoryID *int64
	ContactID     *int64
	JobID         *int64
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
	Desc          bool
}

func (p TransactionCreateRequest) Validate() error {
	if p.SubCategoryID == 0 {
		return apperr.Validation("subcategory", "subcategory is required")
	}
	if p.Amount.IsNegative() {
		return apperr.Validation("amount", "amount must not be negative")
	}
	if p.Description == "" {
		return apperr.Validation("description", "description is required")
	}
	switch p.TransportType {
	case TransportNone, TransportPersonal, TransportRental, TransportBusiness:
	default:
		return apperr.Validation("transport_type", "invalid transport type %q", p.TransportType)
	}
	return nil
}
