package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/apperr"
)

// InvoiceStatus is the lifecycle state of an invoice.
//
//	draft -> sent -> paid
//	draft -> sent -> void
//	draft -> void
//
// paid and void are terminal.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

// BillTo is the billing snapshot frozen at send time. Once an invoice is
// sent these fields never change, even if the contact record is edited.
type BillTo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// BillToFromContact captures the snapshot from a contact record.
func BillToFromContact(c Contact) BillTo {
	country := c.Country
	if country == "" {
		country = "US"
	}
	return BillTo{
		Name:       c.DisplayName,
		Email:      c.Email,
		Address1:   c.Address1,
		Address2:   c.Address2,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    country,
	}
}

// Invoice numbers are YY#### with an optional single lowercase revision
// suffix, unique per business.
type Invoice struct {
	ID            int64         `json:"id"`
	BusinessID    int64         `json:"business_id"`
	Status        InvoiceStatus `json:"status"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       *time.Time    `json:"due_date"`
	SentDate      *time.Time    `json:"sent_date"`
	PaidDate      *time.Time    `json:"paid_date"`
	ContactID     int64         `json:"contact_id"`
	JobID         *int64        `json:"job_id"`
	InvoiceNumber string        `json:"invoice_number"`
	RevisesID     *int64        `json:"revises_id"`

	BillTo BillTo `json:"bill_to"`
	Memo   string `json:"memo"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`

	// IncomeTransactionID links the single ledger entry posted at mark-paid.
	IncomeTransactionID *int64 `json:"income_transaction_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one billed line. LineTotal is derived, never settable.
type InvoiceItem struct {
	ID            int64           `json:"id"`
	BusinessID    int64           `json:"business_id"`
	InvoiceID     int64           `json:"invoice_id"`
	Description   string          `json:"description"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	SubCategoryID *int64          `json:"subcategory_id"`
	SortOrder     int             `json:"sort_order"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// DeriveLineTotal computes qty x unit price at two decimal places.
func DeriveLineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Round(2)
}

// DeriveInvoiceTotals sums item line totals. Taxes are modeled as line
// items, so total equals subtotal.
func DeriveInvoiceTotals(items []InvoiceItem) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	return subtotal, subtotal
}

// InvoiceCounter is the durable allocator state: one row per business+year
// holding the highest sequence issued. Mutated only under a row lock.
type InvoiceCounter struct {
	ID         int64 `json:"id"`
	BusinessID int64 `json:"business_id"`
	Year       int   `json:"year"`
	LastSeq    int   `json:"last_seq"`
}

func (InvoiceCounter) TableName() string { return "invoice_counters" }

// InvoiceItemParams is one requested line on a new invoice.
type InvoiceItemParams struct {
	Description   string
	Qty           decimal.Decimal
	UnitPrice     decimal.Decimal
	SubCategoryID *int64
	SortOrder     int
}

// InvoiceCreateRequest is the input for creating a draft invoice.
// InvoiceNumber is blank for auto-allocation or a manual YY#### override.
type InvoiceCreateRequest struct {
	ContactID     int64
	JobID         *int64
	IssueDate     time.Time
	DueDate       *time.Time
	InvoiceNumber string
	Memo          string
	Items         []InvoiceItemParams
}

func (p InvoiceCreateRequest) Validate() error {
	if p.ContactID == 0 {
		return apperr.Validation("contact", "contact is required")
	}
	for _, it := range p.Items {
		if it.Description == "" {
			return apperr.Validation("items", "item description is required")
		}
		if it.Qty.IsNegative() || it.UnitPrice.IsNegative() {
			return apperr.Validation("items", "item qty and unit price must not be negative")
		}
	}
	return nil
}
