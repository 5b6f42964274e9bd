package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
)

type InvoiceEntity struct {
	ID            int64      `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID    int64      `db:"business_id"    gorm:"column:business_id;not null;uniqueIndex:idx_invoice_number"`
	Status        string     `db:"status"         gorm:"column:status;not null;default:'draft'"`
	IssueDate     time.Time  `db:"issue_date"     gorm:"column:issue_date;not null"`
	DueDate       *time.Time `db:"due_date"       gorm:"column:due_date"`
	SentDate      *time.Time `db:"sent_date"      gorm:"column:sent_date"`
	PaidDate      *time.Time `db:"paid_date"      gorm:"column:paid_date"`
	ContactID     int64      `db:"contact_id"     gorm:"column:contact_id;not null"`
	JobID         *int64     `db:"job_id"         gorm:"column:job_id"`
	InvoiceNumber string     `db:"invoice_number" gorm:"column:invoice_number;not null;uniqueIndex:idx_invoice_number"`
	RevisesID     *int64     `db:"revises_id"     gorm:"column:revises_id"`

	BillToName       string `db:"bill_to_name"        gorm:"column:bill_to_name;not null;default:''"`
	BillToEmail      string `db:"bill_to_email"       gorm:"column:bill_to_email;not null;default:''"`
	BillToAddress1   string `db:"bill_to_address1"    gorm:"column:bill_to_address1;not null;default:''"`
	BillToAddress2   string `db:"bill_to_address2"    gorm:"column:bill_to_address2;not null;default:''"`
	BillToCity       string `db:"bill_to_city"        gorm:"column:bill_to_city;not null;default:''"`
	BillToState      string `db:"bill_to_state"       gorm:"column:bill_to_state;not null;default:''"`
	BillToPostalCode string `db:"bill_to_postal_code" gorm:"column:bill_to_postal_code;not null;default:''"`
	BillToCountry    string `db:"bill_to_country"     gorm:"column:bill_to_country;not null;default:''"`

	Memo     string          `db:"memo"     gorm:"column:memo;not null;default:''"`
	Subtotal decimal.Decimal `db:"subtotal" gorm:"column:subtotal;type:numeric(12,2);not null"`
	Total    decimal.Decimal `db:"total"    gorm:"column:total;type:numeric(12,2);not null"`

	IncomeTransactionID *int64 `db:"income_transaction_id" gorm:"column:income_transaction_id"`

	// PDF holds the document rendered at send time, the artifact the customer
	// actually received.
	PDF []byte `db:"pdf" gorm:"column:pdf"`

	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (InvoiceEntity) TableName() string {
	return "invoices"
}

func toInvoiceEntity(m *model.Invoice) *InvoiceEntity {
	if m == nil {
		return nil
	}
	return &InvoiceEntity{
		ID:                  m.ID,
		BusinessID:          m.BusinessID,
		Status:              string(m.Status),
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		SentDate:            m.SentDate,
		PaidDate:            m.PaidDate,
		ContactID:           m.ContactID,
		JobID:               m.JobID,
		InvoiceNumber:       m.InvoiceNumber,
		RevisesID:           m.RevisesID,
		BillToName:          m.BillTo.Name,
		BillToEmail:         m.BillTo.Email,
		BillToAddress1:      m.BillTo.Address1,
		BillToAddress2:      m.BillTo.Address2,
		BillToCity:          m.BillTo.City,
		BillToState:         m.BillTo.State,
		BillToPostalCode:    m.BillTo.PostalCode,
		BillToCountry:       m.BillTo.Country,
		Memo:                m.Memo,
		Subtotal:            m.Subtotal,
		Total:               m.Total,
		IncomeTransactionID: m.IncomeTransactionID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toInvoiceModel(e *InvoiceEntity) *model.Invoice {
	if e == nil {
		return nil
	}
	return &model.Invoice{
		ID:            e.ID,
		BusinessID:    e.BusinessID,
		Status:        model.InvoiceStatus(e.Status),
		IssueDate:     e.IssueDate,
		DueDate:       e.DueDate,
		SentDate:      e.SentDate,
		PaidDate:      e.PaidDate,
		ContactID:     e.ContactID,
		JobID:         e.JobID,
		InvoiceNumber: e.InvoiceNumber,
		RevisesID:     e.RevisesID,
		BillTo: model.BillTo{
			Name:       e.BillToName,
			Email:      e.BillToEmail,
			Address1:   e.BillToAddress1,
			Address2:   e.BillToAddress2,
			City:       e.BillToCity,
			State:      e.BillToState,
			PostalCode: e.BillToPostalCode,
			Country:    e.BillToCountry,
		},
		Memo:                e.Memo,
		Subtotal:            e.Subtotal,
		Total:               e.Total,
		IncomeTransactionID: e.IncomeTransactionID,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func toInvoiceModels(entities []*InvoiceEntity) []*model.Invoice {
	if entities == nil {
		return nil
	}
	models := make([]*model.Invoice, len(entities))
	for i, e := range entities {
		models[i] = toInvoiceModel(e)
	}
	return models
}

type InvoiceItemEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID    int64           `db:"business_id"    gorm:"column:business_id;not null;index"`
	InvoiceID     int64           `db:"invoice_id"     gorm:"column:invoice_id;not null;index"`
	Description   string          `db:"description"    gorm:"column:description;not null"`
	Qty           decimal.Decimal `db:"qty"            gorm:"column:qty;type:numeric(10,2);not null"`
	UnitPrice     decimal.Decimal `db:"unit_price"     gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal     decimal.Decimal `db:"line_total"     gorm:"column:line_total;type:numeric(12,2);not null"`
	SubCategoryID *int64          `db:"subcategory_id" gorm:"column:subcategory_id"`
	SortOrder     int             `db:"sort_order"     gorm:"column:sort_order;not null;default:0"`
}

func (InvoiceItemEntity) TableName() string {
	return "invoice_items"
}

func toInvoiceItemEntity(m *model.InvoiceItem) *InvoiceItemEntity {
	if m == nil {
		return nil
	}
	return &InvoiceItemEntity{
		ID:            m.ID,
		BusinessID:    m.BusinessID,
		InvoiceID:     m.InvoiceID,
		Description:   m.Description,
		Qty:           m.Qty,
		UnitPrice:     m.UnitPrice,
		LineTotal:     m.LineTotal,
		SubCategoryID: m.SubCategoryID,
		SortOrder:     m.SortOrder,
	}
}

func toInvoiceItemModel(e *InvoiceItemEntity) *model.InvoiceItem {
	if e == nil {
		return nil
	}
	return &model.InvoiceItem{
		ID:            e.ID,
		BusinessID:    e.BusinessID,
		InvoiceID:     e.InvoiceID,
		Description:   e.Description,
		Qty:           e.Qty,
		UnitPrice:     e.UnitPrice,
		LineTotal:     e.LineTotal,
		SubCategoryID: e.SubCategoryID,
		SortOrder:     e.SortOrder,
	}
}

func toInvoiceItemModels(entities []*InvoiceItemEntity) []model.InvoiceItem {
	if entities == nil {
		return nil
	}
	models := make([]model.InvoiceItem, len(entities))
	for i, e := range entities {
		models[i] = *toInvoiceItemModel(e)
	}
	return models
}

type InvoiceCounterEntity struct {
	ID         int64 `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID int64 `db:"business_id" gorm:"column:business_id;not null;uniqueIndex:idx_counter_business_year"`
	Year       int   `db:"year"        gorm:"column:year;not null;uniqueIndex:idx_counter_business_year"`
	LastSeq    int   `db:"last_seq"    gorm:"column:last_seq;not null;default:0"`
}

func (InvoiceCounterEntity) TableName() string {
	return "invoice_counters"
}

func toInvoiceCounterModel(e *InvoiceCounterEntity) *model.InvoiceCounter {
	if e == nil {
		return nil
	}
	return &model.InvoiceCounter{
		ID:         e.ID,
		BusinessID: e.BusinessID,
		Year:       e.Year,
		LastSeq:    e.LastSeq,
	}
}
