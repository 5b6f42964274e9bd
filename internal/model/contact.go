package model

// Contact is a business-owned counterparty (customer, vendor or contractor).
// The role flags feed SubCategory.PayeeRole validation.
type Contact struct {
	ID          int64  `json:"id"`
	BusinessID  int64  `json:"business_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`

	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	IsVendor     bool `json:"is_vendor"`
	IsCustomer   bool `json:"is_customer"`
	IsContractor bool `json:"is_contractor"`
}

func (Contact) TableName() string { return "contacts" }

// HasRole reports whether the contact satisfies a subcategory payee role.
func (c Contact) HasRole(role PayeeRole) bool {
	switch role {
	case PayeeRoleVendor:
		return c.IsVendor
	case PayeeRoleContractor:
		return c.IsContractor
	case PayeeRoleCustomer:
		return c.IsCustomer
	default:
		return true
	}
}

// Job groups transactions and invoices under a yearly engagement.
type Job struct {
	ID         int64  `json:"id"`
	BusinessID int64  `json:"business_id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	IsActive   bool   `json:"is_active"`
}

func (Job) TableName() string { return "jobs" }
