package model

// CategoryType splits the chart of accounts into income and expense sides.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// DeductionRule controls what fraction of a subcategory's spend is
// tax-deductible. It is the sole driver of the tax-mode transform; reports
// never branch on subcategory names.
type DeductionRule string

const (
	DeductionFull          DeductionRule = "full"
	DeductionMeals50       DeductionRule = "meals_50"
	DeductionNondeductible DeductionRule = "nondeductible"
)

// PayeeRole restricts which kind of contact a subcategory's transactions may
// reference.
type PayeeRole string

const (
	PayeeRoleAny        PayeeRole = "any"
	PayeeRoleVendor     PayeeRole = "vendor"
	PayeeRoleContractor PayeeRole = "contractor"
	PayeeRoleCustomer   PayeeRole = "customer"
)

// Category belongs to exactly one business. ScheduleCLine holds the printed
// IRS line code ("1".."27b"), blank when the category has no tax mapping.
type Category struct {
	ID                  int64        `json:"id"`
	BusinessID          int64        `json:"business_id"`
	Name                string       `json:"name"`
	Slug                string       `json:"slug"`
	Type                CategoryType `json:"type"`
	IsActive            bool         `json:"is_active"`
	SortOrder           int          `json:"sort_order"`
	BookReports         bool         `json:"book_reports"`
	TaxReports          bool         `json:"tax_reports"`
	ScheduleCLine       string       `json:"schedule_c_line"`
	ReportGroup         string       `json:"report_group"`
	IsReturnsAllowances bool         `json:"is_returns_allowances"`
}

func (Category) TableName() string { return "categories" }

// SubCategory belongs to a Category within the same business. ScheduleCLine
// is an optional override of the parent category's line.
type SubCategory struct {
	ID            int64         `json:"id"`
	BusinessID    int64         `json:"business_id"`
	CategoryID    int64         `json:"category_id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	IsActive      bool          `json:"is_active"`
	SortOrder     int           `json:"sort_order"`
	BookEnabled   bool          `json:"book_enabled"`
	TaxEnabled    bool          `json:"tax_enabled"`
	ScheduleCLine string        `json:"schedule_c_line"`
	DeductionRule DeductionRule `json:"deduction_rule"`

	// IsFuel marks gas/fuel-like subcategories for the rental-car-only tax
	// inclusion rule. Explicit flag; the slug heuristic survives only as a
	// migration shim in schedc.LooksFuelLike.
	IsFuel bool `json:"is_fuel"`

	Is1099ReportableDefault bool `json:"is_1099_reportable_default"`
	IsCapitalizable         bool `json:"is_capitalizable"`

	RequiresPayee bool      `json:"requires_payee"`
	PayeeRole     PayeeRole `json:"payee_role"`

	RequiresTransport bool `json:"requires_transport"`
	RequiresVehicle   bool `json:"requires_vehicle"`
}

func (SubCategory) TableName() string { return "subcategories" }

// EffectiveScheduleCLine returns the subcategory override when set, else the
// parent category's line.
func (s SubCategory) EffectiveScheduleCLine(parent Category) string {
	if s.ScheduleCLine != "" {
		return s.ScheduleCLine
	}
	return parent.ScheduleCLine
}
