// Package schedc is the pure Schedule C line engine: line-code parsing and
// IRS-order sorting, Part routing, and the deductible-amount transform. It
// holds no state and touches no storage.
package schedc

// Printed IRS Schedule C line codes. Part I is income, Part II expenses;
// 27b category totals stay in Part II while their breakdown prints in Part V.
const (
	LineGrossReceipts     = "1"
	LineReturnsAllowances = "2"

	LineAdvertising      = "8"
	LineCarTruck         = "9"
	LineCommissionsFees  = "10"
	LineContractLabor    = "11"
	LineDepletion        = "12"
	LineDepreciation     = "13"
	LineEmployeeBenefits = "14"
	LineInsurance        = "15"
	LineInterestMortgage = "16a"
	LineInterestOther    = "16b"
	LineLegalPro         = "17"
	LineOffice           = "18"
	LinePensionProfit    = "19"
	LineRentVehicles     = "20a"
	LineRentOther        = "20b"
	LineRepairs          = "21"
	LineSupplies         = "22"
	LineTaxesLicenses    = "23"
	LineTravel           = "24a"
	LineMeals            = "24b"
	LineUtilities        = "25"
	LineWages            = "26"
	LineEnergyEfficient  = "27a"
	LineOtherExpenses    = "27b"
)

var lineLabels = map[string]string{
	LineGrossReceipts:     "Gross Receipts",
	LineReturnsAllowances: "Returns & Allowances",
	LineAdvertising:       "Advertising",
	LineCarTruck:          "Car & Truck Expenses",
	LineCommissionsFees:   "Commissions & Fees",
	LineContractLabor:     "Contract Labor",
	LineDepletion:         "Depletion",
	LineDepreciation:      "Depreciation",
	LineEmployeeBenefits:  "Employee Benefit Programs",
	LineInsurance:         "Insurance",
	LineInterestMortgage:  "Interest: Mortgage",
	LineInterestOther:     "Interest: Other",
	LineLegalPro:          "Legal & Professional Services",
	LineOffice:            "Office Expense",
	LinePensionProfit:     "Pension & Profit-Sharing Plans",
	LineRentVehicles:      "Rent or Lease: Vehicles, Machinery, Equipment",
	LineRentOther:         "Rent or Lease: Other Business Property",
	LineRepairs:           "Repairs & Maintenance",
	LineSupplies:          "Supplies",
	LineTaxesLicenses:     "Taxes & Licenses",
	LineTravel:            "Travel & Meals: Travel",
	LineMeals:             "Travel & Meals: Deductible Meals",
	LineUtilities:         "Utilities",
	LineWages:             "Wages",
	LineEnergyEfficient:   "Energy Efficient Buildings",
	LineOtherExpenses:     "Other Expenses",
}

// LineLabel returns the heading printed for a line code, "Other" for codes
// without a known label.
func LineLabel(code string) string {
	if l, ok := lineLabels[code]; ok {
		return l
	}
	return "Other"
}

// EffectiveLine picks the subcategory override when present, else the
// category line.
func EffectiveLine(subLine, categoryLine string) string {
	if subLine != "" {
		return subLine
	}
	return categoryLine
}

const (
	sortRankUnparseable = 9000 // after every valid line
	sortRankBlank       = 9999 // last of all
)

// SortKey orders line codes in IRS form order: by numeric part, then suffix
// letter rank (none < a < b). Unparseable codes sort after all valid codes;
// blank codes sort last.
type SortKey struct {
	Num    int
	Suffix int
}

func (k SortKey) Less(other SortKey) bool {
	if k.Num != other.Num {
		return k.Num < other.Num
	}
	return k.Suffix < other.Suffix
}

// LineSortKey parses a code of the form digits plus optional single letter.
func LineSortKey(code string) SortKey {
	if code == "" {
		return SortKey{Num: sortRankBlank}
	}

	num := 0
	i := 0
	for ; i < len(code) && code[i] >= '0' && code[i] <= '9'; i++ {
		num = num*10 + int(code[i]-'0')
	}
	if i == 0 || num == 0 {
		return SortKey{Num: sortRankUnparseable}
	}

	suffix := 0
	if i < len(code) {
		c := code[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c < 'a' || c > 'z' || i+1 != len(code) {
			return SortKey{Num: sortRankUnparseable}
		}
		suffix = 1 + int(c-'a')
	}
	return SortKey{Num: num, Suffix: suffix}
}

// LessLine reports whether line code a sorts before b in IRS order.
func LessLine(a, b string) bool {
	return LineSortKey(a).Less(LineSortKey(b))
}

// Part is a Schedule C report bucket.
type Part string

const (
	PartI   Part = "Part I"
	PartII  Part = "Part II"
	PartV   Part = "Part V"
	PartNon Part = ""
)

// PartForLine routes a category-level total: lines 1-7 are income, 8-29
// expenses. Routing is by parsed line number, never by display label.
func PartForLine(code string) Part {
	k := LineSortKey(code)
	switch {
	case k.Num >= 1 && k.Num <= 7:
		return PartI
	case k.Num >= 8 && k.Num <= 29:
		return PartII
	default:
		return PartNon
	}
}

// BreakdownPart routes subcategory-level detail: the Other Expenses line
// (27b) prints its breakdown in Part V; everything else follows the
// category-level bucket.
func BreakdownPart(code string) Part {
	if code == LineOtherExpenses {
		return PartV
	}
	return PartForLine(code)
}
