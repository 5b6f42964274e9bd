package schedc

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
)

// Mode selects between the deductible tax view and the actual-spending
// books view.
type Mode string

const (
	ModeTax   Mode = "tax"
	ModeBooks Mode = "books"
)

// DefaultMealsRate is the IRS meals deductibility fraction.
var DefaultMealsRate = decimal.NewFromFloat(0.5)

// ParseMode validates a mode string, defaulting blank to tax.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeTax, "":
		return ModeTax, true
	case ModeBooks:
		return ModeBooks, true
	default:
		return "", false
	}
}

// IsFuelLike reports whether a subcategory falls under the fuel rule. The
// explicit flag wins; the slug/name sniff is a compatibility shim for rows
// imported before the flag existed.
func IsFuelLike(sub model.SubCategory) bool {
	return sub.IsFuel || LooksFuelLike(sub.Slug, sub.Name)
}

// LooksFuelLike is the legacy-data shim: gas/fuel detection by slug or name.
// New code must set SubCategory.IsFuel instead of relying on this.
func LooksFuelLike(slug, name string) bool {
	s := strings.ToLower(slug)
	n := strings.ToLower(name)
	return strings.Contains(s, "gas") || strings.Contains(s, "fuel") ||
		strings.Contains(n, "gas") || strings.Contains(n, "fuel")
}

// NormalizeReturns forces a Returns & Allowances amount negative so returns
// always reduce income, whatever sign was stored. Idempotent.
func NormalizeReturns(amount decimal.Decimal) decimal.Decimal {
	return amount.Abs().Neg()
}

// DeductibleAmount applies the tax-mode transforms to one expense
// transaction and reports whether it contributes to its line at all.
//
// Tax mode: fuel-like spend is excluded unless the transport was a rental
// car (standard mileage covers owned-vehicle fuel); nondeductible
// subcategories are excluded; meals_50 halves the amount. Books mode applies
// none of these and returns the full effective amount.
func DeductibleAmount(txn model.Transaction, sub model.SubCategory, mode Mode, mealsRate decimal.Decimal) (decimal.Decimal, bool) {
	amt := txn.EffectiveAmount()
	if mode != ModeTax {
		return amt, true
	}

	if IsFuelLike(sub) && txn.TransportType != model.TransportRental {
		return decimal.Zero, false
	}

	switch sub.DeductionRule {
	case model.DeductionNondeductible:
		return decimal.Zero, false
	case model.DeductionMeals50:
		return amt.Mul(mealsRate).Round(2), true
	default:
		return amt, true
	}
}
