package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/schedc"
)

// PLBreakdownRow is one subcategory amount under a P&L category.
type PLBreakdownRow struct {
	SubCat     string          `json:"sub_cat"`
	SubCatSlug string          `json:"sub_cat_slug"`
	Amount     decimal.Decimal `json:"amount"`
}

// PLCategoryRow is one category with its alphabetical subcategory breakdown.
type PLCategoryRow struct {
	Category     string             `json:"category"`
	CategorySlug string             `json:"category_slug"`
	Type         model.CategoryType `json:"type"`
	SortOrder    int                `json:"sort_order"`
	Amount       decimal.Decimal    `json:"amount"`
	Breakdown    []PLBreakdownRow   `json:"breakdown"`
}

// ProfitLossSingle is the books-mode P&L for one year.
type ProfitLossSingle struct {
	Year              int             `json:"year"`
	Sales             decimal.Decimal `json:"sales"`
	ReturnsAllowances decimal.Decimal `json:"returns_allowances"`
	NetSales          decimal.Decimal `json:"net_sales"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	IncomeRows        []PLCategoryRow `json:"income_rows"`
	ExpenseRows       []PLCategoryRow `json:"expense_rows"`
}

// PLYoYRow is one label aligned across the report years.
type PLYoYRow struct {
	Label  string                  `json:"label"`
	Totals map[int]decimal.Decimal `json:"totals"`
}

// ProfitLossYoY is the trailing-window P&L: the five headline scalars plus
// full category rows, each aligned by label across years.
type ProfitLossYoY struct {
	Years             []int      `json:"years"`
	Sales             PLYoYRow   `json:"sales"`
	ReturnsAllowances PLYoYRow   `json:"returns_allowances"`
	NetSales          PLYoYRow   `json:"net_sales"`
	TotalExpenses     PLYoYRow   `json:"total_expenses"`
	NetProfit         PLYoYRow   `json:"net_profit"`
	IncomeRows        []PLYoYRow `json:"income_rows"`
	ExpenseRows       []PLYoYRow `json:"expense_rows"`
}

func isReturnsCategory(cat model.Category) bool {
	return cat.IsReturnsAllowances || cat.ScheduleCLine == schedc.LineReturnsAllowances
}

type plCatBucket struct {
	name      string
	slug      string
	ctype     model.CategoryType
	sortOrder int
	total     decimal.Decimal
	subs      map[int64]*subBucket
}

// BuildProfitLossSingle computes the books P&L: signed amounts (refunds
// negate), Returns & Allowances shown as an always-positive reduction of
// Sales. Rows must already be filtered to book-visible transactions for the
// year.
func BuildProfitLossSingle(year int, rows []TxnRow) ProfitLossSingle {
	income := make(map[int64]*plCatBucket)
	expense := make(map[int64]*plCatBucket)

	sales := decimal.Zero
	returns := decimal.Zero

	for _, r := range rows {
		amt := r.Txn.EffectiveAmount()
		if amt.IsZero() {
			continue
		}

		isReturns := r.Cat.Type == model.CategoryTypeIncome && isReturnsCategory(r.Cat)
		if isReturns {
			// Returns always reduce income, whatever sign was stored.
			amt = schedc.NormalizeReturns(r.Txn.Amount)
		}

		target := expense
		if r.Cat.Type == model.CategoryTypeIncome {
			target = income
		}
		cb := target[r.Cat.ID]
		if cb == nil {
			cb = &plCatBucket{
				name:      r.Cat.Name,
				slug:      r.Cat.Slug,
				ctype:     r.Cat.Type,
				sortOrder: r.Cat.SortOrder,
				total:     decimal.Zero,
				subs:      make(map[int64]*subBucket),
			}
			target[r.Cat.ID] = cb
		}
		cb.total = cb.total.Add(amt)

		sb := cb.subs[r.Sub.ID]
		if sb == nil {
			sb = &subBucket{name: r.Sub.Name, slug: r.Sub.Slug, total: decimal.Zero}
			cb.subs[r.Sub.ID] = sb
		}
		sb.total = sb.total.Add(amt)

		if r.Cat.Type == model.CategoryTypeIncome {
			if isReturns {
				returns = returns.Add(amt.Abs())
			} else {
				sales = sales.Add(amt)
			}
		}
	}

	incomeRows := plRows(income)
	expenseRows := plRows(expense)

	totalExpenses := decimal.Zero
	for _, r := range expenseRows {
		totalExpenses = totalExpenses.Add(r.Amount)
	}

	netSales := sales.Sub(returns)
	return ProfitLossSingle{
		Year:              year,
		Sales:             sales,
		ReturnsAllowances: returns,
		NetSales:          netSales,
		TotalExpenses:     totalExpenses,
		NetProfit:         netSales.Sub(totalExpenses),
		IncomeRows:        incomeRows,
		ExpenseRows:       expenseRows,
	}
}

func plRows(m map[int64]*plCatBucket) []PLCategoryRow {
	cats := make([]*plCatBucket, 0, len(m))
	for _, cb := range m {
		if cb.total.IsZero() {
			continue
		}
		cats = append(cats, cb)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].sortOrder != cats[j].sortOrder {
			return cats[i].sortOrder < cats[j].sortOrder
		}
		return strings.ToLower(cats[i].name) < strings.ToLower(cats[j].name)
	})

	rows := make([]PLCategoryRow, 0, len(cats))
	for _, cb := range cats {
		subs := make([]*subBucket, 0, len(cb.subs))
		for _, sb := range cb.subs {
			if sb.total.IsZero() {
				continue
			}
			subs = append(subs, sb)
		}
		sort.Slice(subs, func(i, j int) bool {
			return strings.ToLower(subs[i].name) < strings.ToLower(subs[j].name)
		})

		breakdown := make([]PLBreakdownRow, 0, len(subs))
		for _, sb := range subs {
			breakdown = append(breakdown, PLBreakdownRow{SubCat: sb.name, SubCatSlug: sb.slug, Amount: sb.total})
		}
		rows = append(rows, PLCategoryRow{
			Category:     cb.name,
			CategorySlug: cb.slug,
			Type:         cb.ctype,
			SortOrder:    cb.sortOrder,
			Amount:       cb.total,
			Breakdown:    breakdown,
		})
	}
	return rows
}

// BuildProfitLossYoY computes the headline scalars and category rows across
// a trailing year window, aligning category labels across years the same way
// the Schedule C YoY view aligns lines.
func BuildProfitLossYoY(years []int, rowsByYear map[int][]TxnRow) ProfitLossYoY {
	zeroTotals := func() map[int]decimal.Decimal {
		m := make(map[int]decimal.Decimal, len(years))
		for _, y := range years {
			m[y] = decimal.Zero
		}
		return m
	}

	salesBy := zeroTotals()
	returnsBy := zeroTotals()
	netSalesBy := zeroTotals()
	expensesBy := zeroTotals()
	netProfitBy := zeroTotals()

	incomeTotals := make(map[string]map[int]decimal.Decimal)
	expenseTotals := make(map[string]map[int]decimal.Decimal)

	for _, y := range years {
		pl := BuildProfitLossSingle(y, rowsByYear[y])
		salesBy[y] = pl.Sales
		returnsBy[y] = pl.ReturnsAllowances
		netSalesBy[y] = pl.NetSales
		expensesBy[y] = pl.TotalExpenses
		netProfitBy[y] = pl.NetProfit

		for _, r := range pl.IncomeRows {
			m := incomeTotals[r.Category]
			if m == nil {
				m = zeroTotals()
				incomeTotals[r.Category] = m
			}
			m[y] = m[y].Add(r.Amount)
		}
		for _, r := range pl.ExpenseRows {
			m := expenseTotals[r.Category]
			if m == nil {
				m = zeroTotals()
				expenseTotals[r.Category] = m
			}
			m[y] = m[y].Add(r.Amount)
		}
	}

	return ProfitLossYoY{
		Years:             years,
		Sales:             PLYoYRow{Label: "Sales", Totals: salesBy},
		ReturnsAllowances: PLYoYRow{Label: "Less: Returns & Allowances", Totals: returnsBy},
		NetSales:          PLYoYRow{Label: "Net Sales", Totals: netSalesBy},
		TotalExpenses:     PLYoYRow{Label: "Total Expenses", Totals: expensesBy},
		NetProfit:         PLYoYRow{Label: "Net Profit", Totals: netProfitBy},
		IncomeRows:        yoyRows(incomeTotals),
		ExpenseRows:       yoyRows(expenseTotals),
	}
}

func yoyRows(totals map[string]map[int]decimal.Decimal) []PLYoYRow {
	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})

	rows := make([]PLYoYRow, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, PLYoYRow{Label: label, Totals: totals[label]})
	}
	return rows
}
