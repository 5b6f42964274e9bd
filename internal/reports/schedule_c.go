package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/schedc"
)

// BreakdownRow is one non-zero subcategory bucket under a Schedule C line.
type BreakdownRow struct {
	SubCat     string          `json:"sub_cat"`
	SubCatSlug string          `json:"sub_cat_slug"`
	Total      decimal.Decimal `json:"total"`
}

// LineRow is one Schedule C operating-expense line with its subcategory
// breakdown, ordered by the IRS line sort key.
type LineRow struct {
	Line          string          `json:"line"`
	CategoryLabel string          `json:"category_label"`
	Part          schedc.Part     `json:"part"`
	BreakdownPart schedc.Part     `json:"breakdown_part"`
	Total         decimal.Decimal `json:"total"`
	Breakdown     []BreakdownRow  `json:"breakdown"`
}

// YoYLineRow aligns one line across the report years; a line absent in a
// year carries zero there.
type YoYLineRow struct {
	Line          string                  `json:"line"`
	CategoryLabel string                  `json:"category_label"`
	Totals        map[int]decimal.Decimal `json:"totals"`
}

type subBucket struct {
	name  string
	slug  string
	total decimal.Decimal
}

// BuildScheduleCLines aggregates expense rows into ordered Schedule C lines
// and a grand total. Rows must already be filtered to tax-visible expense
// transactions for the report interval; visibility is a query concern.
//
// Zero-sum subcategory buckets are dropped, then zero-sum lines.
func BuildScheduleCLines(rows []TxnRow, mealsRate decimal.Decimal, mode schedc.Mode) ([]LineRow, decimal.Decimal) {
	// line code -> subcategory id -> bucket
	buckets := make(map[string]map[int64]*subBucket)

	for _, r := range rows {
		line := schedc.EffectiveLine(r.Sub.ScheduleCLine, r.Cat.ScheduleCLine)
		if line == "" {
			continue
		}

		amt, ok := schedc.DeductibleAmount(r.Txn, r.Sub, mode, mealsRate)
		if !ok || amt.IsZero() {
			continue
		}

		perLine := buckets[line]
		if perLine == nil {
			perLine = make(map[int64]*subBucket)
			buckets[line] = perLine
		}
		b := perLine[r.Sub.ID]
		if b == nil {
			b = &subBucket{name: r.Sub.Name, slug: r.Sub.Slug, total: decimal.Zero}
			perLine[r.Sub.ID] = b
		}
		b.total = b.total.Add(amt)
	}

	lineCodes := make([]string, 0, len(buckets))
	for code := range buckets {
		lineCodes = append(lineCodes, code)
	}
	sort.Slice(lineCodes, func(i, j int) bool {
		return schedc.LessLine(lineCodes[i], lineCodes[j])
	})

	lines := make([]LineRow, 0, len(lineCodes))
	grand := decimal.Zero

	for _, code := range lineCodes {
		subs := make([]*subBucket, 0, len(buckets[code]))
		for _, b := range buckets[code] {
			subs = append(subs, b)
		}
		sort.Slice(subs, func(i, j int) bool {
			return strings.ToLower(subs[i].name) < strings.ToLower(subs[j].name)
		})

		breakdown := make([]BreakdownRow, 0, len(subs))
		lineTotal := decimal.Zero
		for _, b := range subs {
			if b.total.IsZero() {
				continue
			}
			breakdown = append(breakdown, BreakdownRow{SubCat: b.name, SubCatSlug: b.slug, Total: b.total})
			lineTotal = lineTotal.Add(b.total)
		}
		if lineTotal.IsZero() {
			continue
		}

		grand = grand.Add(lineTotal)
		lines = append(lines, LineRow{
			Line:          code,
			CategoryLabel: schedc.LineLabel(code),
			Part:          schedc.PartForLine(code),
			BreakdownPart: schedc.BreakdownPart(code),
			Total:         lineTotal,
			Breakdown:     breakdown,
		})
	}

	return lines, grand
}

// BuildScheduleCYoY runs the single-year aggregation per year and aligns the
// resulting lines by (line, label) across the window. A line present in only
// one year still appears, zeroed in the others. Returned alongside are the
// per-year grand totals and the ending year's grand total.
func BuildScheduleCYoY(years []int, rowsByYear map[int][]TxnRow, mealsRate decimal.Decimal, mode schedc.Mode) ([]YoYLineRow, map[int]decimal.Decimal, decimal.Decimal) {
	type lineKey struct {
		line  string
		label string
	}

	byYear := make(map[int]map[lineKey]decimal.Decimal, len(years))
	keys := make(map[lineKey]struct{})
	yearTotals := make(map[int]decimal.Decimal, len(years))

	for _, y := range years {
		lines, grand := BuildScheduleCLines(rowsByYear[y], mealsRate, mode)
		yearTotals[y] = grand
		m := make(map[lineKey]decimal.Decimal, len(lines))
		for _, ln := range lines {
			k := lineKey{line: ln.Line, label: ln.CategoryLabel}
			m[k] = ln.Total
			keys[k] = struct{}{}
		}
		byYear[y] = m
	}

	ordered := make([]lineKey, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].line != ordered[j].line {
			return schedc.LessLine(ordered[i].line, ordered[j].line)
		}
		return ordered[i].label < ordered[j].label
	})

	rows := make([]YoYLineRow, 0, len(ordered))
	for _, k := range ordered {
		totals := make(map[int]decimal.Decimal, len(years))
		for _, y := range years {
			if v, ok := byYear[y][k]; ok {
				totals[y] = v
			} else {
				totals[y] = decimal.Zero
			}
		}
		rows = append(rows, YoYLineRow{Line: k.line, CategoryLabel: k.label, Totals: totals})
	}

	grandTotal := decimal.Zero
	if len(years) > 0 {
		grandTotal = yearTotals[years[len(years)-1]]
	}
	return rows, yearTotals, grandTotal
}

// TrailingYears returns the ascending year window ending at endingYear.
func TrailingYears(endingYear, count int) []int {
	if count < 1 {
		count = 1
	}
	years := make([]int, 0, count)
	for y := endingYear - (count - 1); y <= endingYear; y++ {
		years = append(years, y)
	}
	return years
}
