// Package reports builds the Schedule C, Profit & Loss and mileage report
// structures. Builders are pure: they aggregate rows the repository has
// already fetched, so they are trivially testable and safely parallel.
package reports

import "github.com/booksbridge/books-gateway/internal/model"

// TxnRow is one joined ledger row: the transaction plus the subcategory and
// category it was filed under.
type TxnRow struct {
	Txn model.Transaction
	Sub model.SubCategory
	Cat model.Category
}
