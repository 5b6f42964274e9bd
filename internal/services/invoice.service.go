package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/booksbridge/books-gateway/internal/apperr"
	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/repository"
	"github.com/booksbridge/books-gateway/pkg/logger"
	"github.com/booksbridge/books-gateway/pkg/prom"
)

// maxSeq is the 4-digit sequence ceiling of the YY#### number format.
const maxSeq = 9999

var invoiceNumberRe = regexp.MustCompile(`^\d{6}[a-z]?$`)
var manualNumberRe = regexp.MustCompile(`^\d{6}$`)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice, items []model.InvoiceItem) (*model.Invoice, error)
	Get(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error)
	GetForUpdate(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error)
	Update(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)
	List(ctx context.Context, businessID int64, status *model.InvoiceStatus) ([]*model.Invoice, error)
	ListItems(ctx context.Context, businessID, invoiceID int64) ([]model.InvoiceItem, error)
	MaxNonSuffixedNumber(ctx context.Context, businessID int64, year int) (string, error)
	NumbersWithPrefix(ctx context.Context, businessID int64, base string) ([]string, error)
	SavePDF(ctx context.Context, businessID, invoiceID int64, pdf []byte) error
	GetPDF(ctx context.Context, businessID, invoiceID int64) ([]byte, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CounterRepository interface {
	AllocateNext(ctx context.Context, businessID int64, year int) (int, error)
	BumpTo(ctx context.Context, businessID int64, year int, seq int) error
	Peek(ctx context.Context, businessID int64, year int) (*model.InvoiceCounter, error)
}

type ContactDirectory interface {
	Get(ctx context.Context, businessID, contactID int64) (*model.Contact, error)
	GetJob(ctx context.Context, businessID, jobID int64) (*model.Job, error)
}

type ChartReader interface {
	GetCategory(ctx context.Context, businessID, categoryID int64) (*model.Category, error)
	GetSubCategory(ctx context.Context, businessID, subCategoryID int64) (*model.SubCategory, error)
}

type LedgerWriter interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
}

// Renderer turns an invoice into PDF bytes. Implemented by the gateways
// package against the external renderer service.
type Renderer interface {
	Render(ctx context.Context, inv model.Invoice, items []model.InvoiceItem) ([]byte, error)
}

// InvoiceService owns number allocation and the lifecycle state machine.
// Every transition runs inside one database transaction and re-checks its
// guard after taking the invoice row lock, so concurrent requests cannot
// double-apply a transition or double-post income.
type InvoiceService struct {
	invoiceRepo InvoiceRepository
	counterRepo CounterRepository
	contactRepo ContactDirectory
	chartRepo   ChartReader
	ledgerRepo  LedgerWriter
	renderer    Renderer
	reportCache ReportInvalidator

	// today supplies default dates; injectable so tests pin the clock.
	today func() time.Time
}

func NewInvoiceService(
	invoiceRepo InvoiceRepository,
	counterRepo CounterRepository,
	contactRepo ContactDirectory,
	chartRepo ChartReader,
	ledgerRepo LedgerWriter,
	renderer Renderer,
	reportCache ReportInvalidator,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		counterRepo: counterRepo,
		contactRepo: contactRepo,
		chartRepo:   chartRepo,
		ledgerRepo:  ledgerRepo,
		renderer:    renderer,
		reportCache: reportCache,
		today:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the default-date source.
func (s *InvoiceService) SetClock(today func() time.Time) {
	s.today = today
}

// FormatInvoiceNumber renders a year + sequence as YY####.
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("%02d%04d", year%100, seq)
}

// AllocateNextNumber reserves and returns the next YY#### number for the
// issue date's year. The counter increment commits with this call; a number
// handed out here is burned even if the caller never uses it.
func (s *InvoiceService) AllocateNextNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error) {
	var number string
	err := s.invoiceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.allocateNumber(ctx, businessID, issueDate)
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// allocateNumber must run inside a caller transaction; the counter row lock
// is held until that transaction commits.
func (s *InvoiceService) allocateNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error) {
	year := issueDate.Year()
	seq, err := s.counterRepo.AllocateNext(ctx, businessID, year)
	if err != nil {
		if isLockTimeout(err) {
			return "", apperr.Conflict("invoice number allocation is busy, try again")
		}
		return "", err
	}
	if seq > maxSeq {
		return "", apperr.Exhausted("invoice numbers for year %d are exhausted", year)
	}
	prom.IncCounter(prom.SystemInvoices, prom.MetricInvoiceNumbersAllocated)
	return FormatInvoiceNumber(year, seq), nil
}

// PreviewNextNumber returns the number the next allocation would produce
// without reserving it. No lock is taken; by the time a draft is saved the
// real allocation may yield a later number.
func (s *InvoiceService) PreviewNextNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error) {
	year := issueDate.Year()
	c, err := s.counterRepo.Peek(ctx, businessID, year)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(year, c.LastSeq+1), nil
}

// ValidateManualNumber checks a typed-in number: exact YY#### (no suffix),
// the issue date's year prefix, and strictly above the highest non-suffixed
// number already issued for that year.
func (s *InvoiceService) ValidateManualNumber(ctx context.Context, businessID int64, issueDate time.Time, candidate string) error {
	if !manualNumberRe.MatchString(candidate) {
		return apperr.Validation("invoice_number", "invoice number must be exactly 6 digits (YY####)")
	}
	prefix := fmt.Sprintf("%02d", issueDate.Year()%100)
	if !strings.HasPrefix(candidate, prefix) {
		return apperr.Validation("invoice_number", "invoice number must start with %s for issue year %d", prefix, issueDate.Year())
	}

	max, err := s.invoiceRepo.MaxNonSuffixedNumber(ctx, businessID, issueDate.Year())
	if err != nil {
		return err
	}
	if max == "" {
		return nil
	}
	candN, _ := strconv.Atoi(candidate)
	maxN, _ := strconv.Atoi(max)
	if candN <= maxN {
		return apperr.Validation("invoice_number", "invoice number must be greater than %s", max)
	}
	return nil
}

// BumpCounterIfNeeded advances the counter past a manually entered number so
// auto-allocation never re-issues below it. Never lowers the counter.
func (s *InvoiceService) BumpCounterIfNeeded(ctx context.Context, businessID int64, issueDate time.Time, invoiceNumber string) error {
	if !manualNumberRe.MatchString(invoiceNumber) {
		return apperr.Validation("invoice_number", "invoice number must be exactly 6 digits (YY####)")
	}
	seq, _ := strconv.Atoi(invoiceNumber[2:])
	err := s.counterRepo.BumpTo(ctx, businessID, issueDate.Year(), seq)
	if err != nil && isLockTimeout(err) {
		return apperr.Conflict("invoice counter is busy, try again")
	}
	return err
}

// NextRevisionSuffix returns the first unused a-z suffix for a base 6-digit
// number. Revisions never advance the numeric counter.
func (s *InvoiceService) NextRevisionSuffix(ctx context.Context, businessID int64, baseNumber string) (string, error) {
	if !manualNumberRe.MatchString(baseNumber) {
		return "", apperr.Validation("invoice_number", "base number must be exactly 6 digits")
	}
	existing, err := s.invoiceRepo.NumbersWithPrefix(ctx, businessID, baseNumber)
	if err != nil {
		return "", err
	}
	used := make(map[byte]bool, len(existing))
	for _, n := range existing {
		if len(n) == len(baseNumber)+1 {
			used[n[len(n)-1]] = true
		}
	}
	for c := byte('a'); c <= 'z'; c++ {
		if !used[c] {
			return string(c), nil
		}
	}
	return "", apperr.Exhausted("revision limit exceeded for invoice %s", baseNumber)
}

// CreateDraft reserves a number (auto or validated manual) and inserts the
// draft with its items in one transaction, so a failed insert never burns a
// committed number.
func (s *InvoiceService) CreateDraft(ctx context.Context, businessID int64, req model.InvoiceCreateRequest) (*model.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = s.today()
	}

	if _, err := s.contactRepo.Get(ctx, businessID, req.ContactID); err != nil {
		return nil, mapDirectoryErr(err, "contact")
	}
	if req.JobID != nil {
		if _, err := s.contactRepo.GetJob(ctx, businessID, *req.JobID); err != nil {
			return nil, mapDirectoryErr(err, "job")
		}
	}

	items := make([]model.InvoiceItem, len(req.Items))
	for i, p := range req.Items {
		items[i] = model.InvoiceItem{
			BusinessID:    businessID,
			Description:   p.Description,
			Qty:           p.Qty,
			UnitPrice:     p.UnitPrice,
			LineTotal:     model.DeriveLineTotal(p.Qty, p.UnitPrice),
			SubCategoryID: p.SubCategoryID,
			SortOrder:     p.SortOrder,
		}
	}
	subtotal, total := model.DeriveInvoiceTotals(items)

	var created *model.Invoice
	err := s.invoiceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		number := req.InvoiceNumber
		if number == "" {
			n, err := s.allocateNumber(ctx, businessID, issueDate)
			if err != nil {
				return err
			}
			number = n
		} else {
			if err := s.ValidateManualNumber(ctx, businessID, issueDate, number); err != nil {
				return err
			}
			if err := s.BumpCounterIfNeeded(ctx, businessID, issueDate, number); err != nil {
				return err
			}
		}

		inv := &model.Invoice{
			BusinessID:    businessID,
			Status:        model.InvoiceStatusDraft,
			IssueDate:     issueDate,
			DueDate:       req.DueDate,
			ContactID:     req.ContactID,
			JobID:         req.JobID,
			InvoiceNumber: number,
			Memo:          req.Memo,
			Subtotal:      subtotal,
			Total:         total,
		}

		c, err := s.invoiceRepo.Create(ctx, inv, items)
		if err != nil {
			return mapInvoiceErr(err)
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice draft created", "business_id", businessID, "invoice_id", created.ID, "number", created.InvoiceNumber)
	return created, nil
}

func (s *InvoiceService) Get(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, []model.InvoiceItem, error) {
	inv, err := s.invoiceRepo.Get(ctx, businessID, invoiceID)
	if err != nil {
		return nil, nil, mapInvoiceErr(err)
	}
	items, err := s.invoiceRepo.ListItems(ctx, businessID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

func (s *InvoiceService) List(ctx context.Context, businessID int64, status *model.InvoiceStatus) ([]*model.Invoice, error) {
	return s.invoiceRepo.List(ctx, businessID, status)
}

func (s *InvoiceService) GetPDF(ctx context.Context, businessID, invoiceID int64) ([]byte, error) {
	pdf, err := s.invoiceRepo.GetPDF(ctx, businessID, invoiceID)
	if err != nil {
		return nil, mapInvoiceErr(err)
	}
	if len(pdf) == 0 {
		return nil, apperr.State("invoice has not been sent, no document exists yet")
	}
	return pdf, nil
}

// Send moves draft -> sent: recompute totals, freeze the bill-to snapshot,
// stamp sent_date, render and store the PDF, then flip status. A render
// failure rolls everything back and the invoice stays a draft.
func (s *InvoiceService) Send(ctx context.Context, businessID, invoiceID int64) (inv *model.Invoice, err error) {
	defer func() { s.observeTransition("send", err) }()

	err = s.invoiceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, lerr := s.invoiceRepo.GetForUpdate(ctx, businessID, invoiceID)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		if locked.Status != model.InvoiceStatusDraft {
			return apperr.State("only draft invoices can be sent (status is %s)", locked.Status)
		}

		items, lerr := s.invoiceRepo.ListItems(ctx, businessID, invoiceID)
		if lerr != nil {
			return lerr
		}
		locked.Subtotal, locked.Total = model.DeriveInvoiceTotals(items)

		contact, lerr := s.contactRepo.Get(ctx, businessID, locked.ContactID)
		if lerr != nil {
			return mapDirectoryErr(lerr, "contact")
		}
		locked.BillTo = model.BillToFromContact(*contact)

		sentDate := s.today()
		locked.SentDate = &sentDate
		locked.Status = model.InvoiceStatusSent

		pdf, lerr := s.renderer.Render(ctx, *locked, items)
		if lerr != nil {
			return fmt.Errorf("render invoice %s: %w", locked.InvoiceNumber, lerr)
		}

		updated, lerr := s.invoiceRepo.Update(ctx, locked)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		if lerr := s.invoiceRepo.SavePDF(ctx, businessID, invoiceID, pdf); lerr != nil {
			return lerr
		}
		inv = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice sent", "business_id", businessID, "invoice_id", invoiceID, "number", inv.InvoiceNumber)
	return inv, nil
}

// MarkPaid moves sent -> paid and posts exactly one income transaction for
// the invoice total. The guard (status sent, no income transaction linked)
// is re-checked under the row lock, so a second concurrent call fails
// instead of double-posting.
func (s *InvoiceService) MarkPaid(ctx context.Context, businessID, invoiceID int64, paidDate *time.Time) (txn *model.Transaction, err error) {
	defer func() { s.observeTransition("mark_paid", err) }()

	err = s.invoiceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, lerr := s.invoiceRepo.GetForUpdate(ctx, businessID, invoiceID)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		if locked.Status != model.InvoiceStatusSent {
			return apperr.State("only sent invoices can be marked paid (status is %s)", locked.Status)
		}
		if locked.IncomeTransactionID != nil {
			return apperr.State("invoice %s is already marked paid", locked.InvoiceNumber)
		}

		items, lerr := s.invoiceRepo.ListItems(ctx, businessID, invoiceID)
		if lerr != nil {
			return lerr
		}

		var postTo *int64
		for i := range items {
			if items[i].SubCategoryID != nil {
				postTo = items[i].SubCategoryID
				break
			}
		}
		if postTo == nil {
			return apperr.State("invoice %s has no line item with a subcategory to post income to", locked.InvoiceNumber)
		}

		sub, lerr := s.chartRepo.GetSubCategory(ctx, businessID, *postTo)
		if lerr != nil {
			return mapDirectoryErr(lerr, "subcategory")
		}
		cat, lerr := s.chartRepo.GetCategory(ctx, businessID, sub.CategoryID)
		if lerr != nil {
			return mapDirectoryErr(lerr, "category")
		}

		locked.Subtotal, locked.Total = model.DeriveInvoiceTotals(items)

		when := s.today()
		if paidDate != nil {
			when = *paidDate
		}

		contactID := locked.ContactID
		created, lerr := s.ledgerRepo.Create(ctx, &model.Transaction{
			BusinessID:    businessID,
			Date:          when,
			Amount:        locked.Total,
			Description:   "Payment for invoice " + locked.InvoiceNumber,
			SubCategoryID: sub.ID,
			CategoryID:    cat.ID,
			Type:          cat.Type,
			ContactID:     &contactID,
			JobID:         locked.JobID,
			InvoiceNumber: locked.InvoiceNumber,
		})
		if lerr != nil {
			return lerr
		}

		locked.Status = model.InvoiceStatusPaid
		locked.PaidDate = &when
		locked.IncomeTransactionID = &created.ID
		if _, lerr := s.invoiceRepo.Update(ctx, locked); lerr != nil {
			return mapInvoiceErr(lerr)
		}

		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(businessID)
	logger.Info("invoice marked paid", "business_id", businessID, "invoice_id", invoiceID, "transaction_id", txn.ID)
	return txn, nil
}

// Void moves draft or sent -> void. Paid invoices cannot be voided, the
// income is already recognized.
func (s *InvoiceService) Void(ctx context.Context, businessID, invoiceID int64) (inv *model.Invoice, err error) {
	defer func() { s.observeTransition("void", err) }()

	err = s.invoiceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, lerr := s.invoiceRepo.GetForUpdate(ctx, businessID, invoiceID)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		if locked.Status != model.InvoiceStatusDraft && locked.Status != model.InvoiceStatusSent {
			return apperr.State("invoice %s cannot be voided (status is %s)", locked.InvoiceNumber, locked.Status)
		}

		locked.Status = model.InvoiceStatusVoid
		updated, lerr := s.invoiceRepo.Update(ctx, locked)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		inv = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice voided", "business_id", businessID, "invoice_id", invoiceID)
	return inv, nil
}

// CreateRevision copies a sent invoice's header and items into a new draft
// numbered {base}{next suffix}. The original keeps its status.
func (s *InvoiceService) CreateRevision(ctx context.Context, businessID, invoiceID int64) (revision *model.Invoice, err error) {
	defer func() { s.observeTransition("revise", err) }()

	err = s.invoiceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		orig, lerr := s.invoiceRepo.GetForUpdate(ctx, businessID, invoiceID)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		if orig.Status != model.InvoiceStatusSent {
			return apperr.State("only sent invoices can be revised (status is %s)", orig.Status)
		}

		if !invoiceNumberRe.MatchString(orig.InvoiceNumber) {
			return apperr.Validation("invoice_number", "invoice number %q cannot be revised", orig.InvoiceNumber)
		}
		base := orig.InvoiceNumber[:6]
		suffix, lerr := s.NextRevisionSuffix(ctx, businessID, base)
		if lerr != nil {
			return lerr
		}

		items, lerr := s.invoiceRepo.ListItems(ctx, businessID, invoiceID)
		if lerr != nil {
			return lerr
		}
		copies := make([]model.InvoiceItem, len(items))
		for i, it := range items {
			copies[i] = model.InvoiceItem{
				BusinessID:    businessID,
				Description:   it.Description,
				Qty:           it.Qty,
				UnitPrice:     it.UnitPrice,
				LineTotal:     model.DeriveLineTotal(it.Qty, it.UnitPrice),
				SubCategoryID: it.SubCategoryID,
				SortOrder:     it.SortOrder,
			}
		}
		subtotal, total := model.DeriveInvoiceTotals(copies)

		origID := orig.ID
		created, lerr := s.invoiceRepo.Create(ctx, &model.Invoice{
			BusinessID:    businessID,
			Status:        model.InvoiceStatusDraft,
			IssueDate:     orig.IssueDate,
			DueDate:       orig.DueDate,
			ContactID:     orig.ContactID,
			JobID:         orig.JobID,
			InvoiceNumber: base + suffix,
			RevisesID:     &origID,
			Memo:          orig.Memo,
			Subtotal:      subtotal,
			Total:         total,
		}, copies)
		if lerr != nil {
			return mapInvoiceErr(lerr)
		}
		revision = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("invoice revision created", "business_id", businessID, "revises_id", invoiceID, "number", revision.InvoiceNumber)
	return revision, nil
}

func (s *InvoiceService) observeTransition(transition string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	prom.IncCounterVec(prom.SystemInvoices, prom.MetricInvoiceTransitions, transition, outcome)
}

func (s *InvoiceService) invalidateReports(businessID int64) {
	if s.reportCache == nil {
		return
	}
	if err := s.reportCache.InvalidateBusiness(businessID); err != nil {
		logger.Warn("report cache invalidation failed", "business_id", businessID, "error", err)
	}
}

func mapInvoiceErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvoiceNotFound):
		return apperr.NotFound("invoice not found")
	case errors.Is(err, repository.ErrDuplicateInvoiceNumber):
		return apperr.Conflict("invoice number was just taken, try again")
	}
	if isLockTimeout(err) {
		return apperr.Conflict("invoice is busy, try again")
	}
	return err
}

func mapDirectoryErr(err error, field string) error {
	switch {
	case errors.Is(err, repository.ErrContactNotFound),
		errors.Is(err, repository.ErrJobNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrSubCategoryNotFound),
		errors.Is(err, repository.ErrVehicleNotFound):
		return apperr.Validation(field, "%s does not exist", field)
	}
	return err
}

// isLockTimeout sniffs the driver-level lock wait errors that surface as a
// retryable conflict.
func isLockTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lock timeout") ||
		strings.Contains(msg, "could not obtain lock") ||
		strings.Contains(msg, "lock_not_available") ||
		strings.Contains(msg, "deadlock")
}
