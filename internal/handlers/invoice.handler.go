package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/apperr"
	"github.com/booksbridge/books-gateway/internal/model"
	xhttp "github.com/booksbridge/books-gateway/pkg/http"
)

type InvoiceService interface {
	CreateDraft(ctx context.Context, businessID int64, req model.InvoiceCreateRequest) (*model.Invoice, error)
	Get(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, []model.InvoiceItem, error)
	List(ctx context.Context, businessID int64, status *model.InvoiceStatus) ([]*model.Invoice, error)
	GetPDF(ctx context.Context, businessID, invoiceID int64) ([]byte, error)
	Send(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error)
	MarkPaid(ctx context.Context, businessID, invoiceID int64, paidDate *time.Time) (*model.Transaction, error)
	Void(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error)
	CreateRevision(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error)
	PreviewNextNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error)
	AllocateNextNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error)
}

type InvoiceHandler struct {
	svc InvoiceService
}

func RegisterInvoiceRoutes(e *router.Group, h *InvoiceHandler) {
	e.POST("/businesses/{businessID}/invoices", h.CreateInvoice)
	e.GET("/businesses/{businessID}/invoices", h.ListInvoices)
	e.GET("/businesses/{businessID}/invoices/next-number", h.PreviewNextNumber)
	e.POST("/businesses/{businessID}/invoices/allocate-number", h.AllocateNumber)
	e.GET("/businesses/{businessID}/invoices/{invoiceID}", h.GetInvoice)
	e.GET("/businesses/{businessID}/invoices/{invoiceID}/pdf", h.GetInvoicePDF)
	e.POST("/businesses/{businessID}/invoices/{invoiceID}/send", h.SendInvoice)
	e.POST("/businesses/{businessID}/invoices/{invoiceID}/pay", h.MarkInvoicePaid)
	e.POST("/businesses/{businessID}/invoices/{invoiceID}/void", h.VoidInvoice)
	e.POST("/businesses/{businessID}/invoices/{invoiceID}/revisions", h.ReviseInvoice)
}

func NewInvoiceHandler(invoiceService InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		svc: invoiceService,
	}
}

type invoiceItemRequest struct {
	Description   string          `json:"description"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SubCategoryID *int64          `json:"subcategory_id"`
	SortOrder     int             `json:"sort_order"`
}

type createInvoiceRequest struct {
	ContactID     int64                `json:"contact_id"`
	JobID         *int64               `json:"job_id"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	InvoiceNumber string               `json:"invoice_number"`
	Memo          string               `json:"memo"`
	Items         []invoiceItemRequest `json:"items"`
}

type markPaidRequest struct {
	PaidDate string `json:"paid_date"`
}

type invoiceResponse struct {
	Invoice *model.Invoice      `json:"invoice"`
	Items   []model.InvoiceItem `json:"items"`
}

type invoiceListResponse struct {
	Items []*model.Invoice `json:"items"`
}

type numberResponse struct {
	InvoiceNumber string `json:"invoice_number"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *InvoiceHandler) CreateInvoice(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}
	var req createInvoiceRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	p := model.InvoiceCreateRequest{
		ContactID:     req.ContactID,
		JobID:         req.JobID,
		InvoiceNumber: req.InvoiceNumber,
		Memo:          req.Memo,
	}
	if req.IssueDate != "" {
		t, err := parseTime(req.IssueDate)
		if err != nil {
			writeError(ctx, 400, "invalid issue_date")
			return
		}
		p.IssueDate = t
	}
	if req.DueDate != "" {
		t, err := parseTime(req.DueDate)
		if err != nil {
			writeError(ctx, 400, "invalid due_date")
			return
		}
		p.DueDate = &t
	}
	for _, it := range req.Items {
		p.Items = append(p.Items, model.InvoiceItemParams{
			Description:   it.Description,
			Qty:           it.Qty,
			UnitPrice:     it.UnitPrice,
			SubCategoryID: it.SubCategoryID,
			SortOrder:     it.SortOrder,
		})
	}

	inv, err := h.svc.CreateDraft(ctx, businessID, p)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 201, inv)
}

func (h *InvoiceHandler) ListInvoices(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}
	var status *model.InvoiceStatus
	if v := query(ctx, "status"); v != "" {
		s := model.InvoiceStatus(v)
		switch s {
		case model.InvoiceStatusDraft, model.InvoiceStatusSent, model.InvoiceStatusPaid, model.InvoiceStatusVoid:
			status = &s
		default:
			writeError(ctx, 400, "invalid status")
			return
		}
	}

	items, err := h.svc.List(ctx, businessID, status)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, invoiceListResponse{Items: items})
}

func (h *InvoiceHandler) GetInvoice(ctx *xhttp.RequestCtx) {
	businessID, invoiceID, err := invoicePath(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	inv, items, err := h.svc.Get(ctx, businessID, invoiceID)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, invoiceResponse{Invoice: inv, Items: items})
}

func (h *InvoiceHandler) GetInvoicePDF(ctx *xhttp.RequestCtx) {
	businessID, invoiceID, err := invoicePath(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	pdf, err := h.svc.GetPDF(ctx, businessID, invoiceID)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/pdf")
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyRaw(pdf)
}

func (h *InvoiceHandler) SendInvoice(ctx *xhttp.RequestCtx) {
	businessID, invoiceID, err := invoicePath(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	inv, err := h.svc.Send(ctx, businessID, invoiceID)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, inv)
}

func (h *InvoiceHandler) MarkInvoicePaid(ctx *xhttp.RequestCtx) {
	businessID, invoiceID, err := invoicePath(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	var paidDate *time.Time
	if body := ctx.PostBody(); len(body) > 0 {
		var req markPaidRequest
		if err := readJSON(ctx, &req); err != nil {
			writeError(ctx, 400, "invalid JSON: "+err.Error())
			return
		}
		if req.PaidDate != "" {
			t, err := parseTime(req.PaidDate)
			if err != nil {
				writeError(ctx, 400, "invalid paid_date")
				return
			}
			paidDate = &t
		}
	}

	txn, err := h.svc.MarkPaid(ctx, businessID, invoiceID, paidDate)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, txn)
}

func (h *InvoiceHandler) VoidInvoice(ctx *xhttp.RequestCtx) {
	businessID, invoiceID, err := invoicePath(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	inv, err := h.svc.Void(ctx, businessID, invoiceID)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, inv)
}

func (h *InvoiceHandler) ReviseInvoice(ctx *xhttp.RequestCtx) {
	businessID, invoiceID, err := invoicePath(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	inv, err := h.svc.CreateRevision(ctx, businessID, invoiceID)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 201, inv)
}

func (h *InvoiceHandler) PreviewNextNumber(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}
	number, err := h.svc.PreviewNextNumber(ctx, businessID, issueDateOrToday(ctx))
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, numberResponse{InvoiceNumber: number})
}

func (h *InvoiceHandler) AllocateNumber(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}
	number, err := h.svc.AllocateNextNumber(ctx, businessID, issueDateOrToday(ctx))
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 201, numberResponse{InvoiceNumber: number})
}

// issueDateOrToday reads the optional issue_date query param; the number
// year follows the issue date, not the wall clock, when they differ.
func issueDateOrToday(ctx *xhttp.RequestCtx) time.Time {
	if v := query(ctx, "issue_date"); v != "" {
		if t, err := parseTime(v); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func invoicePath(ctx *xhttp.RequestCtx) (businessID, invoiceID int64, err error) {
	businessID, err = pathInt64(ctx, "businessID")
	if err != nil {
		return 0, 0, errors.New("invalid business id")
	}
	invoiceID, err = pathInt64(ctx, "invoiceID")
	if err != nil {
		return 0, 0, errors.New("invalid invoice id")
	}
	return businessID, invoiceID, nil
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeAppErr maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error and the message stays generic.
func writeAppErr(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeError(ctx, 400, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(ctx, 409, err.Error())
	case errors.Is(err, apperr.ErrState), errors.Is(err, apperr.ErrExhausted):
		writeError(ctx, 422, err.Error())
	default:
		writeError(ctx, 500, "internal error")
	}
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
