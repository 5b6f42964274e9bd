package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
	xhttp "github.com/booksbridge/books-gateway/pkg/http"
)

type TransactionService interface {
	Create(ctx context.Context, businessID int64, req model.TransactionCreateRequest) (*model.Transaction, error)
	Get(ctx context.Context, businessID, id int64) (*model.Transaction, error)
	List(ctx context.Context, businessID int64, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

type TransactionHandler struct {
	svc TransactionService
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler) {
	e.POST("/businesses/{businessID}/transactions", h.CreateTransaction)
	e.GET("/businesses/{businessID}/transactions", h.ListTransactions)
	e.GET("/businesses/{businessID}/transactions/{transactionID}", h.GetTransaction)
}

func NewTransactionHandler(transactionService TransactionService) *TransactionHandler {
	return &TransactionHandler{
		svc: transactionService,
	}
}

type createTransactionRequest struct {
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	IsRefund      bool            `json:"is_refund"`
	Description   string          `json:"description"`
	SubCategoryID int64           `json:"subcategory_id"`
	ContactID     *int64          `json:"contact_id"`
	JobID         *int64          `json:"job_id"`
	VehicleID     *int64          `json:"vehicle_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TransportType string          `json:"transport_type"`
	Notes         string          `json:"notes"`
}

type transactionListResponse struct {
	Items []*model.Transaction `json:"items"`
	Total int64                `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *TransactionHandler) CreateTransaction(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}
	var req createTransactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	date, err := parseTime(req.Date)
	if err != nil {
		writeError(ctx, 400, "invalid date")
		return
	}

	p := model.TransactionCreateRequest{
		Date:          date,
		Amount:        req.Amount,
		IsRefund:      req.IsRefund,
		Description:   req.Description,
		SubCategoryID: req.SubCategoryID,
		ContactID:     req.ContactID,
		JobID:         req.JobID,
		VehicleID:     req.VehicleID,
		InvoiceNumber: req.InvoiceNumber,
		TransportType: model.TransportType(req.TransportType),
		Notes:         req.Notes,
	}
	txn, err := h.svc.Create(ctx, businessID, p)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 201, txn)
}

func (h *TransactionHandler) GetTransaction(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}
	transactionID, err := pathInt64(ctx, "transactionID")
	if err != nil {
		writeError(ctx, 400, "invalid transaction id")
		return
	}
	txn, err := h.svc.Get(ctx, businessID, transactionID)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, txn)
}

func (h *TransactionHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return
	}

	var f model.TransactionFilter
	if v := query(ctx, "year"); v != "" {
		if y, e := strconv.Atoi(v); e == nil {
			f.Year = &y
		}
	}
	if v := query(ctx, "type"); v != "" {
		t := model.CategoryType(v)
		f.Type = &t
	}
	if v := query(ctx, "subcategory_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.SubCategoryID = &id
		}
	}
	if v := query(ctx, "contact_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.ContactID = &id
		}
	}
	if v := query(ctx, "job_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.JobID = &id
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, businessID, f)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, transactionListResponse{Items: items, Total: total})
}
