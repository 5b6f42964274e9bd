package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/booksbridge/books-gateway/internal/apperr"
	"github.com/booksbridge/books-gateway/internal/model"
	xhttp "github.com/booksbridge/books-gateway/pkg/http"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateDraft(ctx context.Context, businessID int64, req model.InvoiceCreateRequest) (*model.Invoice, error) {
	args := m.Called(ctx, businessID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, []model.InvoiceItem, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Invoice), args.Get(1).([]model.InvoiceItem), args.Error(2)
}

func (m *MockInvoiceService) List(ctx context.Context, businessID int64, status *model.InvoiceStatus) ([]*model.Invoice, error) {
	args := m.Called(ctx, businessID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetPDF(ctx context.Context, businessID, invoiceID int64) ([]byte, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockInvoiceService) Send(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) MarkPaid(ctx context.Context, businessID, invoiceID int64, paidDate *time.Time) (*model.Transaction, error) {
	args := m.Called(ctx, businessID, invoiceID, paidDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockInvoiceService) Void(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) CreateRevision(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) PreviewNextNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error) {
	args := m.Called(ctx, businessID, issueDate)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceService) AllocateNextNumber(ctx context.Context, businessID int64, issueDate time.Time) (string, error) {
	args := m.Called(ctx, businessID, issueDate)
	return args.String(0), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func invoiceTestContext(method, path string, body []byte, businessID, invoiceID string) *xhttp.RequestCtx {
	ctx := setupTestContext(method, path, body)
	ctx.SetUserValue("businessID", businessID)
	if invoiceID != "" {
		ctx.SetUserValue("invoiceID", invoiceID)
	}
	return ctx
}

func TestInvoiceHandler_CreateInvoice(t *testing.T) {
	t.Run("successful draft creation", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		reqBody := createInvoiceRequest{
			ContactID: 7,
			IssueDate: "2025-03-15",
			Memo:      "Net 30",
			Items: []invoiceItemRequest{
				{Description: "Design work", Qty: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("95.50")},
			},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		expected := &model.Invoice{ID: 42, BusinessID: 1, InvoiceNumber: "250007", Status: model.InvoiceStatusDraft}

		svc.On("CreateDraft", mock.Anything, int64(1), mock.MatchedBy(func(p model.InvoiceCreateRequest) bool {
			return p.ContactID == 7 &&
				p.IssueDate.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) &&
				len(p.Items) == 1 && p.Items[0].Qty.Equal(decimal.NewFromInt(10))
		})).Return(expected, nil)

		ctx := invoiceTestContext("POST", "/businesses/1/invoices", bodyBytes, "1", "")
		handler.CreateInvoice(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Invoice
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, "250007", response.InvoiceNumber)

		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		ctx := invoiceTestContext("POST", "/businesses/1/invoices", []byte("not json"), "1", "")
		handler.CreateInvoice(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("invalid business id", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		ctx := invoiceTestContext("POST", "/businesses/abc/invoices", []byte("{}"), "abc", "")
		handler.CreateInvoice(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "CreateDraft", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate number maps to conflict", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("CreateDraft", mock.Anything, int64(1), mock.Anything).
			Return(nil, apperr.Conflict("invoice number was just taken, try again"))

		bodyBytes, _ := json.Marshal(createInvoiceRequest{ContactID: 7, InvoiceNumber: "250009"})
		ctx := invoiceTestContext("POST", "/businesses/1/invoices", bodyBytes, "1", "")
		handler.CreateInvoice(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})
}

func TestInvoiceHandler_GetInvoice(t *testing.T) {
	t.Run("returns invoice with items", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		inv := &model.Invoice{ID: 42, BusinessID: 1, InvoiceNumber: "250007"}
		items := []model.InvoiceItem{{ID: 1, InvoiceID: 42, Description: "Design work"}}
		svc.On("Get", mock.Anything, int64(1), int64(42)).Return(inv, items, nil)

		ctx := invoiceTestContext("GET", "/businesses/1/invoices/42", nil, "1", "42")
		handler.GetInvoice(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response invoiceResponse
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, "250007", response.Invoice.InvoiceNumber)
		assert.Len(t, response.Items, 1)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("Get", mock.Anything, int64(1), int64(9)).
			Return(nil, nil, apperr.NotFound("invoice not found"))

		ctx := invoiceTestContext("GET", "/businesses/1/invoices/9", nil, "1", "9")
		handler.GetInvoice(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestInvoiceHandler_SendInvoice(t *testing.T) {
	t.Run("wrong state maps to 422", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("Send", mock.Anything, int64(1), int64(42)).
			Return(nil, apperr.State("only draft invoices can be sent (status is paid)"))

		ctx := invoiceTestContext("POST", "/businesses/1/invoices/42/send", nil, "1", "42")
		handler.SendInvoice(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
	})

	t.Run("successful send", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("Send", mock.Anything, int64(1), int64(42)).
			Return(&model.Invoice{ID: 42, Status: model.InvoiceStatusSent}, nil)

		ctx := invoiceTestContext("POST", "/businesses/1/invoices/42/send", nil, "1", "42")
		handler.SendInvoice(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.Invoice
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, model.InvoiceStatusSent, response.Status)
	})
}

func TestInvoiceHandler_MarkInvoicePaid(t *testing.T) {
	t.Run("paid date from body", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("MarkPaid", mock.Anything, int64(1), int64(42), mock.MatchedBy(func(d *time.Time) bool {
			return d != nil && d.Equal(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))
		})).Return(&model.Transaction{ID: 77, InvoiceNumber: "250007"}, nil)

		bodyBytes, _ := json.Marshal(markPaidRequest{PaidDate: "2025-04-02"})
		ctx := invoiceTestContext("POST", "/businesses/1/invoices/42/pay", bodyBytes, "1", "42")
		handler.MarkInvoicePaid(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.Transaction
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, int64(77), response.ID)

		svc.AssertExpectations(t)
	})

	t.Run("empty body defaults the paid date", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("MarkPaid", mock.Anything, int64(1), int64(42), (*time.Time)(nil)).
			Return(&model.Transaction{ID: 78}, nil)

		ctx := invoiceTestContext("POST", "/businesses/1/invoices/42/pay", nil, "1", "42")
		handler.MarkInvoicePaid(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("already paid maps to 422", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("MarkPaid", mock.Anything, int64(1), int64(42), (*time.Time)(nil)).
			Return(nil, apperr.State("invoice 250007 is already marked paid"))

		ctx := invoiceTestContext("POST", "/businesses/1/invoices/42/pay", nil, "1", "42")
		handler.MarkInvoicePaid(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
	})
}

func TestInvoiceHandler_GetInvoicePDF(t *testing.T) {
	t.Run("serves the stored document", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("GetPDF", mock.Anything, int64(1), int64(42)).Return([]byte("%PDF-1.4"), nil)

		ctx := invoiceTestContext("GET", "/businesses/1/invoices/42/pdf", nil, "1", "42")
		handler.GetInvoicePDF(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Equal(t, "application/pdf", string(ctx.Response.Header.Peek("Content-Type")))
		assert.Equal(t, "%PDF-1.4", string(ctx.Response.Body()))
	})

	t.Run("unsent invoice has no document", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("GetPDF", mock.Anything, int64(1), int64(42)).
			Return(nil, apperr.State("invoice has not been sent, no document exists yet"))

		ctx := invoiceTestContext("GET", "/businesses/1/invoices/42/pdf", nil, "1", "42")
		handler.GetInvoicePDF(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
	})
}

func TestInvoiceHandler_NumberEndpoints(t *testing.T) {
	t.Run("preview uses the issue date query param", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("PreviewNextNumber", mock.Anything, int64(1), mock.MatchedBy(func(d time.Time) bool {
			return d.Year() == 2024
		})).Return("240013", nil)

		ctx := invoiceTestContext("GET", "/businesses/1/invoices/next-number?issue_date=2024-11-30", nil, "1", "")
		handler.PreviewNextNumber(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response numberResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "240013", response.InvoiceNumber)
	})

	t.Run("allocation burns a number", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("AllocateNextNumber", mock.Anything, int64(1), mock.Anything).Return("250008", nil)

		ctx := invoiceTestContext("POST", "/businesses/1/invoices/allocate-number", nil, "1", "")
		handler.AllocateNumber(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
	})

	t.Run("exhausted year maps to 422", func(t *testing.T) {
		svc := new(MockInvoiceService)
		handler := NewInvoiceHandler(svc)

		svc.On("AllocateNextNumber", mock.Anything, int64(1), mock.Anything).
			Return("", apperr.Exhausted("invoice numbers for year 2025 are exhausted"))

		ctx := invoiceTestContext("POST", "/businesses/1/invoices/allocate-number", nil, "1", "")
		handler.AllocateNumber(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
	})
}

func TestWriteAppErr(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Validation("amount", "amount must not be negative"), 400},
		{"not found", apperr.NotFound("invoice not found"), 404},
		{"conflict", apperr.Conflict("busy"), 409},
		{"state", apperr.State("wrong state"), 422},
		{"exhausted", apperr.Exhausted("no numbers left"), 422},
		{"unknown", errors.New("boom"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupTestContext("GET", "/", nil)
			writeAppErr(ctx, tc.err)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())

			var response map[string]string
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
			if tc.status == 500 {
				assert.Equal(t, "internal error", response["error"])
			} else {
				assert.Equal(t, tc.err.Error(), response["error"])
			}
		})
	}
}
