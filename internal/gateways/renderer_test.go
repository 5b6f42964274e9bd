package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booksbridge/books-gateway/internal/model"
)

func TestBuildRenderRequest(t *testing.T) {
	due := time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)
	inv := model.Invoice{
		InvoiceNumber: "250007",
		IssueDate:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Memo:          "Net 30",
		BillTo:        model.BillTo{Name: "Acme LLC", Country: "US"},
		Subtotal:      decimal.RequireFromString("955"),
		Total:         decimal.RequireFromString("955"),
	}
	items := []model.InvoiceItem{
		{Description: "Design work", Qty: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("95.5"), LineTotal: decimal.RequireFromString("955")},
	}

	req := buildRenderRequest(inv, items)

	assert.Equal(t, "invoice", req.Template)
	assert.Equal(t, "250007", req.Invoice.Number)
	assert.Equal(t, "2025-03-15", req.Invoice.IssueDate)
	assert.Equal(t, "2025-04-14", req.Invoice.DueDate)
	// Money always renders with two decimal places.
	assert.Equal(t, "955.00", req.Invoice.Total)
	require.Len(t, req.Invoice.Items, 1)
	assert.Equal(t, "95.50", req.Invoice.Items[0].UnitPrice)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bill_to":{"name":"Acme LLC"`)
}

func TestBuildRenderRequest_NoDueDate(t *testing.T) {
	req := buildRenderRequest(model.Invoice{
		InvoiceNumber: "250001",
		IssueDate:     time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Subtotal:      decimal.Zero,
		Total:         decimal.Zero,
	}, nil)

	assert.Empty(t, req.Invoice.DueDate)
	assert.Empty(t, req.Invoice.Items)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "due_date")
}

func TestNewRendererClient_DefaultTimeout(t *testing.T) {
	c := NewRendererClient(RendererConfig{URL: "http://localhost:9090"})
	assert.Equal(t, 10*time.Second, c.config.Timeout)
}
