// Package gateway holds clients for the external collaborators of the core,
// currently the PDF renderer service.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"github.com/booksbridge/books-gateway/internal/model"
)

var (
	ErrRenderFailed = errors.New("renderer rejected the document")
)

// RenderRequest is the document contract the renderer accepts. Amounts are
// serialized as strings; the renderer owns the byte layout.
type RenderRequest struct {
	Template string        `json:"template"`
	Invoice  RenderInvoice `json:"invoice"`
}

type RenderInvoice struct {
	Number    string       `json:"number"`
	IssueDate string       `json:"issue_date"`
	DueDate   string       `json:"due_date,omitempty"`
	Memo      string       `json:"memo,omitempty"`
	BillTo    model.BillTo `json:"bill_to"`
	Subtotal  string       `json:"subtotal"`
	Total     string       `json:"total"`
	Items     []RenderItem `json:"items"`
}

type RenderItem struct {
	Description string `json:"description"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type RendererConfig struct {
	URL     string
	Timeout time.Duration
}

// RendererClient renders invoices to PDF bytes over HTTP.
type RendererClient struct {
	config RendererConfig
	client *fasthttp.Client
}

func NewRendererClient(config RendererConfig) *RendererClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &RendererClient{
		config: config,
		client: &fasthttp.Client{
			MaxConnsPerHost:     64,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

// Render posts the invoice document and returns the PDF bytes. Any non-200
// response counts as a render failure; callers treat it as fatal for the
// surrounding operation.
func (c *RendererClient) Render(ctx context.Context, inv model.Invoice, items []model.InvoiceItem) ([]byte, error) {
	body, err := json.Marshal(buildRenderRequest(inv, items))
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.URL + "/render")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrRenderFailed, resp.StatusCode(), resp.Body())
	}

	pdf := make([]byte, len(resp.Body()))
	copy(pdf, resp.Body())
	return pdf, nil
}

func buildRenderRequest(inv model.Invoice, items []model.InvoiceItem) RenderRequest {
	out := RenderRequest{
		Template: "invoice",
		Invoice: RenderInvoice{
			Number:    inv.InvoiceNumber,
			IssueDate: inv.IssueDate.Format("2006-01-02"),
			Memo:      inv.Memo,
			BillTo:    inv.BillTo,
			Subtotal:  money(inv.Subtotal),
			Total:     money(inv.Total),
			Items:     make([]RenderItem, 0, len(items)),
		},
	}
	if inv.DueDate != nil {
		out.Invoice.DueDate = inv.DueDate.Format("2006-01-02")
	}
	for _, it := range items {
		out.Invoice.Items = append(out.Invoice.Items, RenderItem{
			Description: it.Description,
			Qty:         it.Qty.String(),
			UnitPrice:   money(it.UnitPrice),
			LineTotal:   money(it.LineTotal),
		})
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
