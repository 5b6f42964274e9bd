package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RenderItem is one billed line on the incoming document.
type RenderItem struct {
	Description string `json:"description"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// RenderBillTo is the frozen billing address on the document.
type RenderBillTo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// RenderInvoice is the invoice payload of a render request.
type RenderInvoice struct {
	Number    string       `json:"number" binding:"required"`
	IssueDate string       `json:"issue_date" binding:"required"`
	DueDate   string       `json:"due_date"`
	Memo      string       `json:"memo"`
	BillTo    RenderBillTo `json:"bill_to"`
	Subtotal  string       `json:"subtotal"`
	Total     string       `json:"total"`
	Items     []RenderItem `json:"items"`
}

// RenderRequest is the document contract the gateway posts.
type RenderRequest struct {
	Template string        `json:"template" binding:"required"`
	Invoice  RenderInvoice `json:"invoice" binding:"required"`
}

// HealthResponse reports renderer health.
type HealthResponse struct {
	Status     string    `json:"status"`
	RendererID string    `json:"renderer_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// MockRenderer simulates a PDF rendering service with configurable latency
// and failure rate, for local development and integration tests.
type MockRenderer struct {
	failureRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	rendererID  string
	rng         *rand.Rand
}

func NewMockRenderer(failureRate float64, minDelay, maxDelay time.Duration) *MockRenderer {
	return &MockRenderer{
		failureRate: failureRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		rendererID:  "MOCK_RENDERER_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockRenderer) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockRenderer) shouldFail() bool {
	return m.rng.Float64() < m.failureRate
}

// renderPDF emits a minimal single-page PDF with the invoice text. Good
// enough for a viewer to open; layout fidelity is not the point here.
func (m *MockRenderer) renderPDF(req *RenderRequest) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 12 Tf 50 770 Td (Invoice " + escapePDF(req.Invoice.Number) + ") Tj ET\n")
	content.WriteString("BT /F1 10 Tf 50 750 Td (Issued " + escapePDF(req.Invoice.IssueDate) + ") Tj ET\n")
	if req.Invoice.DueDate != "" {
		content.WriteString("BT /F1 10 Tf 50 736 Td (Due " + escapePDF(req.Invoice.DueDate) + ") Tj ET\n")
	}
	content.WriteString("BT /F1 10 Tf 50 716 Td (Bill to: " + escapePDF(req.Invoice.BillTo.Name) + ") Tj ET\n")
	y := 690
	for _, it := range req.Invoice.Items {
		line := fmt.Sprintf("%s  %s x %s = %s", it.Description, it.Qty, it.UnitPrice, it.LineTotal)
		content.WriteString(fmt.Sprintf("BT /F1 10 Tf 50 %d Td (%s) Tj ET\n", y, escapePDF(line)))
		y -= 14
	}
	content.WriteString(fmt.Sprintf("BT /F1 12 Tf 50 %d Td (Total %s) Tj ET\n", y-10, escapePDF(req.Invoice.Total)))

	var pdf bytes.Buffer
	pdf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, 5)
	writeObj := func(body string) {
		offsets = append(offsets, pdf.Len())
		pdf.WriteString(body)
	}
	writeObj("1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj\n")
	writeObj("2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj\n")
	writeObj("3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >> endobj\n")
	writeObj(fmt.Sprintf("4 0 obj << /Length %d >> stream\n%s\nendstream endobj\n", content.Len(), content.String()))
	writeObj("5 0 obj << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> endobj\n")

	xrefStart := pdf.Len()
	pdf.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1))
	for _, off := range offsets {
		pdf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	pdf.WriteString(fmt.Sprintf("trailer << /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefStart))
	return pdf.Bytes()
}

func escapePDF(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', ')', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

type Handler struct {
	renderer *MockRenderer
}

func NewHandler(renderer *MockRenderer) *Handler {
	return &Handler{renderer: renderer}
}

// Render handles document render requests.
func (h *Handler) Render(c *gin.Context) {
	var req RenderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("invoice_number", req.Invoice.Number).
		Str("template", req.Template).
		Int("items", len(req.Invoice.Items)).
		Msg("Received render request")

	time.Sleep(h.renderer.randomDelay())

	if h.renderer.shouldFail() {
		log.Warn().
			Str("invoice_number", req.Invoice.Number).
			Msg("Render failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "RENDER_FAILED",
			"renderer_id": h.renderer.rendererID,
		})
		return
	}

	pdf := h.renderer.renderPDF(&req)

	log.Info().
		Str("invoice_number", req.Invoice.Number).
		Int("bytes", len(pdf)).
		Msg("Rendered document")

	c.Data(http.StatusOK, "application/pdf", pdf)
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		RendererID: h.renderer.rendererID,
		Timestamp:  time.Now(),
	})
}

// UpdateConfig allows changing the failure rate at runtime.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		FailureRate *float64 `json:"failure_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.FailureRate != nil {
		if *config.FailureRate >= 0 && *config.FailureRate <= 1.0 {
			h.renderer.failureRate = *config.FailureRate
			log.Info().Float64("rate", *config.FailureRate).Msg("Updated failure rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"failure_rate": h.renderer.failureRate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	router.POST("/render", handler.Render)
	router.GET("/health", handler.HealthCheck)
	router.PUT("/config", handler.UpdateConfig)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8082")
	failureRate := getEnvFloat("FAILURE_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("failure_rate", failureRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock PDF Renderer")

	renderer := NewMockRenderer(failureRate, minDelay, maxDelay)
	handler := NewHandler(renderer)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
