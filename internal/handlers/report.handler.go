package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/fasthttp/router"

	"github.com/booksbridge/books-gateway/internal/reports"
	"github.com/booksbridge/books-gateway/internal/schedc"
	"github.com/booksbridge/books-gateway/internal/services"
	xhttp "github.com/booksbridge/books-gateway/pkg/http"
)

type ReportService interface {
	ScheduleCLines(ctx context.Context, businessID int64, year int, mode schedc.Mode) (*services.ScheduleCReport, error)
	ScheduleCYoY(ctx context.Context, businessID int64, endingYear int, mode schedc.Mode) (*services.ScheduleCYoYReport, error)
	ProfitLossSingle(ctx context.Context, businessID int64, year int) (*reports.ProfitLossSingle, error)
	ProfitLossYoY(ctx context.Context, businessID int64, endingYear, yearCount int) (*reports.ProfitLossYoY, error)
	MileageYearSummary(ctx context.Context, businessID, vehicleID int64, year int) (*reports.MileageYearSummary, error)
}

type ReportHandler struct {
	svc ReportService
}

func RegisterReportRoutes(e *router.Group, h *ReportHandler) {
	e.GET("/businesses/{businessID}/reports/schedule-c", h.ScheduleC)
	e.GET("/businesses/{businessID}/reports/schedule-c/yoy", h.ScheduleCYoY)
	e.GET("/businesses/{businessID}/reports/profit-loss", h.ProfitLoss)
	e.GET("/businesses/{businessID}/reports/profit-loss/yoy", h.ProfitLossYoY)
	e.GET("/businesses/{businessID}/vehicles/{vehicleID}/mileage", h.MileageSummary)
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		svc: reportService,
	}
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ReportHandler) ScheduleC(ctx *xhttp.RequestCtx) {
	businessID, year, ok := reportPath(ctx)
	if !ok {
		return
	}
	mode, valid := schedc.ParseMode(query(ctx, "mode"))
	if !valid {
		writeError(ctx, 400, "invalid mode, want tax or books")
		return
	}
	out, err := h.svc.ScheduleCLines(ctx, businessID, year, mode)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, out)
}

func (h *ReportHandler) ScheduleCYoY(ctx *xhttp.RequestCtx) {
	businessID, year, ok := reportPath(ctx)
	if !ok {
		return
	}
	mode, valid := schedc.ParseMode(query(ctx, "mode"))
	if !valid {
		writeError(ctx, 400, "invalid mode, want tax or books")
		return
	}
	out, err := h.svc.ScheduleCYoY(ctx, businessID, year, mode)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, out)
}

func (h *ReportHandler) ProfitLoss(ctx *xhttp.RequestCtx) {
	businessID, year, ok := reportPath(ctx)
	if !ok {
		return
	}
	out, err := h.svc.ProfitLossSingle(ctx, businessID, year)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, out)
}

func (h *ReportHandler) ProfitLossYoY(ctx *xhttp.RequestCtx) {
	businessID, year, ok := reportPath(ctx)
	if !ok {
		return
	}
	yearCount := 0
	if v := query(ctx, "years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10 {
			writeError(ctx, 400, "invalid years, want 1-10")
			return
		}
		yearCount = n
	}
	out, err := h.svc.ProfitLossYoY(ctx, businessID, year, yearCount)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, out)
}

func (h *ReportHandler) MileageSummary(ctx *xhttp.RequestCtx) {
	businessID, year, ok := reportPath(ctx)
	if !ok {
		return
	}
	vehicleID, err := pathInt64(ctx, "vehicleID")
	if err != nil {
		writeError(ctx, 400, "invalid vehicle id")
		return
	}
	out, err := h.svc.MileageYearSummary(ctx, businessID, vehicleID, year)
	if err != nil {
		writeAppErr(ctx, err)
		return
	}
	writeJSON(ctx, 200, out)
}

// reportPath parses the business id and the year query param; year defaults
// to the current calendar year. Writes the error response itself.
func reportPath(ctx *xhttp.RequestCtx) (businessID int64, year int, ok bool) {
	businessID, err := pathInt64(ctx, "businessID")
	if err != nil {
		writeError(ctx, 400, "invalid business id")
		return 0, 0, false
	}
	year = time.Now().UTC().Year()
	if v := query(ctx, "year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			writeError(ctx, 400, "invalid year")
			return 0, 0, false
		}
		year = y
	}
	return businessID, year, true
}
