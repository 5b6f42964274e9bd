package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/apperr"
	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/reports"
	"github.com/booksbridge/books-gateway/internal/repository"
	"github.com/booksbridge/books-gateway/internal/schedc"
	"github.com/booksbridge/books-gateway/pkg/logger"
	"github.com/booksbridge/books-gateway/pkg/prom"
	"github.com/booksbridge/books-gateway/pkg/redis"
)

// DefaultYoYYears is the trailing window used when the caller does not pick
// one.
const DefaultYoYYears = 3

type ReportRowSource interface {
	ListForScheduleC(ctx context.Context, businessID int64, from, to time.Time) ([]reports.TxnRow, error)
	ListForProfitLoss(ctx context.Context, businessID int64, year int) ([]reports.TxnRow, error)
}

type MileageSource interface {
	Get(ctx context.Context, businessID, vehicleID int64) (*model.Vehicle, error)
	GetYear(ctx context.Context, businessID, vehicleID int64, year int) (*model.VehicleYear, error)
	SumMiles(ctx context.Context, businessID, vehicleID int64, year int, mileageType model.MileageType) (decimal.Decimal, error)
}

// ReportInvalidator drops a business's cached report payloads. Write paths
// call it after committing.
type ReportInvalidator interface {
	InvalidateBusiness(businessID int64) error
}

// ScheduleCReport is the single-year Schedule C payload.
type ScheduleCReport struct {
	Year       int               `json:"year"`
	Mode       schedc.Mode       `json:"mode"`
	Lines      []reports.LineRow `json:"lines"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
}

// ScheduleCYoYReport is the trailing-window Schedule C payload.
type ScheduleCYoYReport struct {
	Years      []int                   `json:"years"`
	Mode       schedc.Mode             `json:"mode"`
	Rows       []reports.YoYLineRow    `json:"rows"`
	YearTotals map[int]decimal.Decimal `json:"year_totals"`
	GrandTotal decimal.Decimal         `json:"grand_total"`
}

// ReportService fetches rows, runs the pure aggregators and caches the JSON
// payloads. Reports are plain reads, so a short-TTL cache plus write-path
// invalidation cannot serve a payload the books contradict for long.
type ReportService struct {
	rows      ReportRowSource
	mileage   MileageSource
	cache     redis.RedisAdapter
	cacheTTL  time.Duration
	mealsRate decimal.Decimal
}

func NewReportService(rows ReportRowSource, mileage MileageSource, cache redis.RedisAdapter, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		rows:      rows,
		mileage:   mileage,
		cache:     cache,
		cacheTTL:  cacheTTL,
		mealsRate: schedc.DefaultMealsRate,
	}
}

func reportCacheKey(businessID int64, report string, year int, mode schedc.Mode) string {
	return fmt.Sprintf("reports:%d:%s:%d:%s", businessID, report, year, mode)
}

// InvalidateBusiness drops every cached report for the tenant.
func (s *ReportService) InvalidateBusiness(businessID int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DelPattern(fmt.Sprintf("reports:%d:*", businessID))
}

func (s *ReportService) ScheduleCLines(ctx context.Context, businessID int64, year int, mode schedc.Mode) (*ScheduleCReport, error) {
	key := reportCacheKey(businessID, "schedc", year, mode)
	var cached ScheduleCReport
	if s.cacheGet(key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.rows.ListForScheduleC(ctx, businessID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	lines, grand := reports.BuildScheduleCLines(rows, s.mealsRate, mode)
	out := &ScheduleCReport{Year: year, Mode: mode, Lines: lines, GrandTotal: grand}

	prom.AddHistogramVec(prom.SystemReports, prom.MetricReportBuildDuration, time.Since(start).Seconds(), "schedc", string(mode))
	s.cacheSet(key, out)
	return out, nil
}

func (s *ReportService) ScheduleCYoY(ctx context.Context, businessID int64, endingYear int, mode schedc.Mode) (*ScheduleCYoYReport, error) {
	key := reportCacheKey(businessID, "schedc_yoy", endingYear, mode)
	var cached ScheduleCYoYReport
	if s.cacheGet(key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	years := reports.TrailingYears(endingYear, DefaultYoYYears)
	rowsByYear := make(map[int][]reports.TxnRow, len(years))
	for _, y := range years {
		from := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		rows, err := s.rows.ListForScheduleC(ctx, businessID, from, from.AddDate(1, 0, 0))
		if err != nil {
			return nil, err
		}
		rowsByYear[y] = rows
	}

	rows, yearTotals, grand := reports.BuildScheduleCYoY(years, rowsByYear, s.mealsRate, mode)
	out := &ScheduleCYoYReport{Years: years, Mode: mode, Rows: rows, YearTotals: yearTotals, GrandTotal: grand}

	prom.AddHistogramVec(prom.SystemReports, prom.MetricReportBuildDuration, time.Since(start).Seconds(), "schedc_yoy", string(mode))
	s.cacheSet(key, out)
	return out, nil
}

func (s *ReportService) ProfitLossSingle(ctx context.Context, businessID int64, year int) (*reports.ProfitLossSingle, error) {
	key := reportCacheKey(businessID, "pl", year, schedc.ModeBooks)
	var cached reports.ProfitLossSingle
	if s.cacheGet(key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	rows, err := s.rows.ListForProfitLoss(ctx, businessID, year)
	if err != nil {
		return nil, err
	}
	pl := reports.BuildProfitLossSingle(year, rows)

	prom.AddHistogramVec(prom.SystemReports, prom.MetricReportBuildDuration, time.Since(start).Seconds(), "pl", string(schedc.ModeBooks))
	s.cacheSet(key, &pl)
	return &pl, nil
}

func (s *ReportService) ProfitLossYoY(ctx context.Context, businessID int64, endingYear, yearCount int) (*reports.ProfitLossYoY, error) {
	if yearCount < 1 {
		yearCount = DefaultYoYYears
	}
	key := fmt.Sprintf("%s:%d", reportCacheKey(businessID, "pl_yoy", endingYear, schedc.ModeBooks), yearCount)
	var cached reports.ProfitLossYoY
	if s.cacheGet(key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	years := reports.TrailingYears(endingYear, yearCount)
	rowsByYear := make(map[int][]reports.TxnRow, len(years))
	for _, y := range years {
		rows, err := s.rows.ListForProfitLoss(ctx, businessID, y)
		if err != nil {
			return nil, err
		}
		rowsByYear[y] = rows
	}
	pl := reports.BuildProfitLossYoY(years, rowsByYear)

	prom.AddHistogramVec(prom.SystemReports, prom.MetricReportBuildDuration, time.Since(start).Seconds(), "pl_yoy", string(schedc.ModeBooks))
	s.cacheSet(key, &pl)
	return &pl, nil
}

// MileageYearSummary is always computed fresh; the inputs are tiny and the
// warnings must reflect the current log.
func (s *ReportService) MileageYearSummary(ctx context.Context, businessID, vehicleID int64, year int) (*reports.MileageYearSummary, error) {
	vehicle, err := s.mileage.Get(ctx, businessID, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, apperr.NotFound("vehicle not found")
		}
		return nil, err
	}
	vy, err := s.mileage.GetYear(ctx, businessID, vehicleID, year)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleYearNotFound) {
			return nil, apperr.NotFound("no mileage record for vehicle %d in %d", vehicleID, year)
		}
		return nil, err
	}
	businessMiles, err := s.mileage.SumMiles(ctx, businessID, vehicleID, year, model.MileageBusiness)
	if err != nil {
		return nil, err
	}

	summary := reports.BuildMileageYearSummary(*vehicle, *vy, businessMiles)
	return &summary, nil
}

func (s *ReportService) cacheGet(key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(key)
	if err != nil {
		if !errors.Is(err, redis.NilError) {
			logger.Warn("report cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("report cache payload corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *ReportService) cacheSet(key string, payload any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.cache.Set(key, raw, s.cacheTTL); err != nil {
		logger.Warn("report cache write failed", "key", key, "error", err)
	}
}
