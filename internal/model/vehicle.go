package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle is a business-owned vehicle referenced by transport-flagged
// transactions and by the mileage log.
type Vehicle struct {
	ID         int64  `json:"id"`
	BusinessID int64  `json:"business_id"`
	Label      string `json:"label"`
	Year       int    `json:"year"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	IsBusiness bool   `json:"is_business"`
	IsActive   bool   `json:"is_active"`
	SortOrder  int    `json:"sort_order"`
}

func (Vehicle) TableName() string { return "vehicles" }

// MileageDeductionMethod selects how a vehicle-year is deducted.
type MileageDeductionMethod string

const (
	DeductionStandardMileage MileageDeductionMethod = "standard_mileage"
	DeductionActualExpenses  MileageDeductionMethod = "actual_expenses"
)

// VehicleYear pins the per-year odometer window and deduction method for one
// vehicle. OdometerEnd is nil until the year is closed out.
type VehicleYear struct {
	ID              int64                  `json:"id"`
	BusinessID      int64                  `json:"business_id"`
	VehicleID       int64                  `json:"vehicle_id"`
	Year            int                    `json:"year"`
	OdometerStart   decimal.Decimal        `json:"odometer_start"`
	OdometerEnd     *decimal.Decimal       `json:"odometer_end"`
	DeductionMethod MileageDeductionMethod `json:"deduction_method"`
	IsLocked        bool                   `json:"is_locked"`
}

func (VehicleYear) TableName() string { return "vehicle_years" }

// TotalMiles is OdometerEnd - OdometerStart, nil while the end reading is
// missing.
func (vy VehicleYear) TotalMiles() *decimal.Decimal {
	if vy.OdometerEnd == nil {
		return nil
	}
	d := vy.OdometerEnd.Sub(vy.OdometerStart)
	return &d
}

// MileageType classifies a mileage log entry.
type MileageType string

const (
	MileageBusiness MileageType = "business"
	MileagePersonal MileageType = "personal"
)

// VehicleMiles is one mileage log entry.
type VehicleMiles struct {
	ID         int64           `json:"id"`
	BusinessID int64           `json:"business_id"`
	VehicleID  int64           `json:"vehicle_id"`
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	Type       MileageType     `json:"type"`
	Purpose    string          `json:"purpose"`
}

func (VehicleMiles) TableName() string { return "vehicle_miles" }
