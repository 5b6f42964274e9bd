package reports

import (
	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
)

// MileageYearSummary is the per-vehicle per-year mileage split backing the
// standard-mileage deduction worksheet.
type MileageYearSummary struct {
	Year            int                          `json:"year"`
	VehicleID       int64                        `json:"vehicle_id"`
	VehicleLabel    string                       `json:"vehicle_label"`
	DeductionMethod model.MileageDeductionMethod `json:"deduction_method"`
	IsLocked        bool                         `json:"is_locked"`
	OdometerStart   decimal.Decimal              `json:"odometer_start"`
	OdometerEnd     *decimal.Decimal             `json:"odometer_end"`
	TotalMiles      *decimal.Decimal             `json:"total_miles"`
	BusinessMiles   decimal.Decimal              `json:"business_miles"`
	PersonalMiles   *decimal.Decimal             `json:"personal_miles"`
	Warnings        []string                     `json:"warnings"`
}

// Mileage figures round to a tenth of a mile, half up.
func roundTenth(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// BuildMileageYearSummary derives total and personal miles from the year's
// odometer window and the summed business mileage log.
func BuildMileageYearSummary(vehicle model.Vehicle, vy model.VehicleYear, businessMiles decimal.Decimal) MileageYearSummary {
	businessMiles = roundTenth(businessMiles)

	s := MileageYearSummary{
		Year:            vy.Year,
		VehicleID:       vehicle.ID,
		VehicleLabel:    vehicle.Label,
		DeductionMethod: vy.DeductionMethod,
		IsLocked:        vy.IsLocked,
		OdometerStart:   vy.OdometerStart,
		OdometerEnd:     vy.OdometerEnd,
		BusinessMiles:   businessMiles,
	}

	total := vy.TotalMiles()
	if total == nil {
		s.Warnings = append(s.Warnings, "Missing odometer end for the year; total and personal miles cannot be calculated yet.")
		return s
	}

	t := roundTenth(*total)
	s.TotalMiles = &t

	personal := roundTenth(t.Sub(businessMiles))
	if personal.IsNegative() {
		s.Warnings = append(s.Warnings, "Business miles exceed total miles. Check odometer readings or mileage logs.")
		personal = decimal.Zero
	}
	s.PersonalMiles = &personal
	return s
}
