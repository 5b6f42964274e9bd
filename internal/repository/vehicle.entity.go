package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/booksbridge/books-gateway/internal/model"
)

type VehicleEntity struct {
	ID         int64  `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID int64  `db:"business_id" gorm:"column:business_id;not null;index"`
	Label      string `db:"label"       gorm:"column:label;not null"`
	Year       int    `db:"year"        gorm:"column:year;not null;default:0"`
	Make       string `db:"make"        gorm:"column:make;not null;default:''"`
	Model      string `db:"model"       gorm:"column:model;not null;default:''"`
	IsBusiness bool   `db:"is_business" gorm:"column:is_business;not null;default:true"`
	IsActive   bool   `db:"is_active"   gorm:"column:is_active;not null;default:true"`
	SortOrder  int    `db:"sort_order"  gorm:"column:sort_order;not null;default:0"`
}

func (VehicleEntity) TableName() string {
	return "vehicles"
}

func toVehicleModel(e *VehicleEntity) *model.Vehicle {
	if e == nil {
		return nil
	}
	return &model.Vehicle{
		ID:         e.ID,
		BusinessID: e.BusinessID,
		Label:      e.Label,
		Year:       e.Year,
		Make:       e.Make,
		Model:      e.Model,
		IsBusiness: e.IsBusiness,
		IsActive:   e.IsActive,
		SortOrder:  e.SortOrder,
	}
}

type VehicleYearEntity struct {
	ID              int64            `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID      int64            `db:"business_id"      gorm:"column:business_id;not null;index"`
	VehicleID       int64            `db:"vehicle_id"       gorm:"column:vehicle_id;not null;uniqueIndex:idx_vehicle_year"`
	Year            int              `db:"year"             gorm:"column:year;not null;uniqueIndex:idx_vehicle_year"`
	OdometerStart   decimal.Decimal  `db:"odometer_start"   gorm:"column:odometer_start;type:numeric(10,1);not null"`
	OdometerEnd     *decimal.Decimal `db:"odometer_end"     gorm:"column:odometer_end;type:numeric(10,1)"`
	DeductionMethod string           `db:"deduction_method" gorm:"column:deduction_method;not null;default:'standard_mileage'"`
	IsLocked        bool             `db:"is_locked"        gorm:"column:is_locked;not null;default:false"`
}

func (VehicleYearEntity) TableName() string {
	return "vehicle_years"
}

func toVehicleYearModel(e *VehicleYearEntity) *model.VehicleYear {
	if e == nil {
		return nil
	}
	return &model.VehicleYear{
		ID:              e.ID,
		BusinessID:      e.BusinessID,
		VehicleID:       e.VehicleID,
		Year:            e.Year,
		OdometerStart:   e.OdometerStart,
		OdometerEnd:     e.OdometerEnd,
		DeductionMethod: model.MileageDeductionMethod(e.DeductionMethod),
		IsLocked:        e.IsLocked,
	}
}

type VehicleMilesEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID int64           `db:"business_id" gorm:"column:business_id;not null;index"`
	VehicleID  int64           `db:"vehicle_id"  gorm:"column:vehicle_id;not null;index"`
	Date       time.Time       `db:"date"        gorm:"column:date;not null"`
	Total      decimal.Decimal `db:"total"       gorm:"column:total;type:numeric(10,1);not null"`
	Type       string          `db:"type"        gorm:"column:type;not null"`
	Purpose    string          `db:"purpose"     gorm:"column:purpose;not null;default:''"`
}

func (VehicleMilesEntity) TableName() string {
	return "vehicle_miles"
}

func toVehicleMilesEntity(m *model.VehicleMiles) *VehicleMilesEntity {
	if m == nil {
		return nil
	}
	return &VehicleMilesEntity{
		ID:         m.ID,
		BusinessID: m.BusinessID,
		VehicleID:  m.VehicleID,
		Date:       m.Date,
		Total:      m.Total,
		Type:       string(m.Type),
		Purpose:    m.Purpose,
	}
}

func toVehicleMilesModel(e *VehicleMilesEntity) *model.VehicleMiles {
	if e == nil {
		return nil
	}
	return &model.VehicleMiles{
		ID:         e.ID,
		BusinessID: e.BusinessID,
		VehicleID:  e.VehicleID,
		Date:       e.Date,
		Total:      e.Total,
		Type:       model.MileageType(e.Type),
		Purpose:    e.Purpose,
	}
}
