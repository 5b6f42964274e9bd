package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/pkg/pg"
)

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleYearNotFound = errors.New("vehicle year not found")
)

type VehicleRepository struct {
	*pg.DB
}

func NewVehicleRepository(db *pg.DB) *VehicleRepository {
	return &VehicleRepository{
		db,
	}
}

func (r *VehicleRepository) Get(ctx context.Context, businessID, vehicleID int64) (*model.Vehicle, error) {
	var entity VehicleEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, vehicleID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return toVehicleModel(&entity), nil
}

func (r *VehicleRepository) GetYear(ctx context.Context, businessID, vehicleID int64, year int) (*model.VehicleYear, error) {
	var entity VehicleYearEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND vehicle_id = ? AND year = ?", businessID, vehicleID, year).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleYearNotFound
		}
		return nil, err
	}
	return toVehicleYearModel(&entity), nil
}

func (r *VehicleRepository) CreateMiles(ctx context.Context, miles *model.VehicleMiles) (*model.VehicleMiles, error) {
	entity := toVehicleMilesEntity(miles)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toVehicleMilesModel(entity), nil
}

// SumMiles totals the mileage log of one type for a vehicle's calendar year.
func (r *VehicleRepository) SumMiles(ctx context.Context, businessID, vehicleID int64, year int, mileageType model.MileageType) (decimal.Decimal, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	var total decimal.NullDecimal
	err := r.Read(ctx).WithContext(ctx).
		Model(&VehicleMilesEntity{}).
		Select("SUM(total)").
		Where("business_id = ? AND vehicle_id = ? AND type = ?", businessID, vehicleID, string(mileageType)).
		Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0)).
		Scan(&total).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
