package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/pkg/pg"
)

var (
	ErrBusinessNotFound    = errors.New("business not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubCategoryNotFound = errors.New("subcategory not found")
)

type ChartRepository struct {
	*pg.DB
}

func NewChartRepository(db *pg.DB) *ChartRepository {
	return &ChartRepository{
		db,
	}
}

func (r *ChartRepository) GetBusiness(ctx context.Context, businessID int64) (*model.Business, error) {
	var entity BusinessEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", businessID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return toBusinessModel(&entity), nil
}

func (r *ChartRepository) GetCategory(ctx context.Context, businessID, categoryID int64) (*model.Category, error) {
	var entity CategoryEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, categoryID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return toCategoryModel(&entity), nil
}

func (r *ChartRepository) GetSubCategory(ctx context.Context, businessID, subCategoryID int64) (*model.SubCategory, error) {
	var entity SubCategoryEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, subCategoryID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, err
	}
	return toSubCategoryModel(&entity), nil
}

func (r *ChartRepository) ListCategories(ctx context.Context, businessID int64) ([]*model.Category, error) {
	var entities []*CategoryEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("sort_order ASC, name ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCategoryModels(entities), nil
}

func (r *ChartRepository) ListSubCategories(ctx context.Context, businessID, categoryID int64) ([]*model.SubCategory, error) {
	var entities []*SubCategoryEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND category_id = ?", businessID, categoryID).
		Order("sort_order ASC, name ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toSubCategoryModels(entities), nil
}
