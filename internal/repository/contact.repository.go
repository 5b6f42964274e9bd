package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/pkg/pg"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrJobNotFound     = errors.New("job not found")
)

type ContactRepository struct {
	*pg.DB
}

func NewContactRepository(db *pg.DB) *ContactRepository {
	return &ContactRepository{
		db,
	}
}

func (r *ContactRepository) Get(ctx context.Context, businessID, contactID int64) (*model.Contact, error) {
	var entity ContactEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, contactID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return toContactModel(&entity), nil
}

func (r *ContactRepository) GetJob(ctx context.Context, businessID, jobID int64) (*model.Job, error) {
	var entity JobEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, jobID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return toJobModel(&entity), nil
}
