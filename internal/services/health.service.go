package services

import (
	"github.com/booksbridge/books-gateway/pkg/pg"
)

// HealthService answers the liveness probe. A failing database ping is the
// only condition that reports unhealthy.
type HealthService struct {
	db *pg.DB
}

func NewHealthService(db *pg.DB) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Get() error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping()
}
