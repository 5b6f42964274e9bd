package services

import (
	"context"
	"errors"

	"github.com/booksbridge/books-gateway/internal/apperr"
	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/repository"
	"github.com/booksbridge/books-gateway/pkg/logger"
)

func mapLedgerErr(err error) error {
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return apperr.NotFound("transaction not found")
	}
	return err
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	Get(ctx context.Context, businessID, id int64) (*model.Transaction, error)
	List(ctx context.Context, businessID int64, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

type VehicleReader interface {
	Get(ctx context.Context, businessID, vehicleID int64) (*model.Vehicle, error)
}

// TransactionService records ledger entries. Category and type are derived
// from the subcategory here, never accepted from the caller, and every
// referenced record is checked against the caller's business.
type TransactionService struct {
	txnRepo     TransactionRepository
	chartRepo   ChartReader
	contactRepo ContactDirectory
	vehicleRepo VehicleReader
	reportCache ReportInvalidator
}

func NewTransactionService(
	txnRepo TransactionRepository,
	chartRepo ChartReader,
	contactRepo ContactDirectory,
	vehicleRepo VehicleReader,
	reportCache ReportInvalidator,
) *TransactionService {
	return &TransactionService{
		txnRepo:     txnRepo,
		chartRepo:   chartRepo,
		contactRepo: contactRepo,
		vehicleRepo: vehicleRepo,
		reportCache: reportCache,
	}
}

func (s *TransactionService) Create(ctx context.Context, businessID int64, req model.TransactionCreateRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.chartRepo.GetSubCategory(ctx, businessID, req.SubCategoryID)
	if err != nil {
		return nil, mapDirectoryErr(err, "subcategory")
	}
	cat, err := s.chartRepo.GetCategory(ctx, businessID, sub.CategoryID)
	if err != nil {
		return nil, mapDirectoryErr(err, "category")
	}

	if sub.RequiresPayee {
		if req.ContactID == nil {
			return nil, apperr.Validation("contact", "%s requires a payee", sub.Name)
		}
	}
	if req.ContactID != nil {
		contact, err := s.contactRepo.Get(ctx, businessID, *req.ContactID)
		if err != nil {
			return nil, mapDirectoryErr(err, "contact")
		}
		if sub.RequiresPayee && !contact.HasRole(sub.PayeeRole) {
			return nil, apperr.Validation("contact", "%s requires a %s payee", sub.Name, sub.PayeeRole)
		}
	}

	if req.JobID != nil {
		if _, err := s.contactRepo.GetJob(ctx, businessID, *req.JobID); err != nil {
			return nil, mapDirectoryErr(err, "job")
		}
	}

	if err := s.checkTransport(ctx, businessID, sub, &req); err != nil {
		return nil, err
	}

	created, err := s.txnRepo.Create(ctx, &model.Transaction{
		BusinessID:    businessID,
		Date:          req.Date,
		Amount:        req.Amount,
		IsRefund:      req.IsRefund,
		Description:   req.Description,
		SubCategoryID: sub.ID,
		CategoryID:    cat.ID,
		Type:          cat.Type,
		ContactID:     req.ContactID,
		JobID:         req.JobID,
		VehicleID:     req.VehicleID,
		InvoiceNumber: req.InvoiceNumber,
		TransportType: req.TransportType,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(businessID)
	logger.Info("transaction recorded", "business_id", businessID, "transaction_id", created.ID, "subcategory", sub.Slug)
	return created, nil
}

// checkTransport enforces the transport/vehicle pairing rules: transport-
// flagged subcategories need a transport type, personal/business transport
// needs an owned vehicle, and rental transport must not name one.
func (s *TransactionService) checkTransport(ctx context.Context, businessID int64, sub *model.SubCategory, req *model.TransactionCreateRequest) error {
	if sub.RequiresTransport && req.TransportType == model.TransportNone {
		return apperr.Validation("transport_type", "%s requires a transport type", sub.Name)
	}

	needsVehicle := sub.RequiresVehicle ||
		req.TransportType == model.TransportPersonal ||
		req.TransportType == model.TransportBusiness

	switch {
	case req.TransportType == model.TransportRental:
		if req.VehicleID != nil {
			return apperr.Validation("vehicle", "rental car transport must not reference an owned vehicle")
		}
	case needsVehicle:
		if req.VehicleID == nil {
			return apperr.Validation("vehicle", "%s requires a vehicle", sub.Name)
		}
	}

	if req.VehicleID != nil {
		if _, err := s.vehicleRepo.Get(ctx, businessID, *req.VehicleID); err != nil {
			return mapDirectoryErr(err, "vehicle")
		}
	}
	return nil
}

func (s *TransactionService) Get(ctx context.Context, businessID, id int64) (*model.Transaction, error) {
	txn, err := s.txnRepo.Get(ctx, businessID, id)
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	return txn, nil
}

func (s *TransactionService) List(ctx context.Context, businessID int64, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	return s.txnRepo.List(ctx, businessID, f)
}

func (s *TransactionService) invalidateReports(businessID int64) {
	if s.reportCache == nil {
		return
	}
	if err := s.reportCache.InvalidateBusiness(businessID); err != nil {
		logger.Warn("report cache invalidation failed", "business_id", businessID, "error", err)
	}
}
