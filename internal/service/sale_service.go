package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/salesledger/internal/access"
	"github.com/mmynk/salesledger/internal/apperr"
	"github.com/mmynk/salesledger/internal/models"
	"github.com/mmynk/salesledger/internal/storage"
)

var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrOwnerNotFound      = errors.New("user not found")
	ErrProductNameMissing = errors.New("productName is required")
	ErrAmountMissing      = errors.New("amount is required")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrDateMissing        = errors.New("dateOfSale is required")
	ErrInvalidStatus      = errors.New("status must be one of pending, completed, cancelled")
)

// CreateSaleInput holds the fields of a new sale as received from a client.
type CreateSaleInput struct {
	ProductName string
	Amount      *float64
	DateOfSale  string
	Status      string
	// UserID is the requested owner, nil when the client did not send one.
	UserID *string
}

// UpdateSaleInput holds a partial update. Nil fields are left unchanged.
type UpdateSaleInput struct {
	ProductName *string
	Amount      *float64
	DateOfSale  *string
	Status      *string
}

// SaleService implements sale CRUD with ownership checks.
type SaleService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewSaleService creates a new SaleService with the given storage backend.
func NewSaleService(store storage.Store, logger *slog.Logger) *SaleService {
	return &SaleService{store: store, logger: logger}
}

// CreateSale records a new sale on behalf of caller.
func (s *SaleService) CreateSale(ctx context.Context, caller models.Identity, in CreateSaleInput) (*models.Sale, error) {
	s.logger.Info("CreateSale request received", "user_id", caller.ID, "role", caller.Role, "product_name", in.ProductName)

	ownerID, err := access.ResolveOwner(caller, in.UserID)
	if err != nil {
		s.logger.Warn("CreateSale rejected", "user_id", caller.ID, "error", err)
		if errors.Is(err, access.ErrOwnerRequired) {
			return nil, apperr.New(apperr.CodeInvalidArgument, err)
		}
		return nil, apperr.New(apperr.CodePermissionDenied, err)
	}

	sale, err := newSale(ownerID, in)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, err)
	}

	if ownerID != caller.ID {
		if _, err := s.store.GetUserByID(ctx, ownerID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperr.New(apperr.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrOwnerNotFound, ownerID))
			}
			s.logger.Error("CreateSale owner lookup failed", "owner_id", ownerID, "error", err)
			return nil, apperr.New(apperr.CodeInternal, err)
		}
	}

	if err := s.store.CreateSale(ctx, sale); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrOwnerNotFound, ownerID))
		}
		s.logger.Error("CreateSale failed", "error", err)
		return nil, apperr.New(apperr.CodeInternal, err)
	}

	s.logger.Info("Sale created", "sale_id", sale.ID, "owner_id", sale.UserID, "created_by", caller.ID)
	return sale, nil
}

// ListSales returns the sales caller may see, optionally narrowed by status.
func (s *SaleService) ListSales(ctx context.Context, caller models.Identity, status string) ([]*models.Sale, error) {
	filter := storage.SaleFilter{UserID: access.ListScope(caller)}
	if status != "" {
		st := models.SaleStatus(status)
		if !st.Valid() {
			return nil, apperr.New(apperr.CodeInvalidArgument, ErrInvalidStatus)
		}
		filter.Status = st
	}

	sales, err := s.store.ListSales(ctx, filter)
	if err != nil {
		s.logger.Error("ListSales failed", "user_id", caller.ID, "error", err)
		return nil, apperr.New(apperr.CodeInternal, err)
	}

	s.logger.Info("ListSales successful", "user_id", caller.ID, "role", caller.Role, "count", len(sales))
	return sales, nil
}

// GetSale returns a single sale if caller may see it.
func (s *SaleService) GetSale(ctx context.Context, caller models.Identity, id string) (*models.Sale, error) {
	sale, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.CheckView(caller, sale); err != nil {
		s.logger.Warn("GetSale forbidden", "sale_id", id, "user_id", caller.ID)
		return nil, apperr.New(apperr.CodePermissionDenied, err)
	}

	return sale, nil
}

// UpdateSale applies a partial update if caller is an admin or owns the sale.
func (s *SaleService) UpdateSale(ctx context.Context, caller models.Identity, id string, in UpdateSaleInput) (*models.Sale, error) {
	s.logger.Info("UpdateSale request received", "sale_id", id, "user_id", caller.ID)

	sale, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.CheckModify(caller, sale); err != nil {
		s.logger.Warn("UpdateSale forbidden", "sale_id", id, "user_id", caller.ID)
		return nil, apperr.New(apperr.CodePermissionDenied, err)
	}

	if err := applyUpdate(sale, in); err != nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, err)
	}

	if err := s.store.UpdateSale(ctx, sale); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between load and write.
			return nil, apperr.New(apperr.CodeNotFound, ErrSaleNotFound)
		}
		s.logger.Error("UpdateSale failed", "sale_id", id, "error", err)
		return nil, apperr.New(apperr.CodeInternal, err)
	}

	s.logger.Info("Sale updated", "sale_id", id, "user_id", caller.ID)
	return sale, nil
}

// DeleteSale permanently removes a sale if caller is an admin or owns it.
func (s *SaleService) DeleteSale(ctx context.Context, caller models.Identity, id string) error {
	s.logger.Info("DeleteSale request received", "sale_id", id, "user_id", caller.ID)

	sale, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := access.CheckModify(caller, sale); err != nil {
		s.logger.Warn("DeleteSale forbidden", "sale_id", id, "user_id", caller.ID)
		return apperr.New(apperr.CodePermissionDenied, err)
	}

	if err := s.store.DeleteSale(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.CodeNotFound, ErrSaleNotFound)
		}
		s.logger.Error("DeleteSale failed", "sale_id", id, "error", err)
		return apperr.New(apperr.CodeInternal, err)
	}

	s.logger.Info("Sale deleted", "sale_id", id, "user_id", caller.ID)
	return nil
}

func (s *SaleService) load(ctx context.Context, id string) (*models.Sale, error) {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, ErrSaleNotFound)
		}
		s.logger.Error("Failed to load sale", "sale_id", id, "error", err)
		return nil, apperr.New(apperr.CodeInternal, err)
	}
	return sale, nil
}

func newSale(ownerID string, in CreateSaleInput) (*models.Sale, error) {
	if in.ProductName == "" {
		return nil, ErrProductNameMissing
	}
	if in.Amount == nil {
		return nil, ErrAmountMissing
	}
	if *in.Amount < 0 {
		return nil, ErrNegativeAmount
	}
	if in.DateOfSale == "" {
		return nil, ErrDateMissing
	}
	date, err := models.ParseDate(in.DateOfSale)
	if err != nil {
		return nil, err
	}

	status := models.StatusPending
	if in.Status != "" {
		status = models.SaleStatus(in.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	return &models.Sale{
		UserID:      ownerID,
		ProductName: in.ProductName,
		Amount:      *in.Amount,
		DateOfSale:  date,
		Status:      status,
	}, nil
}

// applyUpdate validates every supplied field before touching sale,
// so a rejected update leaves it unchanged.
func applyUpdate(sale *models.Sale, in UpdateSaleInput) error {
	next := *sale

	if in.ProductName != nil {
		if *in.ProductName == "" {
			return ErrProductNameMissing
		}
		next.ProductName = *in.ProductName
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return ErrNegativeAmount
		}
		next.Amount = *in.Amount
	}
	if in.DateOfSale != nil {
		date, err := models.ParseDate(*in.DateOfSale)
		if err != nil {
			return err
		}
		next.DateOfSale = date
	}
	if in.Status != nil {
		st := models.SaleStatus(*in.Status)
		if !st.Valid() {
			return ErrInvalidStatus
		}
		next.Status = st
	}

	*sale = next
	return nil
}
