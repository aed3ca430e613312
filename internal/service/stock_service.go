package service

import (
	"context"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

// StockService derives stock from the ledger. Nothing here is stored.
type StockService interface {
	StockOf(ctx context.Context, productID uuid.UUID) (int64, error)
	StockOfMany(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LowStockProducts(ctx context.Context, page []model.Product) (map[uuid.UUID]struct{}, error)
	Reconcile(ctx context.Context, productID uuid.UUID) (*model.StockReconciliation, error)
}

type stockService struct {
	txRepo repository.TransactionRepository
}

func NewStockService(txRepo repository.TransactionRepository) StockService {
	return &stockService{txRepo: txRepo}
}

// StockOf is 0 for products with no history, catalogued or not.
func (s *stockService) StockOf(ctx context.Context, productID uuid.UUID) (int64, error) {
	return s.txRepo.StockOf(ctx, productID)
}

func (s *stockService) StockOfMany(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.txRepo.StockOfMany(ctx, productIDs)
}

// LowStockProducts checks one catalog page, not the whole catalog.
func (s *stockService) LowStockProducts(ctx context.Context, page []model.Product) (map[uuid.UUID]struct{}, error) {
	low := make(map[uuid.UUID]struct{})
	if len(page) == 0 {
		return low, nil
	}

	ids := make([]uuid.UUID, len(page))
	for i := range page {
		ids[i] = page[i].ID
	}
	stock, err := s.txRepo.StockOfMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range page {
		if stock[page[i].ID] < page[i].MinimumStock {
			low[page[i].ID] = struct{}{}
		}
	}
	return low, nil
}

// Reconcile compares the running balance against a full scan of history.
// The two reads are separate, so appends landing between them show up as
// a mismatch; rerun on a quiet ledger before treating it as drift.
func (s *stockService) Reconcile(ctx context.Context, productID uuid.UUID) (*model.StockReconciliation, error) {
	balance, err := s.txRepo.StockOf(ctx, productID)
	if err != nil {
		return nil, err
	}
	scanned, err := s.txRepo.ScanStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &model.StockReconciliation{
		ProductID:  productID,
		Balance:    balance,
		Scanned:    scanned,
		Consistent: balance == scanned,
	}, nil
}
