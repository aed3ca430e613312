package service

import (
	"context"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/events"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.ProductInput, actor model.Actor) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch *model.ProductPatch, actor model.Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) error
	ListProducts(ctx context.Context, filter model.ProductFilter) (*model.Page[model.Product], error)
	ListProductsWithStock(ctx context.Context, filter model.ProductFilter) (*model.Page[model.ProductWithStock], error)
	ListLowStock(ctx context.Context, filter model.ProductFilter) (*model.Page[model.ProductWithStock], error)
	RecordTransaction(ctx context.Context, req *model.TransactionInput, actor model.Actor) (*model.Transaction, error)
	GetAllTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id uint64) (*model.Transaction, error)
}

type Options struct {
	AllowNegativeStock bool
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	stock           StockService
	publisher       events.Publisher
	logger          *zap.Logger
	opts            Options
}

func NewInventoryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, stock StockService, publisher events.Publisher, logger *zap.Logger, opts Options) InventoryService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		stock:           stock,
		publisher:       publisher,
		logger:          logger,
		opts:            opts,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.ProductInput, actor model.Actor) (*model.Product, error) {
	if req == nil {
		return nil, apperror.Validation("body", "is required")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)

	// 1. Validasi Struct Dasar
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Cek Duplikasi SKU (the store enforces it again on insert)
	if _, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, apperror.Conflict("sku", "SKU already exists")
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	product := &model.Product{
		Name:         req.Name,
		SKU:          req.SKU,
		Category:     req.Category,
		Description:  req.Description,
		MinimumStock: req.MinimumStock,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		CreatedBy:    actor.ID,
		UpdatedBy:    actor.ID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.String("actor", actor.ID))

	event := events.NewEvent(events.ProductCreated, actor, fmt.Sprintf("%s created product '%s'", actor.Name, product.Name))
	event.Product = product
	publish(ctx, s.publisher, s.logger, event)

	return product, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, patch *model.ProductPatch, actor model.Actor) (*model.Product, error) {
	if patch == nil {
		return nil, apperror.Validation("body", "is required")
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.SKU != nil {
		trimmed := strings.TrimSpace(*patch.SKU)
		patch.SKU = &trimmed
	}
	if err := validate(patch); err != nil {
		return nil, err
	}

	// Merge happens inside the store; SKU uniqueness is enforced there too
	updated, err := s.productRepo.Update(ctx, id, patch, actor.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.String("product_id", id.String()),
		zap.String("actor", actor.ID))

	event := events.NewEvent(events.ProductUpdated, actor, fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name))
	event.Product = updated
	publish(ctx, s.publisher, s.logger, event)

	return updated, nil
}

// DeleteProduct removes the catalog record only. Ledger history for the
// product stays and keeps counting toward its stock.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", id.String()),
		zap.String("actor", actor.ID))

	event := events.NewEvent(events.ProductDeleted, actor, fmt.Sprintf("%s deleted product '%s'", actor.Name, existing.Name))
	event.Product = existing
	publish(ctx, s.publisher, s.logger, event)
	return nil
}

func (s *inventoryService) ListProducts(ctx context.Context, filter model.ProductFilter) (*model.Page[model.Product], error) {
	if err := validate(&filter); err != nil {
		return nil, err
	}
	if filter.OffsetOverflows() {
		return nil, apperror.Validation("page", "is out of range")
	}
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.Page[model.Product]{Items: products, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ListProductsWithStock fails the whole page if stock cannot be read for
// it; rows are never zero-filled.
func (s *inventoryService) ListProductsWithStock(ctx context.Context, filter model.ProductFilter) (*model.Page[model.ProductWithStock], error) {
	page, err := s.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].ID
	}
	stock, err := s.stock.StockOfMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ProductWithStock, 0, len(page.Items))
	for _, p := range page.Items {
		qty, ok := stock[p.ID]
		if !ok {
			return nil, apperror.Unavailable("read stock", fmt.Errorf("no stock returned for product %s", p.ID))
		}
		rows = append(rows, model.ProductWithStock{Product: p, Stock: qty, LowStock: qty < p.MinimumStock})
	}
	return &model.Page[model.ProductWithStock]{Items: rows, Total: page.Total, Page: page.Page, Limit: page.Limit}, nil
}

// ListLowStock returns the low-stock rows of one catalog page. Total still
// counts the whole page's matches, so callers can keep paginating.
func (s *inventoryService) ListLowStock(ctx context.Context, filter model.ProductFilter) (*model.Page[model.ProductWithStock], error) {
	page, err := s.ListProductsWithStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	low := make([]model.ProductWithStock, 0)
	for _, row := range page.Items {
		if row.LowStock {
			low = append(low, row)
		}
	}
	page.Items = low
	return page, nil
}

func (s *inventoryService) RecordTransaction(ctx context.Context, req *model.TransactionInput, actor model.Actor) (*model.Transaction, error) {
	if req == nil {
		return nil, apperror.Validation("body", "is required")
	}
	// 1. Validasi Input
	if err := validate(req); err != nil {
		return nil, err
	}

	entry := &model.Transaction{
		ProductID:   req.ProductID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}

	var stockAfter int64
	guard := func(current int64, tx *model.Transaction) error {
		next := current + tx.Delta()
		if !s.opts.AllowNegativeStock && next < 0 {
			return ErrInsufficientStock
		}
		stockAfter = next
		return nil
	}

	if err := s.transactionRepo.Append(ctx, entry, guard); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction recorded",
		zap.Uint64("transaction_id", entry.ID),
		zap.String("product_id", entry.ProductID.String()),
		zap.String("type", string(entry.Type)),
		zap.Int64("quantity", entry.Quantity),
		zap.Int64("stock", stockAfter))

	event := events.NewEvent(events.TransactionRecorded, actor, "")
	event.Transaction = entry
	event.Stock = &stockAfter
	verb := "added"
	if entry.Type == model.TxOut {
		verb = "removed"
	}
	label := entry.ProductID.String()
	if product, err := s.productRepo.FindByID(ctx, entry.ProductID); err == nil {
		label = product.Name
		low := stockAfter < product.MinimumStock
		event.LowStock = &low
	}
	event.Message = fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.Name, verb, entry.Quantity, label, entry.Type)
	publish(ctx, s.publisher, s.logger, event)

	return entry, nil
}

func (s *inventoryService) GetAllTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.transactionRepo.FindAll(ctx)
}

func (s *inventoryService) GetTransactionByID(ctx context.Context, id uint64) (*model.Transaction, error) {
	return s.transactionRepo.FindByID(ctx, id)
}
