package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the catalog. Implementations enforce SKU
// uniqueness themselves so concurrent creates cannot both succeed.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch *model.ProductPatch, updatedBy string) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error)
	Count(ctx context.Context) (int64, error)
}

// StockGuard may veto an append. It runs inside the append's
// serialization boundary with the product's balance before the entry.
type StockGuard func(current int64, tx *model.Transaction) error

// TransactionRepository is the append-only ledger. There is no update or
// delete: corrections are new offsetting entries.
type TransactionRepository interface {
	Append(ctx context.Context, tx *model.Transaction, guard StockGuard) error
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindByID(ctx context.Context, id uint64) (*model.Transaction, error)
	StockOf(ctx context.Context, productID uuid.UUID) (int64, error)
	StockOfMany(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ScanStock(ctx context.Context, productID uuid.UUID) (int64, error)
	Totals(ctx context.Context) (model.LedgerTotals, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error)
}

var errSKUTaken = apperror.Conflict("sku", "SKU already exists")

// storeError maps a GORM failure onto the error taxonomy.
func storeError(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errSKUTaken
	default:
		return apperror.Unavailable(op, err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// matchesSearch is the in-memory twin of the ILIKE query.
func matchesSearch(p *model.Product, needle string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.SKU), needle) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), needle)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneProduct(p *model.Product) *model.Product {
	c := *p
	c.Description = cloneString(p.Description)
	c.ImageURL = cloneString(p.ImageURL)
	return &c
}

func cloneTransaction(t *model.Transaction) model.Transaction {
	c := *t
	c.Description = cloneString(t.Description)
	return c
}
