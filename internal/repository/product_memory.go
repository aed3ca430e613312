package repository

import (
	"context"
	"sync"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
)

// memoryProductRepo keeps products in insertion order.
type memoryProductRepo struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*model.Product
	bySKU map[string]uuid.UUID
}

func NewMemoryProductRepo() ProductRepository {
	return &memoryProductRepo{
		byID:  make(map[uuid.UUID]*model.Product),
		bySKU: make(map[string]uuid.UUID),
	}
}

func (r *memoryProductRepo) Create(ctx context.Context, product *model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySKU[product.SKU]; taken {
		return errSKUTaken
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if _, taken := r.byID[product.ID]; taken {
		return apperror.Conflict("id", "product id already exists")
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.byID[product.ID] = cloneProduct(product)
	r.bySKU[product.SKU] = product.ID
	r.order = append(r.order, product.ID)
	return nil
}

func (r *memoryProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	return cloneProduct(p), nil
}

func (r *memoryProductRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySKU[sku]
	if !ok {
		return nil, apperror.NotFound("product", sku)
	}
	return cloneProduct(r.byID[id]), nil
}

// Update merges patch into the stored record under the write lock, so
// concurrent patches on different fields both land.
func (r *memoryProductRepo) Update(ctx context.Context, id uuid.UUID, patch *model.ProductPatch, updatedBy string) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}

	updated := cloneProduct(existing)
	patch.Apply(updated)
	updated.ID = id
	updated.UpdatedBy = updatedBy
	updated.UpdatedAt = time.Now().UTC()

	if owner, taken := r.bySKU[updated.SKU]; taken && owner != id {
		return nil, errSKUTaken
	}

	delete(r.bySKU, existing.SKU)
	r.bySKU[updated.SKU] = id
	r.byID[id] = updated
	return cloneProduct(updated), nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return apperror.NotFound("product", id)
	}
	delete(r.byID, id)
	delete(r.bySKU, p.SKU)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryProductRepo) FindAll(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	offset := f.Offset()
	products := []model.Product{}
	var total int64
	for _, id := range r.order {
		p := r.byID[id]
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if !matchesSearch(p, f.Search) {
			continue
		}
		if total >= int64(offset) && len(products) < f.Limit {
			products = append(products, *cloneProduct(p))
		}
		total++
	}
	return products, total, nil
}

func (r *memoryProductRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}
