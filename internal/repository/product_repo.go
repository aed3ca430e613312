package repository

import (
	"context"
	"errors"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return storeError(ctx, "create product", r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product", id)
	}
	if err != nil {
		return nil, storeError(ctx, "find product", err)
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product", sku)
	}
	if err != nil {
		return nil, storeError(ctx, "find product by sku", err)
	}
	return &product, nil
}

// Update locks the row, merges patch and writes it back in one
// transaction. The id, created_at and created_by columns never change.
func (r *productRepo) Update(ctx context.Context, id uuid.UUID, patch *model.ProductPatch, updatedBy string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock baris product (SELECT ... FOR UPDATE)
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
			return err
		}

		patch.Apply(&product)
		product.ID = id
		product.UpdatedBy = updatedBy

		return tx.Model(&model.Product{}).
			Where("id = ?", id).
			Select("*").
			Omit("id", "created_at", "created_by").
			Updates(&product).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("product", id)
	}
	if err != nil {
		return nil, storeError(ctx, "update product", err)
	}
	return &product, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if result.Error != nil {
		return storeError(ctx, "delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

func (r *productRepo) FindAll(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})

	if f.Search != "" {
		like := "%" + likeEscaper.Replace(f.Search) + "%"
		query = query.Where("(name ILIKE ? OR sku ILIKE ? OR description ILIKE ?)", like, like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeError(ctx, "count products", err)
	}

	products := []model.Product{}
	err := query.
		Order("created_at ASC, id ASC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, storeError(ctx, "list products", err)
	}
	return products, total, nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error
	return total, storeError(ctx, "count products", err)
}
