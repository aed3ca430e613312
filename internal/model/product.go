package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	SKU          string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Category     string    `gorm:"type:varchar(100);index" json:"category"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	MinimumStock int64     `gorm:"not null;default:0" json:"minimum_stock"`
	Price        int64     `gorm:"not null;default:0" json:"price"` // minor currency units
	ImageURL     *string   `gorm:"type:text" json:"image_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"created_by"`
	UpdatedBy string    `gorm:"type:varchar(255)" json:"updated_by"`
}

// BeforeCreate assigns the UUID when the caller has not.
func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// ProductInput is the body accepted by create.
type ProductInput struct {
	Name         string  `json:"name" validate:"required"`
	SKU          string  `json:"sku" validate:"required,max=50"`
	Category     string  `json:"category" validate:"max=100"`
	Description  *string `json:"description"`
	MinimumStock int64   `json:"minimum_stock" validate:"gte=0"`
	Price        int64   `json:"price" validate:"gte=0"`
	ImageURL     *string `json:"image_url" validate:"omitnil,omitempty,url"`
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name         *string `json:"name" validate:"omitnil,min=1"`
	SKU          *string `json:"sku" validate:"omitnil,min=1,max=50"`
	Category     *string `json:"category" validate:"omitnil,max=100"`
	Description  *string `json:"description"`
	MinimumStock *int64  `json:"minimum_stock" validate:"omitnil,gte=0"`
	Price        *int64  `json:"price" validate:"omitnil,gte=0"`
	ImageURL     *string `json:"image_url" validate:"omitnil,omitempty,url"`
}

// Apply merges the provided fields into p.
func (patch *ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.MinimumStock != nil {
		p.MinimumStock = *patch.MinimumStock
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
}

// ProductFilter drives catalog search and offset pagination.
type ProductFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	Page     int    `query:"page" validate:"gte=1"`
	Limit    int    `query:"limit" validate:"gte=1"`
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// OffsetOverflows reports whether Offset would wrap around int.
func (f ProductFilter) OffsetOverflows() bool {
	return f.Limit > 0 && f.Page-1 > math.MaxInt/f.Limit
}

// Page is one offset-paginated slice of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// ProductWithStock is a list-view row.
type ProductWithStock struct {
	Product
	Stock    int64 `json:"stock"`
	LowStock bool  `json:"low_stock"`
}
