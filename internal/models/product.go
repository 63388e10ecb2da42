package models

import "time"

// Product represents a product in the catalog. The slug is derived from the
// name on creation and is the external lookup key; it never changes afterwards.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100)"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	Price       float64   `json:"price"`
	Category    string    `json:"category" gorm:"type:varchar(50)"`
	Inventory   int       `json:"inventory"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;type:varchar(150)"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"-" gorm:"autoCreateTime"` // keeps listing order stable in SQL stores
}

// ProductInput is the request payload for creating or patching a product.
// Fields are pointers so a patch can distinguish "not supplied" from a zero
// value; a create and a patch share the same shape, validated after merging.
type ProductInput struct {
	Name        *string  `json:"name" validate:"required,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    *string  `json:"category" validate:"required"`
	Inventory   *int     `json:"inventory" validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Reviews     *int     `json:"reviews" validate:"omitempty,gte=0"`
}

// Meta carries list metadata. Categories always reflect the unfiltered store,
// even when the list itself was filtered.
type Meta struct {
	Total      int      `json:"total"`
	Categories []string `json:"categories"`
}

// Stats is the dashboard aggregate over the whole store.
type Stats struct {
	TotalProducts int     `json:"totalProducts"`
	LowStock      int     `json:"lowStock"`
	TotalValue    float64 `json:"totalValue"`
}
