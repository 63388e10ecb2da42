package repositories

import (
	"errors"

	"techstore/internal/models"
)

// ErrProductNotFound is returned when a lookup by ID or slug misses.
var ErrProductNotFound = errors.New("product not found")

// ErrDuplicateSlug is returned by Create when another product already owns the
// candidate slug. The check happens inside the store's critical section, so a
// successful Create guarantees slug uniqueness even under concurrent writers.
var ErrDuplicateSlug = errors.New("product with this slug already exists")

// ProductRepository defines the interface for product data access. GetAll
// returns products in insertion order.
//
// UpdateWith runs the whole read-merge-write of a patch inside the store's
// mutation boundary: mutate receives a copy of the current record and may
// return an error to abort without changing anything. Concurrent updates to
// the same product therefore never lose each other's fields. ID, slug and
// creation time are preserved regardless of what mutate does to them.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdateWith(id string, mutate func(*models.Product) error) (*models.Product, error)
	Delete(id string) (*models.Product, error)
}
