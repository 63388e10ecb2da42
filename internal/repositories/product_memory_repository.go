package repositories

import (
	"sync"
	"time"

	"techstore/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It keeps an ordered list of IDs alongside the keyed records so GetAll
// preserves insertion order, plus a slug index for the external lookup key.
type MemoryProductRepository struct {
	order    []string
	products map[string]models.Product
	slugToID map[string]string
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new empty MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
		slugToID: make(map[string]string),
	}
}

// GetAll returns all products in insertion order.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// GetBySlug returns a product by its slug.
func (r *MemoryProductRepository) GetBySlug(slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.slugToID[slug]
	if !ok {
		return nil, ErrProductNotFound
	}
	product := r.products[id]
	return &product, nil
}

// Create adds a new product, assigning a fresh ID when none is set. The slug
// uniqueness check and the insert share one lock acquisition.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.slugToID[product.Slug]; taken {
		return ErrDuplicateSlug
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}

	r.products[product.ID] = *product
	r.slugToID[product.Slug] = product.ID
	r.order = append(r.order, product.ID)
	return nil
}

// Update replaces an existing product. The caller is responsible for keeping
// ID and slug unchanged; the stored slug index is preserved either way.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return ErrProductNotFound
	}
	product.Slug = existing.Slug
	product.CreatedAt = existing.CreatedAt
	r.products[product.ID] = *product
	return nil
}

// UpdateWith applies mutate to the current record under the write lock, so
// the lookup, the caller's merge and the write are one atomic step.
func (r *MemoryProductRepository) UpdateWith(id string, mutate func(*models.Product) error) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	updated := existing
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.Slug = existing.Slug
	updated.CreatedAt = existing.CreatedAt
	r.products[id] = updated
	return &updated, nil
}

// Delete removes a product by its ID and returns the removed record.
func (r *MemoryProductRepository) Delete(id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	delete(r.products, id)
	delete(r.slugToID, product.Slug)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &product, nil
}
