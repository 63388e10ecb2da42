package services

import (
	"sort"
	"strings"

	"techstore/internal/models"
	"techstore/internal/repositories"
)

// Sort keys recognized by ListProducts.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
)

// ListFilters narrows and orders a product listing. Zero values mean
// "no filtering" / "store order".
type ListFilters struct {
	Search   string
	Category string
	Sort     string
}

// CatalogService derives read-only views over the product repository. It
// never mutates the store.
type CatalogService struct {
	repo repositories.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListProducts returns the products matching the filters. Search matches
// case-insensitively against name or description, category matches exactly.
// Without a sort key the result keeps store (insertion) order. An empty
// result is not an error.
func (s *CatalogService) ListProducts(filters ListFilters) ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Product, 0, len(products))
	needle := strings.ToLower(filters.Search)
	for _, p := range products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		filtered = append(filtered, p)
	}

	switch filters.Sort {
	case SortNewest:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].LastUpdated.After(filtered[j].LastUpdated)
		})
	case SortPriceLow:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price < filtered[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price > filtered[j].Price
		})
	case SortRating:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Rating > filtered[j].Rating
		})
	}

	return filtered, nil
}

// GetProductBySlug retrieves a single product by its slug.
func (s *CatalogService) GetProductBySlug(slug string) (*models.Product, error) {
	return s.repo.GetBySlug(slug)
}

// Categories returns the distinct category values present in the store, in
// first-seen order.
func (s *CatalogService) Categories() ([]string, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories, nil
}

// Metadata builds the meta block for a listing. The total counts the supplied
// (possibly filtered) list, while categories always cover the whole store.
func (s *CatalogService) Metadata(list []models.Product) (*models.Meta, error) {
	categories, err := s.Categories()
	if err != nil {
		return nil, err
	}
	return &models.Meta{
		Total:      len(list),
		Categories: categories,
	}, nil
}

// RelatedProducts returns up to limit products sharing the given product's
// category, excluding the product itself, in store order. A non-positive
// limit defaults to 3.
func (s *CatalogService) RelatedProducts(product *models.Product, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 3
	}

	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	related := make([]models.Product, 0, limit)
	for _, p := range products {
		if p.ID == product.ID || p.Category != product.Category {
			continue
		}
		related = append(related, p)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// Stats computes the dashboard aggregates: product count, how many products
// are low on stock (inventory below 5), and total inventory value.
func (s *CatalogService) Stats() (*models.Stats, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{TotalProducts: len(products)}
	for _, p := range products {
		if p.Inventory < 5 {
			stats.LowStock++
		}
		stats.TotalValue += p.Price * float64(p.Inventory)
	}
	return stats, nil
}
