package services

import (
	"log"
	"regexp"
	"strings"
	"time"

	"techstore/internal/auth"
	"techstore/internal/models"
	"techstore/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// EventPublisher publishes catalog change events. Publishing is best-effort:
// the gateway logs failures but never fails a mutation over them.
type EventPublisher interface {
	PublishProductEvent(event string, payload map[string]interface{}) error
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify derives a product's URL slug from its name: lowercased, whitespace
// runs collapsed to single hyphens.
func Slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// AdminService is the validated, authorized write path into the product
// store. Every mutating call carries the caller's bearer token; an invalid
// credential fails before any validation or mutation happens.
type AdminService struct {
	repo      repositories.ProductRepository
	verifier  auth.TokenVerifier
	validate  *validator.Validate
	publisher EventPublisher // may be nil
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo repositories.ProductRepository, verifier auth.TokenVerifier, publisher EventPublisher) *AdminService {
	return &AdminService{
		repo:      repo,
		verifier:  verifier,
		validate:  validator.New(),
		publisher: publisher,
	}
}

// validateInput runs the struct validation and translates field failures into
// the wire-level violation messages.
func (s *AdminService) validateInput(input *models.ProductInput) []string {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Field() {
		case "Name":
			violations = append(violations, "Name must be at least 2 characters")
		case "Price":
			violations = append(violations, "Price must be positive")
		case "Category":
			violations = append(violations, "Category is required")
		case "Inventory":
			violations = append(violations, "Inventory cannot be negative")
		case "Rating":
			violations = append(violations, "Rating must be between 0 and 5")
		case "Reviews":
			violations = append(violations, "Reviews cannot be negative")
		case "Description":
			violations = append(violations, "Description must be at most 500 characters")
		default:
			violations = append(violations, e.Error())
		}
	}
	return violations
}

// CreateProduct validates the candidate and inserts it. The slug is derived
// from the name and must be unique; missing inventory defaults to 0, missing
// rating to 4.0 and missing reviews to 0.
func (s *AdminService) CreateProduct(token string, input models.ProductInput) (*models.Product, error) {
	if !s.verifier.Verify(token) {
		return nil, ErrUnauthorized
	}

	if violations := s.validateInput(&input); len(violations) > 0 {
		return nil, &ValidationError{Details: violations}
	}

	now := time.Now()
	product := models.Product{
		Name:        *input.Name,
		Description: stringOr(input.Description, ""),
		Price:       *input.Price,
		Category:    *input.Category,
		Inventory:   intOr(input.Inventory, 0),
		Slug:        Slugify(*input.Name),
		Rating:      floatOr(input.Rating, 4.0),
		Reviews:     intOr(input.Reviews, 0),
		LastUpdated: now,
		CreatedAt:   now,
	}

	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", &product)
	return &product, nil
}

// UpdateProduct merges the patch over the existing record, validates the
// merged result and persists it. ID and slug are never altered by a patch.
// The merge and validation run inside the store's mutation boundary via
// UpdateWith, so concurrent patches to the same product never lose each
// other's fields.
func (s *AdminService) UpdateProduct(token, id string, patch models.ProductInput) (*models.Product, error) {
	if !s.verifier.Verify(token) {
		return nil, ErrUnauthorized
	}

	updated, err := s.repo.UpdateWith(id, func(product *models.Product) error {
		merged := models.ProductInput{
			Name:        &product.Name,
			Description: &product.Description,
			Price:       &product.Price,
			Category:    &product.Category,
			Inventory:   &product.Inventory,
			Rating:      &product.Rating,
			Reviews:     &product.Reviews,
		}
		if patch.Name != nil {
			merged.Name = patch.Name
		}
		if patch.Description != nil {
			merged.Description = patch.Description
		}
		if patch.Price != nil {
			merged.Price = patch.Price
		}
		if patch.Category != nil {
			merged.Category = patch.Category
		}
		if patch.Inventory != nil {
			merged.Inventory = patch.Inventory
		}
		if patch.Rating != nil {
			merged.Rating = patch.Rating
		}
		if patch.Reviews != nil {
			merged.Reviews = patch.Reviews
		}

		if violations := s.validateInput(&merged); len(violations) > 0 {
			return &ValidationError{Details: violations}
		}

		product.Name = *merged.Name
		product.Description = *merged.Description
		product.Price = *merged.Price
		product.Category = *merged.Category
		product.Inventory = *merged.Inventory
		product.Rating = *merged.Rating
		product.Reviews = *merged.Reviews
		product.LastUpdated = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", updated)
	return updated, nil
}

// DeleteProduct removes a product by its ID and returns the removed record.
func (s *AdminService) DeleteProduct(token, id string) (*models.Product, error) {
	if !s.verifier.Verify(token) {
		return nil, ErrUnauthorized
	}

	product, err := s.repo.Delete(id)
	if err != nil {
		return nil, err
	}

	s.publishEvent("product.deleted", product)
	return product, nil
}

func (s *AdminService) publishEvent(event string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"productID": product.ID,
		"slug":      product.Slug,
		"name":      product.Name,
	}
	if err := s.publisher.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event for product %s: %v", event, product.ID, err)
	}
}

func stringOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
