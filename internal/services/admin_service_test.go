package services_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"techstore/internal/auth"
	"techstore/internal/models"
	"techstore/internal/repositories"
	"techstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const adminToken = "test-admin-token"

// MockEventPublisher is a mock implementation of services.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductEvent(event string, payload map[string]interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func newAdminService(repo repositories.ProductRepository, publisher services.EventPublisher) *services.AdminService {
	return services.NewAdminService(repo, auth.NewStaticVerifier(adminToken), publisher)
}

func validInput() models.ProductInput {
	return models.ProductInput{
		Name:      strPtr("Galaxy Tab S9"),
		Price:     floatPtr(74999),
		Category:  strPtr("Tablets"),
		Inventory: intPtr(12),
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "macbook-pro", services.Slugify("MacBook Pro"))
	assert.Equal(t, "iphone-15-pro", services.Slugify("iPhone 15 Pro"))
	assert.Equal(t, "a-b", services.Slugify("  A   b  "))
}

func TestAdminService_CreateProduct(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	publisher := new(MockEventPublisher)
	publisher.On("PublishProductEvent", "product.created", mock.Anything).Return(nil).Once()
	service := newAdminService(repo, publisher)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "galaxy-tab-s9", created.Slug)
	assert.Equal(t, 74999.0, created.Price)
	assert.Equal(t, 12, created.Inventory)
	assert.False(t, created.LastUpdated.IsZero())
	// Server-side defaults.
	assert.Equal(t, 4.0, created.Rating)
	assert.Equal(t, 0, created.Reviews)

	// Round trip: the stored record equals the returned one.
	stored, err := repo.GetBySlug("galaxy-tab-s9")
	assert.NoError(t, err)
	assert.Equal(t, created, stored)

	products, _ := repo.GetAll()
	assert.Len(t, products, 1)
	publisher.AssertExpectations(t)
}

func TestAdminService_CreateProduct_DefaultsInventoryToZero(t *testing.T) {
	service := newAdminService(repositories.NewMemoryProductRepository(), nil)

	input := validInput()
	input.Inventory = nil
	created, err := service.CreateProduct(adminToken, input)
	assert.NoError(t, err)
	assert.Equal(t, 0, created.Inventory)
}

func TestAdminService_CreateProduct_ZeroPriceIsValid(t *testing.T) {
	service := newAdminService(repositories.NewMemoryProductRepository(), nil)

	input := validInput()
	input.Price = floatPtr(0)
	created, err := service.CreateProduct(adminToken, input)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, created.Price)
}

func TestAdminService_CreateProduct_ValidationFailure(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	service := newAdminService(repo, nil)

	input := models.ProductInput{
		Name:      strPtr("X"),
		Price:     floatPtr(-5),
		Inventory: intPtr(-1),
	}
	created, err := service.CreateProduct(adminToken, input)
	assert.Nil(t, created)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Details, "Name must be at least 2 characters")
	assert.Contains(t, validationErr.Details, "Price must be positive")
	assert.Contains(t, validationErr.Details, "Category is required")
	assert.Contains(t, validationErr.Details, "Inventory cannot be negative")

	// No partial mutation occurred.
	products, _ := repo.GetAll()
	assert.Empty(t, products)
}

func TestAdminService_CreateProduct_DescriptionTooLong(t *testing.T) {
	service := newAdminService(repositories.NewMemoryProductRepository(), nil)

	input := validInput()
	input.Description = strPtr(strings.Repeat("a", 501))
	created, err := service.CreateProduct(adminToken, input)
	assert.Nil(t, created)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Details, "Description must be at most 500 characters")
}

func TestAdminService_CreateProduct_DuplicateSlugConflict(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	service := newAdminService(repo, nil)

	_, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)

	// Same name, different casing: the derived slug collides.
	input := validInput()
	input.Name = strPtr("GALAXY TAB S9")
	created, err := service.CreateProduct(adminToken, input)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, repositories.ErrDuplicateSlug)

	products, _ := repo.GetAll()
	assert.Len(t, products, 1)
}

func TestAdminService_UpdateProduct_MergesPatchAndPreservesIdentity(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	publisher := new(MockEventPublisher)
	publisher.On("PublishProductEvent", mock.Anything, mock.Anything).Return(nil)
	service := newAdminService(repo, publisher)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)

	updated, err := service.UpdateProduct(adminToken, created.ID, models.ProductInput{
		Inventory: intPtr(3),
	})
	assert.NoError(t, err)
	// Patched field applied, everything else untouched.
	assert.Equal(t, 3, updated.Inventory)
	assert.Equal(t, created.Price, updated.Price)
	assert.Equal(t, created.Name, updated.Name)
	// Identity is immutable.
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.False(t, updated.LastUpdated.Before(created.LastUpdated))

	// A name patch changes the name but never the slug.
	updated, err = service.UpdateProduct(adminToken, created.ID, models.ProductInput{
		Name: strPtr("Galaxy Tab S9 Ultra"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Galaxy Tab S9 Ultra", updated.Name)
	assert.Equal(t, "galaxy-tab-s9", updated.Slug)
}

func TestAdminService_UpdateProduct_ValidatesMergedResult(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	service := newAdminService(repo, nil)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)

	updated, err := service.UpdateProduct(adminToken, created.ID, models.ProductInput{
		Price: floatPtr(-100),
	})
	assert.Nil(t, updated)
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// The failed update left the record unchanged.
	stored, _ := repo.GetByID(created.ID)
	assert.Equal(t, created, stored)
}

func TestAdminService_UpdateProduct_NotFound(t *testing.T) {
	service := newAdminService(repositories.NewMemoryProductRepository(), nil)

	updated, err := service.UpdateProduct(adminToken, "no-such-id", models.ProductInput{
		Inventory: intPtr(1),
	})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestAdminService_DeleteProduct(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	publisher := new(MockEventPublisher)
	publisher.On("PublishProductEvent", mock.Anything, mock.Anything).Return(nil)
	service := newAdminService(repo, publisher)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)

	removed, err := service.DeleteProduct(adminToken, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	products, _ := repo.GetAll()
	assert.Empty(t, products)
	publisher.AssertCalled(t, "PublishProductEvent", "product.deleted", mock.Anything)
}

func TestAdminService_DeleteProduct_NotFound(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	service := newAdminService(repo, nil)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)

	removed, err := service.DeleteProduct(adminToken, "no-such-id")
	assert.Nil(t, removed)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	// The store is untouched.
	products, _ := repo.GetAll()
	assert.Len(t, products, 1)
	assert.Equal(t, created.ID, products[0].ID)
}

func TestAdminService_UnauthorizedMutationsLeaveStoreUntouched(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	publisher := new(MockEventPublisher)
	// Only the authorized seed create may publish.
	publisher.On("PublishProductEvent", "product.created", mock.Anything).Return(nil).Once()
	service := newAdminService(repo, publisher)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)
	before, _ := repo.GetAll()

	// Even an invalid payload reports Unauthorized, never validation errors.
	invalid := models.ProductInput{Name: strPtr("X"), Price: floatPtr(-1)}
	for _, token := range []string{"", "wrong-token"} {
		_, err = service.CreateProduct(token, invalid)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		var validationErr *services.ValidationError
		assert.False(t, errors.As(err, &validationErr))

		_, err = service.UpdateProduct(token, created.ID, invalid)
		assert.ErrorIs(t, err, services.ErrUnauthorized)

		_, err = service.DeleteProduct(token, created.ID)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	}

	after, _ := repo.GetAll()
	assert.Equal(t, before, after)
	// No unauthorized attempt published anything beyond the seed create.
	publisher.AssertNumberOfCalls(t, "PublishProductEvent", 1)
}

func TestAdminService_ConcurrentPatchesPreserveEachField(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	service := newAdminService(repo, nil)

	created, err := service.CreateProduct(adminToken, validInput())
	assert.NoError(t, err)

	// One goroutine patches inventory once while several others hammer the
	// price; the inventory patch must survive no matter how the updates
	// interleave.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, patchErr := service.UpdateProduct(adminToken, created.ID, models.ProductInput{
			Inventory: intPtr(3),
		})
		assert.NoError(t, patchErr)
	}()
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, patchErr := service.UpdateProduct(adminToken, created.ID, models.ProductInput{
					Price: floatPtr(float64(1000 + g*100 + i)),
				})
				assert.NoError(t, patchErr)
			}
		}(g)
	}
	wg.Wait()

	stored, err := repo.GetByID(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, stored.Inventory)
	assert.Equal(t, created.Slug, stored.Slug)
}

// Scenario from the storefront demo: seed two products, search, filter,
// patch inventory, delete.
func TestAdminService_StorefrontScenario(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	service := newAdminService(repo, nil)
	catalog := services.NewCatalogService(repo)

	macbook, err := service.CreateProduct(adminToken, models.ProductInput{
		Name:      strPtr("MacBook Pro"),
		Price:     floatPtr(249999),
		Category:  strPtr("Laptops"),
		Inventory: intPtr(15),
	})
	assert.NoError(t, err)

	iphone, err := service.CreateProduct(adminToken, models.ProductInput{
		Name:      strPtr("iPhone 15 Pro"),
		Price:     floatPtr(134900),
		Category:  strPtr("Phones"),
		Inventory: intPtr(8),
	})
	assert.NoError(t, err)

	results, err := catalog.ListProducts(services.ListFilters{Search: "iphone"})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, iphone.ID, results[0].ID)

	results, err = catalog.ListProducts(services.ListFilters{Category: "Laptops"})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, macbook.ID, results[0].ID)

	updated, err := service.UpdateProduct(adminToken, iphone.ID, models.ProductInput{
		Inventory: intPtr(3),
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, updated.Inventory)
	assert.Equal(t, 134900.0, updated.Price)

	_, err = service.DeleteProduct(adminToken, macbook.ID)
	assert.NoError(t, err)

	remaining, err := catalog.ListProducts(services.ListFilters{})
	assert.NoError(t, err)
	assert.Len(t, remaining, 1)
}
