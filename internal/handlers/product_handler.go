package handlers

import (
	"errors"
	"fmt"
	"log"

	"techstore/internal/middleware"
	"techstore/internal/models"
	"techstore/internal/repositories"
	"techstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	catalog *services.CatalogService
	admin   *services.AdminService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog *services.CatalogService, admin *services.AdminService) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		admin:   admin,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/categories", h.HandleGetCategories)
	productRoutes.Get("/stats", h.HandleGetStats)
	productRoutes.Get("/:slug", h.HandleGetProductBySlug)
	productRoutes.Get("/:slug/related", h.HandleGetRelatedProducts)
	productRoutes.Post("/", middleware.AdminToken(), h.HandleCreateProduct)
	productRoutes.Put("/:id", middleware.AdminToken(), h.HandleUpdateProduct)
	productRoutes.Delete("/:id", middleware.AdminToken(), h.HandleDeleteProduct)
	// Anything that slipped past the verb-specific routes above.
	productRoutes.All("/", h.HandleMethodNotAllowed)
	productRoutes.All("/:id", h.HandleMethodNotAllowed)
}

// HandleListProducts returns the (optionally searched, filtered and sorted)
// product listing together with its metadata. A ?slug= query short-circuits
// to a single-product lookup, mirroring the original storefront API.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	if slug := c.Query("slug"); slug != "" {
		return h.respondWithProductBySlug(c, slug)
	}

	filters := services.ListFilters{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	products, err := h.catalog.ListProducts(filters)
	if err != nil {
		return h.respondWithError(c, err)
	}
	meta, err := h.catalog.Metadata(products)
	if err != nil {
		return h.respondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"meta":    meta,
	})
}

// HandleGetProductBySlug returns a single product by its slug.
func (h *ProductHandler) HandleGetProductBySlug(c *fiber.Ctx) error {
	return h.respondWithProductBySlug(c, c.Params("slug"))
}

func (h *ProductHandler) respondWithProductBySlug(c *fiber.Ctx, slug string) error {
	product, err := h.catalog.GetProductBySlug(slug)
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleGetRelatedProducts returns products sharing a category with the one
// identified by the slug, capped at the limit query parameter (default 3).
func (h *ProductHandler) HandleGetRelatedProducts(c *fiber.Ctx) error {
	product, err := h.catalog.GetProductBySlug(c.Params("slug"))
	if err != nil {
		return h.respondWithError(c, err)
	}

	related, err := h.catalog.RelatedProducts(product, c.QueryInt("limit", 3))
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    related,
	})
}

// HandleGetCategories returns the distinct category values in the store.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.Categories()
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
	})
}

// HandleGetStats returns the dashboard aggregates.
func (h *ProductHandler) HandleGetStats(c *fiber.Ctx) error {
	stats, err := h.catalog.Stats()
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// HandleCreateProduct creates a new product through the mutation gateway.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	product, err := h.admin.CreateProduct(adminToken(c), input)
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleUpdateProduct patches an existing product through the mutation
// gateway. ID and slug are immutable.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductInput
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing update product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	product, err := h.admin.UpdateProduct(adminToken(c), c.Params("id"), patch)
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleDeleteProduct removes a product and returns the removed record.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	product, err := h.admin.DeleteProduct(adminToken(c), c.Params("id"))
	if err != nil {
		return h.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleMethodNotAllowed rejects verbs the product API does not support.
func (h *ProductHandler) HandleMethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
		"error": fmt.Sprintf("Method %s not allowed", c.Method()),
	})
}

// respondWithError maps a domain error onto the error envelope and transport
// status.
func (h *ProductHandler) respondWithError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": validationErr.Details,
		})
	case errors.Is(err, repositories.ErrDuplicateSlug):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Product already exists",
		})
	case errors.Is(err, repositories.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	default:
		log.Printf("Unexpected error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
}

func adminToken(c *fiber.Ctx) string {
	token, _ := c.Locals(middleware.AdminTokenKey).(string)
	return token
}
