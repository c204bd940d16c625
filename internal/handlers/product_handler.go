package handlers

import (
	"errors"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProductNotFoundMessage is the plain-text body of every 404 for a product id.
const ProductNotFoundMessage = "Product with given id was not found"

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	log     *zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes. upload runs before the create
// and update handlers.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, upload fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", upload, h.HandleCreateProduct)
	productRoutes.Put("/:id", upload, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns the whole catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return h.respondError(c, err, "retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return h.respondError(c, err, "retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product from the form fields and the uploaded image.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	form, err := parseProductForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(validation.Malformed(err))
	}

	product, err := h.service.CreateProduct(form, middleware.UploadedImage(c))
	if err != nil {
		return h.respondError(c, err, "create product")
	}

	h.log.Info().Str("product_id", product.ID).Msg("product created")
	return c.JSON(product)
}

// HandleUpdateProduct overwrites a product. Without a new image the old one is kept.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	form, err := parseProductForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(validation.Malformed(err))
	}

	product, err := h.service.UpdateProduct(c.Params("id"), form, middleware.UploadedImage(c))
	if err != nil {
		return h.respondError(c, err, "update product")
	}

	h.log.Info().Str("product_id", product.ID).Msg("product updated")
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and returns the remaining catalog.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	products, err := h.service.DeleteProduct(id)
	if err != nil {
		return h.respondError(c, err, "delete product")
	}

	h.log.Info().Str("product_id", id).Msg("product deleted")
	return c.JSON(products)
}

func parseProductForm(c *fiber.Ctx) (models.ProductForm, error) {
	var form models.ProductForm
	if len(c.Body()) == 0 {
		return form, nil
	}
	err := c.BodyParser(&form)
	return form, err
}

func (h *ProductHandler) respondError(c *fiber.Ctx, err error, operation string) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).SendString(ProductNotFoundMessage)
	}

	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(validationErr)
	}

	h.log.Error().Err(err).Str("operation", operation).Msg("product request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not " + operation,
		"error":   err.Error(),
	})
}
