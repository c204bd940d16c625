package repositories

import (
	"errors"

	"catalog/internal/models"
)

// Sentinel errors for product repositories.
var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProduct is returned when a product with the same ID already exists.
	ErrDuplicateProduct = errors.New("product already exists")
)

// ProductRepository defines the interface for product data access.
// Implementations return products in insertion order.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
