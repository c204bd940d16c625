package repositories

import (
	"fmt"
	"sync"

	"catalog/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Products are kept in a slice so reads observe insertion order.
type MemoryProductRepository struct {
	products []models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make([]models.Product, 0),
	}
}

// GetAll returns all products.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, len(r.products))
	copy(productList, r.products)
	return productList, nil
}

// GetByID returns the first product with the given ID.
func (r *MemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	product := r.products[i]
	return &product, nil
}

// Create appends a new product.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if r.indexOf(product.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateProduct, product.ID)
	}
	r.products = append(r.products, *product)
	return nil
}

// Update replaces an existing product in place.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, product.ID)
	}
	r.products[i] = *product
	return nil
}

// Delete removes a product by its ID, keeping the order of the rest.
func (r *MemoryProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

// indexOf must be called with mu held.
func (r *MemoryProductRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}
