package services

import (
	"fmt"
	"sync"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventPublisher delivers product events to downstream consumers.
type EventPublisher interface {
	PublishJSON(payload interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	publisher EventPublisher
	log       *zerolog.Logger
	now       func() time.Time

	// mu serializes create, update and delete so a lookup and the write that
	// follows it are never interleaved with another mutation.
	mu sync.Mutex
}

// NewProductService creates a new ProductService. publisher may be nil, in which
// case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, log *zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validation.New(),
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// GetAllProducts retrieves all products in insertion order.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates form and appends a new product with a generated ID.
// imagePath is the stored upload, or empty when no image was accepted.
func (s *ProductService) CreateProduct(form models.ProductForm, imagePath string) (*models.Product, error) {
	form.ProductImage = models.FormValue(imagePath)
	fields, err := s.validator.ValidateCreate(form)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:           uuid.New().String(),
		Name:         fields.Name,
		Price:        fields.Price,
		Details:      fields.Details,
		Featured:     fields.Featured,
		ProductImage: fields.ProductImage,
	}

	s.mu.Lock()
	err = s.repo.Create(product)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(models.ProductCreated, product.ID, product)
	return product, nil
}

// UpdateProduct overwrites name, details, price and featured of an existing product.
// The image is replaced only when imagePath is non-empty.
func (s *ProductService) UpdateProduct(id string, form models.ProductForm, imagePath string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	fields, err := s.validator.ValidateUpdate(form)
	if err != nil {
		return nil, err
	}

	product.Name = fields.Name
	product.Details = fields.Details
	product.Price = fields.Price
	product.Featured = fields.Featured
	if imagePath != "" {
		product.ProductImage = imagePath
	}

	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.publish(models.ProductUpdated, product.ID, product)
	return product, nil
}

// DeleteProduct removes a product and returns the remaining catalog.
func (s *ProductService) DeleteProduct(id string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(id); err != nil {
		return nil, err
	}

	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list products after deleting %s: %w", id, err)
	}

	s.publish(models.ProductDeleted, id, nil)
	return products, nil
}

func (s *ProductService) publish(eventType, id string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishJSON(event); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Str("product_id", id).Msg("failed to publish product event")
	}
}
