package services

import (
	"context"
	"fmt"
	"log"

	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/validation"
)

// Routing keys for product events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// ProductInput carries the client-supplied fields of a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ProductEvent is the payload published after a product mutation.
type ProductEvent struct {
	Event   string         `json:"event"`
	Product models.Product `json:"product"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validation.New(),
		publisher: publisher,
	}
}

// ListProducts retrieves all products.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d products", len(products))
	return products, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProduct validates the input and stores it as a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	if err := s.validator.Struct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.publish(EventProductCreated, *product)
	return product, nil
}

// UpdateProduct replaces every field of an existing product. The product must
// exist before the input is validated.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	if err := s.validator.Struct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	s.publish(EventProductUpdated, *product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(EventProductDeleted, models.Product{ID: id})
	return nil
}

// publish never fails the caller; the write has already been committed.
func (s *ProductService) publish(event string, product models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event, ProductEvent{Event: event, Product: product}); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}
