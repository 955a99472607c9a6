package repositories

import (
	"context"
	"errors"

	"productapi/internal/models"
)

// ErrProductNotFound is returned when no product matches the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	// Save inserts the product when its ID is zero and assigns a new ID,
	// otherwise it replaces every column of the existing row.
	Save(ctx context.Context, product *models.Product) error
	DeleteByID(ctx context.Context, id uint) error
}
