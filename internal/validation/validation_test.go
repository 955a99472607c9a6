package validation_test

import (
	"errors"
	"testing"

	"productapi/internal/models"
	"productapi/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidProduct(t *testing.T) {
	v := validation.New()
	err := v.Struct(models.Product{Name: "iPhone 13", Description: "Latest Apple smartphone with A15 chip", Price: 999.99})
	assert.NoError(t, err)
}

func TestValidator_ProductRules(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		product models.Product
		field   string
		message string
	}{
		{"blank name", models.Product{Name: "   ", Description: "d", Price: 1}, "name", "Product name is required"},
		{"empty description", models.Product{Name: "n", Description: "", Price: 1}, "description", "Description is required"},
		{"zero price", models.Product{Name: "n", Description: "d", Price: 0}, "price", "Price must be positive"},
		{"negative price", models.Product{Name: "n", Description: "d", Price: -3.5}, "price", "Price must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.product)
			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.message, verr.Fields[0].Message)
			assert.Equal(t, tt.message, verr.Map()[tt.field])
		})
	}
}

func TestValidator_ReportsEveryField(t *testing.T) {
	v := validation.New()
	err := v.Struct(models.Product{})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"name":        "Product name is required",
		"description": "Description is required",
		"price":       "Price must be positive",
	}, verr.Map())
	assert.Contains(t, verr.Error(), "validation failed")
}

func TestValidator_FallbackMessage(t *testing.T) {
	v := validation.New()
	err := v.Struct(models.User{Username: "ab", Email: "not-an-email", Password: "secret1"})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	fields := verr.Map()
	assert.Equal(t, "Field 'username' failed on the 'min' tag", fields["username"])
	assert.Equal(t, "Field 'email' failed on the 'email' tag", fields["email"])
	assert.NotContains(t, fields, "password")
}
