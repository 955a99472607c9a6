package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"productapi/internal/repositories"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes on router. writeMiddleware is
// applied to the mutating routes only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, writeMiddleware ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", withMiddleware(writeMiddleware, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", withMiddleware(writeMiddleware, h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", withMiddleware(writeMiddleware, h.HandleDeleteProduct)...)
}

func withMiddleware(middleware []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(middleware)+1)
	chain = append(chain, middleware...)
	return append(chain, handler)
}

// HandleGetProducts returns every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	log.Println("Fetching all products")
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return respondInternal(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return respondNotFound(c, id)
		}
		return respondInternal(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product and returns it with its new ID.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		if ok, rerr := respondValidation(c, err); ok {
			return rerr
		}
		return respondInternal(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces every field of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, input)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return respondNotFound(c, id)
		}
		if ok, rerr := respondValidation(c, err); ok {
			return rerr
		}
		return respondInternal(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and responds with no content.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return respondNotFound(c, id)
		}
		return respondInternal(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// productID parses the :id route parameter. Only canonical decimal IDs are
// accepted, so "+2" and "002" are rejected rather than aliased to 2. IDs are
// assigned from 1 and 0 is reported as not found.
func productID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || strconv.FormatUint(id, 10) != raw {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid product ID '%s'", raw))
	}
	if id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Product with ID 0 not found")
	}
	return uint(id), nil
}

func respondNotFound(c *fiber.Ctx, id uint) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": fmt.Sprintf("Product with ID %d not found", id),
	})
}
