package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ErrorResponse is the body of every non-2xx product response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req model.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid create product body", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	createdProduct, err := pc.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: vErr.Error(), Errors: vErr.Fields})
			return
		}
		slog.Error("Error adding product", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Error adding product"})
		return
	}

	slog.Info("product created", slog.String("product_id", createdProduct.ID))
	c.JSON(http.StatusCreated, createdProduct)
}

// ListProducts handles the HTTP GET request for listing all products.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.ListProducts(c.Request.Context())
	if err != nil {
		slog.Error("Error fetching products", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Error fetching products"})
		return
	}

	if products == nil {
		products = []*model.Product{}
	}
	c.JSON(http.StatusOK, products)
}
