package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
)

func InitRouter(conf *config.Config, server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(conf.CORS.AllowedOrigin),
		middleware.Metrics(),
	)

	server.GET("/ping", ctr.Ping)
	server.GET("/health", ctr.Health)

	// Product endpoints
	products := server.Group("/api/products")
	{
		products.POST("", productCtr.CreateProduct)
		products.GET("", productCtr.ListProducts)
	}

	// Registered after Use so unmatched requests still pass through the middleware.
	server.NoRoute(ctr.NotFound)

	return server
}
