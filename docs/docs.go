// Package docs serves the OpenAPI description of the marketplace API and the
// Swagger UI that renders it.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SpecPath is where the OpenAPI document is served
const SpecPath = "/openapi.yaml"

//go:embed openapi.yaml
var spec []byte

// Spec returns the embedded OpenAPI document
func Spec() []byte {
	return spec
}

// Register mounts the OpenAPI document and the Swagger UI at /swagger/index.html
func Register(engine *gin.Engine) {
	engine.GET(SpecPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", spec)
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(SpecPath),
		ginSwagger.DocExpansion("list"),
		ginSwagger.PersistAuthorization(true),
	))
}
