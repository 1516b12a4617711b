// Package apidoc embeds the OpenAPI document of the HTTP API.
package apidoc

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var document []byte

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// Handler serves the raw document.
func Handler(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", document)
}

// RegisterRoutes mounts GET /openapi.yaml.
func RegisterRoutes(r gin.IRouter) {
	r.GET("/openapi.yaml", Handler)
}
