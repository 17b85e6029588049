package openapi

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

// Register serves the document as JSON and YAML.
func Register(e *echo.Echo, doc *openapi3.T) {
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc)
	})

	e.GET("/openapi.yaml", func(c echo.Context) error {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	})
}
