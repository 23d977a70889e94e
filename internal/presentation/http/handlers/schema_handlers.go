package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
)

// GetFormSchema handles GET /api/forms/:form/schema. The browser builds its
// client-side checks from this description.
func GetFormSchema(c *gin.Context) {
	schema, err := forms.Describe(forms.SchemaID(c.Param("form")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, schema)
}
