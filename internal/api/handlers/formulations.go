package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lopf/internal/api/models"
)

var formulationCatalog = []models.FormulationInfo{
	{ID: "angles", Description: "voltage-angle formulation: one angle variable per bus, flow linear in the angle difference across each branch"},
	{ID: "ptdf", Description: "power transfer distribution factor formulation: flow expressed directly as a linear combination of nodal net injections"},
	{ID: "cycles", Description: "cycle-basis formulation: independent flows per spanning-tree branch plus a cycle correction enforcing Kirchhoff's voltage law"},
	{ID: "kirchhoff", Description: "angle-free Kirchhoff formulation: cycle voltage constraints applied directly to branch flow variables"},
}

// ListFormulations serves GET /api/v1/formulations.
func ListFormulations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formulations": formulationCatalog})
}
