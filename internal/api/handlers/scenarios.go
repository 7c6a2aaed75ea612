package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lopf/internal/api/models"
	"lopf/internal/scenario"
)

// ListScenarios serves GET /api/v1/scenarios: the set of bundled example
// networks that scenario_name can select in POST /api/v1/lopf.
func ListScenarios(c *gin.Context) {
	all := scenario.All()
	out := make([]models.ScenarioInfo, 0, len(all))
	for _, b := range all {
		out = append(out, models.ScenarioInfo{Name: b.Name, Description: b.Description, Formulation: string(b.Formulation)})
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}
