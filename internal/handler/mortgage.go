package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// MortgageHandler exposes the payment calculator directly, outside the chat
// flow.
type MortgageHandler struct{}

// NewMortgageHandler creates a new mortgage handler
func NewMortgageHandler() *MortgageHandler {
	return &MortgageHandler{}
}

// Calculate handles POST /api/v1/mortgage
func (h *MortgageHandler) Calculate(c *gin.Context) {
	var req model.Entities
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	req.Normalize()

	view := req.Mortgage()
	if missing := service.MissingMortgageInputs(view); len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Missing required inputs",
			"missing_fields": missing,
		})
		return
	}

	inputs := service.MortgageInputsFromEntities(view)
	result := model.MortgageResult{
		Inputs:    inputs,
		Breakdown: service.CalculateMortgage(inputs),
		Scenarios: service.CompareScenarios(inputs, view.Rates, view.YearsOptions),
	}

	c.JSON(http.StatusOK, result)
}
