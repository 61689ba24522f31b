package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/paxcalc-backend/internal/middleware"
	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/response"
	"github.com/stemsi/paxcalc-backend/internal/service"
	"github.com/stemsi/paxcalc-backend/internal/validator"
)

// CalculatorHandler handles lap time conversions.
type CalculatorHandler struct {
	calculatorService *service.CalculatorService
}

// NewCalculatorHandler creates a new CalculatorHandler.
func NewCalculatorHandler(calculatorService *service.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{calculatorService: calculatorService}
}

// Calculate godoc
// POST /api/v1/calculate
// Converts a time between two classes and remembers it for the client.
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	var req model.CalculateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	calc, err := h.calculatorService.Calculate(c.Request.Context(), model.CalculateInput{
		ClientID:  middleware.GetClientID(c),
		Year:      req.Year,
		IndexType: model.IndexType(req.IndexType),
		Time:      req.Time,
		FromClass: req.FromClass,
		ToClass:   req.ToClass,
		Record:    true,
	})
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"calculation": calc})
}

// LastUsed godoc
// GET /api/v1/calculate/last
// Restores the client's previous inputs and result.
func (h *CalculatorHandler) LastUsed(c *gin.Context) {
	lu, err := h.calculatorService.LastUsed(c.Request.Context(), middleware.GetClientID(c))
	if errors.Is(err, service.ErrNoLastUsed) {
		response.Fail(c, http.StatusNotFound, response.ErrNoLastUsed)
		return
	}
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"last_used": lu})
}

// RecentCalculations godoc
// GET /api/v1/admin/calculations?limit=50
func (h *CalculatorHandler) RecentCalculations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.calculatorService.RecentCalculations(c.Request.Context(), limit)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"calculations": records})
}
