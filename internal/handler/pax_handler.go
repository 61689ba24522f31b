package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/pax"
	"github.com/stemsi/paxcalc-backend/internal/response"
	"github.com/stemsi/paxcalc-backend/internal/service"
)

const (
	// maxIndexBody caps uploaded index documents.
	maxIndexBody = 2 << 20
	// maxTimeLength matches the max on CalculateRequest.Time.
	maxTimeLength = 32
)

// PaxHandler serves the PAX index catalog.
type PaxHandler struct {
	paxService    *service.PaxService
	exportService *service.ExportService
	log           zerolog.Logger
}

// NewPaxHandler creates a new PaxHandler.
func NewPaxHandler(paxService *service.PaxService, exportService *service.ExportService, log zerolog.Logger) *PaxHandler {
	return &PaxHandler{
		paxService:    paxService,
		exportService: exportService,
		log:           log.With().Str("component", "pax_handler").Logger(),
	}
}

// ListIndices godoc
// GET /api/v1/indices
func (h *PaxHandler) ListIndices(c *gin.Context) {
	summaries, err := h.paxService.ListIndices(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list indices failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"indices": summaries})
}

// GetIndex godoc
// GET /api/v1/indices/:year/:type
// Year may be "latest".
func (h *PaxHandler) GetIndex(c *gin.Context) {
	idx, ok := h.resolveIndex(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"index": idx})
}

// ListClasses godoc
// GET /api/v1/indices/:year/:type/classes
// Returns the active classes in display order.
func (h *PaxHandler) ListClasses(c *gin.Context) {
	idx, ok := h.resolveIndex(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"year":       idx.Year,
		"index_type": idx.IndexType,
		"classes":    pax.ActiveClasses(idx),
	})
}

// ExportConversion godoc
// GET /api/v1/indices/:year/:type/export?time=1:05.123&class=SS
// Downloads an xlsx table converting the time into every active class.
func (h *PaxHandler) ExportConversion(c *gin.Context) {
	raw := c.Query("time")
	if len(raw) > maxTimeLength {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidTime, map[string]string{"time": "time is too long"})
		return
	}
	seconds, err := pax.ParseTime(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidTime, map[string]string{"time": err.Error()})
		return
	}
	fromCode := c.Query("class")

	idx, ok := h.resolveIndex(c)
	if !ok {
		return
	}

	rows, err := h.exportService.ConversionTable(idx, seconds, fromCode)
	if err != nil {
		failService(c, err)
		return
	}

	formatted, _ := pax.FormatTime(seconds)
	from, _ := pax.FindClass(fromCode, idx)
	f, err := h.exportService.WriteWorkbook(idx, from, formatted, rows)
	if err != nil {
		h.log.Error().Err(err).Msg("build workbook failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("pax-%d-%s-%s.xlsx", idx.Year, idx.IndexType, from.Code)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("write workbook failed")
	}
}

// ValidateIndex godoc
// POST /api/v1/indices/validate
// Reports every problem in the posted index without storing it.
func (h *PaxHandler) ValidateIndex(c *gin.Context) {
	idx, ok := decodeIndex(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": h.paxService.ValidateIndex(idx)})
}

// ImportIndex godoc
// POST /api/v1/admin/indices
// Replaces the stored index for the posted year and type. Invalid indices
// are rejected with 422 and the validation report.
func (h *PaxHandler) ImportIndex(c *gin.Context) {
	idx, ok := decodeIndex(c)
	if !ok {
		return
	}

	result, err := h.paxService.ImportIndex(c.Request.Context(), idx)
	if errors.Is(err, service.ErrIndexInvalid) {
		response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrIndexInvalid, gin.H{"result": result})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int("year", idx.Year).Str("index_type", string(idx.IndexType)).Msg("import index failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"result": result,
		"index":  idx.Summary(model.IndexSourceStored),
	})
}

// DeleteIndex godoc
// DELETE /api/v1/admin/indices/:year/:type
func (h *PaxHandler) DeleteIndex(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidYear)
		return
	}
	indexType := model.IndexType(c.Param("type"))

	if err := h.paxService.DeleteIndex(c.Request.Context(), year, indexType); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"year": year, "index_type": indexType})
}

func (h *PaxHandler) resolveIndex(c *gin.Context) (*model.PaxIndex, bool) {
	year := 0
	if raw := c.Param("year"); raw != "latest" {
		var err error
		year, err = strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidYear)
			return nil, false
		}
	}

	idx, err := h.paxService.GetIndex(c.Request.Context(), year, model.IndexType(c.Param("type")))
	if err != nil {
		failService(c, err)
		return nil, false
	}
	return idx, true
}

func decodeIndex(c *gin.Context) (*model.PaxIndex, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxIndexBody)

	var idx model.PaxIndex
	if err := c.ShouldBindJSON(&idx); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"detail": err.Error()})
		return nil, false
	}
	return &idx, true
}
