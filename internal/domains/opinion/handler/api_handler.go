package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/domains/opinion/service"
	"what-to-watch/internal/shared/response"
)

const (
	msgMissingFields = "Required fields are missing from the request"
	msgInvalidJSON   = "Request body must be a JSON object"
	msgFileRequired  = "file is required (multipart/form-data)"
)

// =====================================================
// API HANDLER
// =====================================================

type APIHandler struct {
	opinionService service.ServiceInterface
	importService  service.BulkImportServiceInterface
}

func NewAPIHandler(opinionService service.ServiceInterface, importService service.BulkImportServiceInterface) *APIHandler {
	return &APIHandler{
		opinionService: opinionService,
		importService:  importService,
	}
}

// parseID parses :id; anything but a positive integer is an unknown opinion.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body; an empty body counts as missing fields.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(c, response.NewInvalidAPIUsage(msgMissingFields, http.StatusBadRequest))
			return false
		}
		respondError(c, response.NewInvalidAPIUsage(msgInvalidJSON, http.StatusBadRequest))
		return false
	}
	return true
}

// GetOpinion returns a random opinion; id must still be an integer.
// GET /api/opinions/:id
func (h *APIHandler) GetOpinion(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		respondError(c, model.ErrOpinionNotFound)
		return
	}
	h.respondRandom(c)
}

// GetRandomOpinion
// GET /api/get-random-opinion
func (h *APIHandler) GetRandomOpinion(c *gin.Context) {
	h.respondRandom(c)
}

func (h *APIHandler) respondRandom(c *gin.Context) {
	opinion, err := h.opinionService.Random(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, model.OpinionEnvelope{Opinion: opinion.ToResponse()})
}

// ListOpinions
// GET /api/opinions
func (h *APIHandler) ListOpinions(c *gin.Context) {
	opinions, err := h.opinionService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, model.ToListEnvelope(opinions))
}

// CreateOpinion
// POST /api/opinions
func (h *APIHandler) CreateOpinion(c *gin.Context) {
	// Step 1: Bind request body
	var req model.CreateOpinionRequest
	if !bindJSON(c, &req) {
		return
	}

	// Step 2: Both keys must be present
	if !req.HasRequiredFields() {
		respondError(c, response.NewInvalidAPIUsage(msgMissingFields, http.StatusBadRequest))
		return
	}

	// Step 3: Call service
	opinion, err := h.opinionService.Create(c.Request.Context(), &req, service.ChannelAPI)
	if err != nil {
		respondError(c, err)
		return
	}

	// Step 4: Return success
	response.JSON(c, http.StatusCreated, model.OpinionEnvelope{Opinion: opinion.ToResponse()})
}

// UpdateOpinion applies a partial update and answers 201.
// PATCH /api/opinions/:id
func (h *APIHandler) UpdateOpinion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, model.ErrOpinionNotFound)
		return
	}

	var req model.UpdateOpinionRequest
	if !bindJSON(c, &req) {
		return
	}

	opinion, err := h.opinionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, model.OpinionEnvelope{Opinion: opinion.ToResponse()})
}

// DeleteOpinion
// DELETE /api/opinions/:id
func (h *APIHandler) DeleteOpinion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, model.ErrOpinionNotFound)
		return
	}

	if err := h.opinionService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ImportOpinions loads a CSV upload
// POST /api/opinions/import
func (h *APIHandler) ImportOpinions(c *gin.Context) {
	// 1. Parse multipart form và lấy file "file"
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.NewInvalidAPIUsage(msgFileRequired, http.StatusBadRequest))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	log.Info().
		Str("request_id", c.GetString("request_id")).
		Str("file_name", fileHeader.Filename).
		Int64("file_size", fileHeader.Size).
		Msg("Received bulk import request")

	// 2. Gọi service để xử lý import (sync)
	result, err := h.importService.Import(c.Request.Context(), file)
	if err != nil {
		// Rows before a store failure are already committed
		if result != nil {
			log.Error().
				Err(err).
				Str("request_id", c.GetString("request_id")).
				Int("total_rows", result.TotalRows).
				Int("loaded", result.Loaded).
				Msg("Bulk import aborted")
		}
		// Header problems map to 400 with the header message
		respondError(c, err)
		return
	}

	// 3. Partial imports still answer 200 with the row errors
	response.JSON(c, http.StatusOK, result)
}
