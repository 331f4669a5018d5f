package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/presentation/http/dto/response"
	"github.com/scenart/agency-api/pkg/pagination"
)

// BatchHandler handles payment batch HTTP requests
type BatchHandler struct {
	batchService *service.BatchService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batchService *service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// generateBatchRequest is the request body for a generation run
type generateBatchRequest struct {
	// Reference overrides the run date (RFC 3339 date), mainly for testing
	// and catch-up runs.
	Reference string `json:"reference"`
	Forced    bool   `json:"forced"`
	// PerformerIDs restricts the run to the listed performers.
	PerformerIDs []uuid.UUID `json:"performer_ids"`
}

// Generate runs the payment batch engine once
func (h *BatchHandler) Generate(c *gin.Context) {
	var req generateBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	input := service.GenerateBatchInput{Forced: req.Forced, PerformerIDs: req.PerformerIDs}
	if req.Reference != "" {
		ref, err := time.Parse("2006-01-02", req.Reference)
		if err != nil {
			response.BadRequest(c, "Invalid reference date, expected YYYY-MM-DD")
			return
		}
		input.Reference = ref
	}

	report, err := h.batchService.GenerateBatch(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment batch generated successfully", report)
}

// List handles listing payment batches
func (h *BatchHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{Page: page, PerPage: perPage}

	batches, pg, err := h.batchService.ListBatches(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Batches retrieved successfully",
		pagination.NewPaginatedResult(batches, pg))
}

// Get handles retrieving a single batch
func (h *BatchHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batch retrieved successfully", batch)
}
