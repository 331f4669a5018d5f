package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/presentation/http/dto/response"
	"github.com/scenart/agency-api/pkg/pagination"
)

// RemittanceHandler handles remittance HTTP requests
type RemittanceHandler struct {
	remittanceService *service.RemittanceService
}

// NewRemittanceHandler creates a new remittance handler
func NewRemittanceHandler(remittanceService *service.RemittanceService) *RemittanceHandler {
	return &RemittanceHandler{remittanceService: remittanceService}
}

// Create builds a remittance over a set of payable receipts
func (h *RemittanceHandler) Create(c *gin.Context) {
	var input service.CreateRemittanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	remittance, err := h.remittanceService.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Remittance created successfully", remittance)
}

// List handles listing remittances
func (h *RemittanceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{Page: page, PerPage: perPage}

	remittances, pg, err := h.remittanceService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Remittances retrieved successfully",
		pagination.NewPaginatedResult(remittances, pg))
}

// Get handles retrieving a single remittance with its lines
func (h *RemittanceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid remittance ID")
		return
	}

	remittance, err := h.remittanceService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Remittance retrieved successfully", remittance)
}

// MarkPaid settles a parked remittance
func (h *RemittanceHandler) MarkPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid remittance ID")
		return
	}

	remittance, err := h.remittanceService.MarkPaid(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Remittance marked as paid", remittance)
}

// File streams the bank CSV export
func (h *RemittanceHandler) File(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid remittance ID")
		return
	}

	data, filename, err := h.remittanceService.File(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "text/csv; charset=utf-8", data)
}
