package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/presentation/http/dto/response"
	"github.com/scenart/agency-api/pkg/pagination"
)

// PerformerHandler handles performer directory HTTP requests
type PerformerHandler struct {
	performerService *service.PerformerService
}

// NewPerformerHandler creates a new performer handler
func NewPerformerHandler(performerService *service.PerformerService) *PerformerHandler {
	return &PerformerHandler{performerService: performerService}
}

// List handles listing performers with their payability status
func (h *PerformerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	profiles, pg, err := h.performerService.List(c.Request.Context(),
		&pagination.PaginationParams{Page: page, PerPage: perPage},
		c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Performers retrieved successfully",
		pagination.NewPaginatedResult(profiles, pg))
}

// Get handles retrieving a single performer
func (h *PerformerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid performer ID")
		return
	}

	profile, err := h.performerService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Performer retrieved successfully", profile)
}
