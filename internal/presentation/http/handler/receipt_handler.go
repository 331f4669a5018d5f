package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/presentation/http/dto/response"
	"github.com/scenart/agency-api/pkg/pagination"
)

// ReceiptHandler handles back-office receipt HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// List handles listing receipts with filters
func (h *ReceiptHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	input := service.ListReceiptsInput{
		Pagination: &pagination.PaginationParams{Page: page, PerPage: perPage},
		Search:     c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := parseReceiptStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Unknown receipt status: "+statusStr)
			return
		}
		input.Status = &status
	}
	if batchIDStr := c.Query("batch_id"); batchIDStr != "" {
		batchID, err := uuid.Parse(batchIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid batch ID")
			return
		}
		input.BatchID = &batchID
	}
	if performerIDStr := c.Query("performer_id"); performerIDStr != "" {
		performerID, err := uuid.Parse(performerIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid performer ID")
			return
		}
		input.PerformerID = &performerID
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(c, "Invalid year")
			return
		}
		input.Year = &year
	}

	receipts, pg, err := h.receiptService.ListReceipts(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Receipts retrieved successfully",
		pagination.NewPaginatedResult(receipts, pg))
}

// Get handles retrieving a single receipt
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Remind re-sends the signature link for an unsigned receipt
func (h *ReceiptHandler) Remind(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.Remind(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reminder sent", receipt)
}

// Cancel voids an unsigned receipt
func (h *ReceiptHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt cancelled", receipt)
}

// Expire sweeps overdue unsigned receipts into the expired status
func (h *ReceiptHandler) Expire(c *gin.Context) {
	count, err := h.receiptService.ExpireOverdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expiry sweep completed", gin.H{"expired": count})
}

// Document streams the stored receipt PDF
func (h *ReceiptHandler) Document(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	data, filename, err := h.receiptService.Document(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/pdf", data)
}

// parseReceiptStatus maps the public status strings to the enum
func parseReceiptStatus(s string) (enum.ReceiptStatus, bool) {
	for _, status := range []enum.ReceiptStatus{
		enum.ReceiptStatusGenerata, enum.ReceiptStatusSollecitata,
		enum.ReceiptStatusFirmata, enum.ReceiptStatusPagabile,
		enum.ReceiptStatusInDistinta, enum.ReceiptStatusPagata,
		enum.ReceiptStatusScaduta, enum.ReceiptStatusAnnullata,
	} {
		if status.String() == s {
			return status, true
		}
	}
	return 0, false
}
