package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/presentation/http/dto/response"
)

// SignatureHandler handles the public, token-authenticated signature
// endpoints. These routes carry no operator session; the token in the URL
// is the whole authorization.
type SignatureHandler struct {
	signatureService *service.SignatureService
	maxUploadSize    int64
}

// NewSignatureHandler creates a new signature handler
func NewSignatureHandler(signatureService *service.SignatureService, maxUploadSize int64) *SignatureHandler {
	return &SignatureHandler{
		signatureService: signatureService,
		maxUploadSize:    maxUploadSize,
	}
}

// Review shows the receipt behind a signature link
func (h *SignatureHandler) Review(c *gin.Context) {
	view, err := h.signatureService.Review(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", view)
}

// Sign completes the signature
func (h *SignatureHandler) Sign(c *gin.Context) {
	var input service.SignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.signatureService.Sign(c.Request.Context(), c.Param("token"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt signed successfully", view)
}

// UploadAttachment stores the expense documentation for a reimbursement
func (h *SignatureHandler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing file upload")
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		response.BadRequest(c, "File too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.signatureService.UploadAttachment(c.Request.Context(), c.Param("token"), file.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Attachment uploaded successfully", view)
}
