package service

import (
	"context"
	"time"

	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/scenart/agency-api/pkg/pdf"
	"github.com/scenart/agency-api/pkg/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SignatureService drives the public, token-authenticated signature
// workflow. No operator credentials are involved: the bearer token in the
// signature link is the whole authorization.
type SignatureService struct {
	receiptRepo repository.ReceiptRepository
	renderer    pdf.Renderer
	store       storage.Store
	rules       AmountRules
	logger      *zap.Logger
}

// NewSignatureService creates a new signature service
func NewSignatureService(
	receiptRepo repository.ReceiptRepository,
	renderer pdf.Renderer,
	store storage.Store,
	rules AmountRules,
	logger *zap.Logger,
) *SignatureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignatureService{
		receiptRepo: receiptRepo,
		renderer:    renderer,
		store:       store,
		rules:       rules,
		logger:      logger,
	}
}

// ReceiptView is what the public signature page shows.
type ReceiptView struct {
	Code          string              `json:"code"`
	PerformerName string              `json:"performer_name"`
	IssuedAt      time.Time           `json:"issued_at"`
	Lines         entity.ReceiptLines `json:"lines"`
	Gross         decimal.Decimal     `json:"gross"`
	Net           decimal.Decimal     `json:"net"`
	Withholding   decimal.Decimal     `json:"withholding"`
	Reimbursement decimal.Decimal     `json:"reimbursement"`
	AdvanceFee    decimal.Decimal     `json:"advance_fee"`
	TotalPayable  decimal.Decimal     `json:"total_payable"`
	Status        enum.ReceiptStatus  `json:"status"`
	SignedAt      *time.Time          `json:"signed_at,omitempty"`
	HasAttachment bool                `json:"has_attachment"`
	// Bounds the signature form needs to render.
	MaxReimbursement  decimal.Decimal `json:"max_reimbursement"`
	AdvanceNetCeiling decimal.Decimal `json:"advance_net_ceiling"`
	AdvanceAvailable  bool            `json:"advance_available"`
}

// Review loads the receipt behind a signature token for display. Signed
// receipts stay viewable; an unsigned one must still be live, so an expired
// or cancelled link fails here the same way signing would.
func (s *SignatureService) Review(ctx context.Context, token string) (*ReceiptView, error) {
	receipt, err := s.loadByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !receipt.Status.IsSigned() {
		if err := s.ensureSignable(receipt, time.Now()); err != nil {
			return nil, err
		}
	}
	return s.view(receipt), nil
}

// SignInput is the performer's submission from the signature form.
type SignInput struct {
	FirstName          string             `json:"first_name" binding:"required"`
	LastName           string             `json:"last_name" binding:"required"`
	PerformerReceiptNo string             `json:"performer_receipt_no"`
	Reimbursement      decimal.Decimal    `json:"reimbursement"`
	PaymentTiming      enum.PaymentTiming `json:"payment_timing"`
	// Accepted is the performer's explicit consent to the receipt terms.
	Accepted bool `json:"accepted"`
}

// Sign completes the signature: amounts are recomputed server-side from the
// declared reimbursement and payment timing, never taken from the client.
// A signed receipt is immediately payable.
func (s *SignatureService) Sign(ctx context.Context, token string, input *SignInput) (*ReceiptView, error) {
	if !input.Accepted {
		return nil, apperror.NewUnprocessableError(
			"The receipt terms must be explicitly accepted")
	}

	now := time.Now()
	receipt, err := s.receiptRepo.MutateByToken(ctx, token, func(r *entity.Receipt) error {
		if err := s.ensureSignable(r, now); err != nil {
			return err
		}
		if input.Reimbursement.IsPositive() && r.AttachmentPath == nil {
			return apperror.NewUnprocessableError(
				"A reimbursement requires the expense documentation to be uploaded first")
		}

		amounts, err := ComputeAmounts(s.rules, AmountInput{
			NetOriginal:   r.NetOriginal,
			Reimbursement: input.Reimbursement,
			Timing:        input.PaymentTiming,
		})
		if err != nil {
			return err
		}

		r.SignerFirstName = &input.FirstName
		r.SignerLastName = &input.LastName
		if input.PerformerReceiptNo != "" {
			r.PerformerReceiptNo = &input.PerformerReceiptNo
		}
		r.PaymentTiming = input.PaymentTiming
		r.Reimbursement = amounts.Reimbursement
		r.AdvanceFee = amounts.AdvanceFee
		r.NetAdjusted = amounts.Net
		r.GrossAdjusted = amounts.Gross
		r.WithholdingAdjusted = amounts.Withholding
		r.TotalPayable = amounts.TotalPayable
		r.SignedAt = &now
		r.Status = enum.ReceiptStatusPagabile
		return nil
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}

	// Refresh the stored document with the signed amounts, best-effort.
	s.refreshDocument(ctx, receipt)

	return s.view(receipt), nil
}

// UploadAttachment stores the expense documentation backing a reimbursement
// request. Allowed only while the receipt is still signable.
func (s *SignatureService) UploadAttachment(ctx context.Context, token, filename string, data []byte) (*ReceiptView, error) {
	if len(data) == 0 {
		return nil, apperror.NewBadRequestError("Attachment is empty")
	}

	now := time.Now()
	receipt, err := s.loadByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSignable(receipt, now); err != nil {
		return nil, err
	}

	relPath := storage.AttachmentRelPath(
		receipt.Performer.FullName(), receipt.Performer.TaxCode,
		receipt.IssuedAt.Format("2006-01"), receipt.Code, filename)
	if err := s.store.Save(relPath, data); err != nil {
		return nil, err
	}

	receipt, err = s.receiptRepo.MutateByToken(ctx, token, func(r *entity.Receipt) error {
		if err := s.ensureSignable(r, now); err != nil {
			return err
		}
		r.AttachmentPath = &relPath
		return nil
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return s.view(receipt), nil
}

// loadByToken fetches the receipt for a token or fails with the public
// error taxonomy.
func (s *SignatureService) loadByToken(ctx context.Context, token string) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// ensureSignable applies the state machine and expiry rules shared by every
// public mutation.
func (s *SignatureService) ensureSignable(r *entity.Receipt, now time.Time) error {
	if r.Status.IsSigned() {
		return apperror.NewConflictError("Receipt has already been signed")
	}
	if r.Status == enum.ReceiptStatusAnnullata {
		return apperror.NewGoneError("Receipt has been cancelled")
	}
	if r.Status == enum.ReceiptStatusScaduta || r.TokenExpired(now) {
		return apperror.NewGoneError("The signature link has expired")
	}
	if !r.Status.IsSignable() {
		return apperror.NewConflictError("Receipt cannot be signed in its current status")
	}
	return nil
}

// refreshDocument re-renders and stores the receipt PDF after signature.
func (s *SignatureService) refreshDocument(ctx context.Context, receipt *entity.Receipt) {
	if receipt.DocumentPath == nil {
		return
	}
	html, err := pdf.RenderReceiptHTML(receiptDocumentData(receipt))
	if err != nil {
		s.logger.Warn("failed to render signed receipt",
			zap.String("receipt", receipt.Code), zap.Error(err))
		return
	}
	data, err := s.renderer.Render(ctx, html)
	if err != nil {
		s.logger.Warn("failed to render signed receipt",
			zap.String("receipt", receipt.Code), zap.Error(err))
		return
	}
	if err := s.store.Save(*receipt.DocumentPath, data); err != nil {
		s.logger.Warn("failed to store signed receipt",
			zap.String("receipt", receipt.Code), zap.Error(err))
	}
}

// view maps a receipt to its public representation. The signature token
// itself is never echoed back.
func (s *SignatureService) view(r *entity.Receipt) *ReceiptView {
	return &ReceiptView{
		Code:              r.Code,
		PerformerName:     r.Performer.FullName(),
		IssuedAt:          r.IssuedAt,
		Lines:             r.Lines,
		Gross:             r.GrossAdjusted,
		Net:               r.NetAdjusted,
		Withholding:       r.WithholdingAdjusted,
		Reimbursement:     r.Reimbursement,
		AdvanceFee:        r.AdvanceFee,
		TotalPayable:      r.TotalPayable,
		Status:            r.Status,
		SignedAt:          r.SignedAt,
		HasAttachment:     r.AttachmentPath != nil,
		MaxReimbursement:  s.rules.MaxReimbursement,
		AdvanceNetCeiling: s.rules.AdvanceNetCeiling,
		AdvanceAvailable:  !r.NetOriginal.GreaterThan(s.rules.AdvanceNetCeiling),
	}
}
